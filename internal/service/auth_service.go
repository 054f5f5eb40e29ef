package service

import (
	"context"
	"crypto/rand"
	"errors"
	"math/big"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/rscms-dev/rscms/internal/domain"
	"github.com/rscms-dev/rscms/internal/email"
	"github.com/rscms-dev/rscms/internal/repository"
)

// AuthService coordina registro, emision de codigos y login por codigo.
type AuthService struct {
	logger      *zap.Logger
	users       repository.UserRepository
	emailSender email.Sender
	codeLimiter CodeRateLimiter
}

func NewAuthService(logger *zap.Logger, users repository.UserRepository, emailSender email.Sender, codeLimiter CodeRateLimiter) *AuthService {
	if codeLimiter == nil {
		codeLimiter = NewCodeRateLimiter(codeTTL, 3)
	}
	return &AuthService{
		logger:      logger,
		users:       users,
		emailSender: emailSender,
		codeLimiter: codeLimiter,
	}
}

var (
	ErrDuplicateAccount   = errors.New("account already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidEmail       = errors.New("invalid email")
	ErrInvalidUsername    = errors.New("invalid username")
	ErrEmailSendFailure   = errors.New("email send failed")
	ErrRateLimited        = errors.New("rate limited")
	ErrUserNotFound       = errors.New("user not found")
)

const (
	codeTTL      = 30 * time.Minute
	codeLength   = 6
	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	mailTimeout  = 10 * time.Second
)

// Register crea la cuenta sin verificar, genera un codigo de 6 caracteres y
// lo envia por correo. El duplicado (email o username) lo detecta la
// restriccion UNIQUE de la tabla, no un check previo.
func (s *AuthService) Register(ctx context.Context, username, emailAddr string) (domain.User, error) {
	if s.users == nil {
		return domain.User{}, errors.New("auth service not configured")
	}

	username = strings.TrimSpace(username)
	emailAddr = normalizeEmail(emailAddr)
	if username == "" {
		return domain.User{}, ErrInvalidUsername
	}
	if emailAddr == "" {
		return domain.User{}, ErrInvalidEmail
	}

	code, expiresAt, err := generateVerificationCode()
	if err != nil {
		return domain.User{}, err
	}

	user, err := s.users.Create(ctx, domain.User{
		Username:                  username,
		Email:                     emailAddr,
		EmailVerified:             false,
		VerificationCode:          code,
		VerificationCodeExpiresAt: &expiresAt,
	})
	if err != nil {
		if repository.IsUniqueViolation(err) {
			return domain.User{}, ErrDuplicateAccount
		}
		return domain.User{}, err
	}

	if err := s.sendCode(ctx, emailAddr, code, expiresAt); err != nil {
		return domain.User{}, err
	}
	return user, nil
}

// ResendCode emite un codigo nuevo para una cuenta existente sin verificar.
// Para emails desconocidos o ya verificados no hace nada y no lo reporta:
// el handler responde igual en todos los casos para no permitir enumeracion.
func (s *AuthService) ResendCode(ctx context.Context, emailAddr string) error {
	if s.users == nil {
		return errors.New("auth service not configured")
	}

	emailAddr = normalizeEmail(emailAddr)
	if emailAddr == "" {
		return ErrInvalidEmail
	}

	if s.codeLimiter != nil && !s.codeLimiter.Allow(emailAddr) {
		return ErrRateLimited
	}

	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		return err
	}
	if user.EmailVerified {
		return nil
	}

	code, expiresAt, err := generateVerificationCode()
	if err != nil {
		return err
	}
	if err := s.users.UpdateCode(ctx, user.ID, code, expiresAt); err != nil {
		return err
	}
	return s.sendCode(ctx, emailAddr, code, expiresAt)
}

// Login consume el codigo: el match atomico en el store exige email, codigo
// exacto y vencimiento futuro, limpia el codigo y marca la cuenta como
// verificada. Cualquier falta de match responde con el mismo error generico.
func (s *AuthService) Login(ctx context.Context, emailAddr, code string) (domain.User, error) {
	if s.users == nil {
		return domain.User{}, errors.New("auth service not configured")
	}

	emailAddr = normalizeEmail(emailAddr)
	code = strings.TrimSpace(code)
	if emailAddr == "" || !isValidVerificationCode(code) {
		return domain.User{}, ErrInvalidCredentials
	}

	user, err := s.users.ConsumeCode(ctx, emailAddr, code, time.Now().UTC())
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrInvalidCredentials
		}
		return domain.User{}, err
	}
	return user, nil
}

// GetUser devuelve el usuario autenticado para /auth/me.
func (s *AuthService) GetUser(ctx context.Context, id int64) (domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, err
	}
	return user, nil
}

func (s *AuthService) sendCode(ctx context.Context, emailAddr, code string, expiresAt time.Time) error {
	if s.emailSender == nil {
		return ErrEmailSendFailure
	}
	sendCtx, cancel := context.WithTimeout(ctx, mailTimeout)
	defer cancel()
	if err := s.emailSender.SendVerificationCode(sendCtx, emailAddr, code, expiresAt); err != nil {
		if s.logger != nil {
			s.logger.Warn("send verification code failed", zap.Error(err), zap.String("email", emailAddr))
		}
		return ErrEmailSendFailure
	}
	return nil
}

func generateVerificationCode() (string, time.Time, error) {
	buf := make([]byte, codeLength)
	max := big.NewInt(int64(len(codeAlphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", time.Time{}, err
		}
		buf[i] = codeAlphabet[n.Int64()]
	}
	return string(buf), time.Now().UTC().Add(codeTTL), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func isValidVerificationCode(code string) bool {
	if len(code) != codeLength {
		return false
	}
	for _, r := range code {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'A' && r <= 'Z':
		case r >= 'a' && r <= 'z':
		default:
			return false
		}
	}
	return true
}
