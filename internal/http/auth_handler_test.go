package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"github.com/rscms-dev/rscms/internal/domain"
	"github.com/rscms-dev/rscms/internal/service"
)

type mockUserRepo struct {
	seq     int64
	users   map[int64]domain.User
	byEmail map[string]int64
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{
		users:   make(map[int64]domain.User),
		byEmail: make(map[string]int64),
	}
}

func (m *mockUserRepo) Create(_ context.Context, user domain.User) (domain.User, error) {
	if _, ok := m.byEmail[user.Email]; ok {
		return domain.User{}, &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"}
	}
	m.seq++
	user.ID = m.seq
	user.CreatedAt = time.Now().UTC()
	user.UpdatedAt = user.CreatedAt
	m.users[user.ID] = user
	m.byEmail[user.Email] = user.ID
	return user, nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id int64) (domain.User, error) {
	user, ok := m.users[id]
	if !ok {
		return domain.User{}, pgx.ErrNoRows
	}
	return user, nil
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (domain.User, error) {
	id, ok := m.byEmail[email]
	if !ok {
		return domain.User{}, pgx.ErrNoRows
	}
	return m.users[id], nil
}

func (m *mockUserRepo) UpdateCode(_ context.Context, id int64, code string, expiresAt time.Time) error {
	user, ok := m.users[id]
	if !ok {
		return pgx.ErrNoRows
	}
	user.VerificationCode = code
	user.VerificationCodeExpiresAt = &expiresAt
	m.users[id] = user
	return nil
}

func (m *mockUserRepo) ConsumeCode(_ context.Context, email, code string, now time.Time) (domain.User, error) {
	id, ok := m.byEmail[email]
	if !ok {
		return domain.User{}, pgx.ErrNoRows
	}
	user := m.users[id]
	if user.VerificationCode == "" || user.VerificationCode != code {
		return domain.User{}, pgx.ErrNoRows
	}
	if user.VerificationCodeExpiresAt == nil || !user.VerificationCodeExpiresAt.After(now) {
		return domain.User{}, pgx.ErrNoRows
	}
	user.EmailVerified = true
	user.VerificationCode = ""
	user.VerificationCodeExpiresAt = nil
	m.users[id] = user
	return user, nil
}

type mockSender struct {
	sent     int
	lastCode string
}

func (m *mockSender) SendVerificationCode(_ context.Context, _ string, code string, _ time.Time) error {
	m.sent++
	m.lastCode = code
	return nil
}

func authRouter(repo *mockUserRepo, sender *mockSender) (*gin.Engine, *service.JWTService) {
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()
	jwtSvc := service.NewJWTService("secret", 24*time.Hour)
	authSvc := service.NewAuthService(logger, repo, sender, &allowAllLimiter{})
	h := NewAuthHandler(logger, authSvc, jwtSvc)

	r := gin.New()
	r.POST("/auth/register", h.Register)
	r.POST("/auth/verification-code", h.ResendCode)
	r.POST("/auth/login", h.Login)
	r.GET("/auth/me", JWTAuthMiddleware(jwtSvc), h.Me)
	return r, jwtSvc
}

type allowAllLimiter struct{}

func (allowAllLimiter) Allow(string) bool { return true }

func doJSON(t *testing.T, r *gin.Engine, method, path, body, token string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body == "" {
		reader = bytes.NewReader(nil)
	} else {
		reader = bytes.NewReader([]byte(body))
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestAuthFlow_RegisterLoginMe(t *testing.T) {
	repo := newMockUserRepo()
	sender := &mockSender{}
	r, _ := authRouter(repo, sender)

	rec := doJSON(t, r, http.MethodPost, "/auth/register", `{"username":"alice","email":"a@x.com"}`, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("register: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if sender.sent != 1 {
		t.Fatalf("expected verification email sent")
	}

	// Mismo email, otro username: siempre duplicado.
	rec = doJSON(t, r, http.MethodPost, "/auth/register", `{"username":"bob","email":"a@x.com"}`, "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("duplicate register: expected 400, got %d", rec.Code)
	}

	rec = doJSON(t, r, http.MethodPost, "/auth/login", `{"email":"a@x.com","verification_code":"`+sender.lastCode+`"}`, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var loginResp struct {
		Token string `json:"token"`
		User  struct {
			ID            int64 `json:"id"`
			EmailVerified bool  `json:"email_verified"`
		} `json:"user"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &loginResp); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	if loginResp.Token == "" || !loginResp.User.EmailVerified {
		t.Fatalf("expected token and verified user, got %s", rec.Body.String())
	}
	// El codigo pendiente jamas sale serializado.
	if strings.Contains(rec.Body.String(), "verification_code") {
		t.Fatalf("verification code leaked in response: %s", rec.Body.String())
	}

	rec = doJSON(t, r, http.MethodGet, "/auth/me", "", loginResp.Token)
	if rec.Code != http.StatusOK {
		t.Fatalf("me: expected 200, got %d", rec.Code)
	}

	// Un codigo consumido no sirve dos veces.
	rec = doJSON(t, r, http.MethodPost, "/auth/login", `{"email":"a@x.com","verification_code":"`+sender.lastCode+`"}`, "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("login reuse: expected 400, got %d", rec.Code)
	}
}

func TestLogin_InvalidCredentials(t *testing.T) {
	r, _ := authRouter(newMockUserRepo(), &mockSender{})

	rec := doJSON(t, r, http.MethodPost, "/auth/login", `{"email":"ghost@x.com","verification_code":"Abc123"}`, "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Invalid email or verification code") {
		t.Fatalf("expected generic credentials message, got %s", rec.Body.String())
	}
}

func TestMe_WithoutToken(t *testing.T) {
	r, _ := authRouter(newMockUserRepo(), &mockSender{})

	rec := doJSON(t, r, http.MethodGet, "/auth/me", "", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestResendCode_SameResponseForUnknownEmail(t *testing.T) {
	repo := newMockUserRepo()
	sender := &mockSender{}
	r, _ := authRouter(repo, sender)

	rec := doJSON(t, r, http.MethodPost, "/auth/verification-code", `{"email":"ghost@x.com"}`, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for unknown email, got %d", rec.Code)
	}
	if sender.sent != 0 {
		t.Fatalf("expected no email for unknown account")
	}
}
