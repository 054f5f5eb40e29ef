package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rscms-dev/rscms/internal/domain"
)

// UserRepository define el contrato de persistencia para usuarios.
type UserRepository interface {
	Create(ctx context.Context, user domain.User) (domain.User, error)
	GetByID(ctx context.Context, id int64) (domain.User, error)
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	UpdateCode(ctx context.Context, id int64, code string, expiresAt time.Time) error
	ConsumeCode(ctx context.Context, email, code string, now time.Time) (domain.User, error)
}

const userColumns = `id, username, email, email_verified, verification_code, verification_code_expires_at, created_at, updated_at`

// PgUserRepository implementa UserRepository usando pgxpool.
type PgUserRepository struct {
	pool *pgxpool.Pool
}

func NewPgUserRepository(pool *pgxpool.Pool) *PgUserRepository {
	return &PgUserRepository{pool: pool}
}

func (r *PgUserRepository) Create(ctx context.Context, user domain.User) (domain.User, error) {
	const query = `
		INSERT INTO users (username, email, email_verified, verification_code, verification_code_expires_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + userColumns
	row := r.pool.QueryRow(ctx, query,
		user.Username,
		user.Email,
		user.EmailVerified,
		nullIfEmpty(user.VerificationCode),
		user.VerificationCodeExpiresAt,
	)
	return scanUser(row)
}

func (r *PgUserRepository) GetByID(ctx context.Context, id int64) (domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.pool.QueryRow(ctx, query, id))
}

func (r *PgUserRepository) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(r.pool.QueryRow(ctx, query, email))
}

// UpdateCode reemplaza el codigo pendiente y su vencimiento (reenvio).
func (r *PgUserRepository) UpdateCode(ctx context.Context, id int64, code string, expiresAt time.Time) error {
	const query = `
		UPDATE users
		SET verification_code = $2, verification_code_expires_at = $3, updated_at = now()
		WHERE id = $1
	`
	_, err := r.pool.Exec(ctx, query, id, code, expiresAt)
	return err
}

// ConsumeCode hace match de email + codigo exacto + vencimiento futuro en un
// solo UPDATE: limpia el codigo y marca el email como verificado. Si no hay
// fila que cumpla, devuelve pgx.ErrNoRows; el codigo queda de un solo uso sin
// ventana read-modify-write.
func (r *PgUserRepository) ConsumeCode(ctx context.Context, email, code string, now time.Time) (domain.User, error) {
	const query = `
		UPDATE users
		SET email_verified = TRUE,
		    verification_code = NULL,
		    verification_code_expires_at = NULL,
		    updated_at = now()
		WHERE email = $1
		  AND verification_code = $2
		  AND verification_code_expires_at > $3
		RETURNING ` + userColumns
	return scanUser(r.pool.QueryRow(ctx, query, email, code, now))
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (domain.User, error) {
	var (
		u    domain.User
		code *string
	)
	err := row.Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.EmailVerified,
		&code,
		&u.VerificationCodeExpiresAt,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return domain.User{}, err
	}
	if code != nil {
		u.VerificationCode = *code
	}
	return u, nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
