package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rscms-dev/rscms/internal/domain"
)

// AppRepository define el contrato de persistencia para aplicaciones. Toda
// operacion queda abierta a cualquier usuario autenticado; creator_id y
// updater_id se registran pero no restringen acceso.
type AppRepository interface {
	Create(ctx context.Context, app domain.App) (domain.App, error)
	GetByID(ctx context.Context, id int64) (domain.App, error)
	List(ctx context.Context, filter domain.AppFilter) ([]domain.App, int64, error)
	Update(ctx context.Context, id, updaterID int64, upd domain.AppUpdate) (domain.App, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

const appColumns = `id, name, description, identifier, creator_id, updater_id, created_at, updated_at`

// PgAppRepository implementa AppRepository usando pgxpool.
type PgAppRepository struct {
	pool *pgxpool.Pool
}

func NewPgAppRepository(pool *pgxpool.Pool) *PgAppRepository {
	return &PgAppRepository{pool: pool}
}

func (r *PgAppRepository) Create(ctx context.Context, app domain.App) (domain.App, error) {
	const query = `
		INSERT INTO apps (name, description, identifier, creator_id, updater_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + appColumns
	row := r.pool.QueryRow(ctx, query,
		app.Name,
		app.Description,
		app.Identifier,
		app.CreatorID,
		app.UpdaterID,
	)
	return scanApp(row)
}

func (r *PgAppRepository) GetByID(ctx context.Context, id int64) (domain.App, error) {
	const query = `SELECT ` + appColumns + ` FROM apps WHERE id = $1`
	return scanApp(r.pool.QueryRow(ctx, query, id))
}

func (r *PgAppRepository) List(ctx context.Context, filter domain.AppFilter) ([]domain.App, int64, error) {
	where := []string{"1=1"}
	args := []any{}

	if filter.Keyword != "" {
		args = append(args, "%"+filter.Keyword+"%")
		where = append(where, fmt.Sprintf("name ILIKE $%d", len(args)))
	}
	if filter.Identifier != "" {
		args = append(args, filter.Identifier)
		where = append(where, fmt.Sprintf("identifier = $%d", len(args)))
	}
	if filter.CreatorID != nil {
		args = append(args, *filter.CreatorID)
		where = append(where, fmt.Sprintf("creator_id = $%d", len(args)))
	}

	cond := strings.Join(where, " AND ")

	countQuery := "SELECT COUNT(*) FROM apps WHERE " + cond
	var total int64
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, filter.Limit)
	limitPos := len(args)
	args = append(args, filter.Offset)
	offsetPos := len(args)

	listQuery := fmt.Sprintf(
		"SELECT %s FROM apps WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		appColumns, cond, limitPos, offsetPos,
	)

	rows, err := r.pool.Query(ctx, listQuery, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var apps []domain.App
	for rows.Next() {
		app, err := scanApp(rows)
		if err != nil {
			return nil, 0, err
		}
		apps = append(apps, app)
	}
	return apps, total, rows.Err()
}

// Update arma el SET solo con los campos presentes; updater_id se estampa
// siempre, venga lo que venga en la actualizacion.
func (r *PgAppRepository) Update(ctx context.Context, id, updaterID int64, upd domain.AppUpdate) (domain.App, error) {
	sets := []string{"updater_id = $2", "updated_at = now()"}
	args := []any{id, updaterID}

	if upd.Name != nil {
		args = append(args, *upd.Name)
		sets = append(sets, fmt.Sprintf("name = $%d", len(args)))
	}
	if upd.Description != nil {
		args = append(args, *upd.Description)
		sets = append(sets, fmt.Sprintf("description = $%d", len(args)))
	}

	query := fmt.Sprintf(`
		UPDATE apps
		SET %s
		WHERE id = $1
		RETURNING %s`,
		strings.Join(sets, ", "),
		appColumns,
	)
	return scanApp(r.pool.QueryRow(ctx, query, args...))
}

func (r *PgAppRepository) Delete(ctx context.Context, id int64) (bool, error) {
	const query = `DELETE FROM apps WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func scanApp(row rowScanner) (domain.App, error) {
	var a domain.App
	err := row.Scan(
		&a.ID,
		&a.Name,
		&a.Description,
		&a.Identifier,
		&a.CreatorID,
		&a.UpdaterID,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return domain.App{}, err
	}
	return a, nil
}
