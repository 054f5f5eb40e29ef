package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rscms-dev/rscms/internal/domain"
)

// ArticleRepository define el contrato de persistencia para articulos. Las
// reglas de visibilidad y propiedad viven en las consultas: un articulo es
// visible si esta publicado o si el lector es su autor, y solo el autor puede
// modificarlo o borrarlo.
type ArticleRepository interface {
	Create(ctx context.Context, article domain.Article) (domain.Article, error)
	GetVisible(ctx context.Context, id, viewerID int64) (domain.Article, error)
	ListVisible(ctx context.Context, viewerID int64) ([]domain.Article, error)
	Update(ctx context.Context, id, authorID int64, upd domain.ArticleUpdate) (domain.Article, error)
	Delete(ctx context.Context, id, authorID int64) (bool, error)
}

const articleColumns = `id, title, content, author_id, status, created_at, updated_at`

// PgArticleRepository implementa ArticleRepository usando pgxpool.
type PgArticleRepository struct {
	pool *pgxpool.Pool
}

func NewPgArticleRepository(pool *pgxpool.Pool) *PgArticleRepository {
	return &PgArticleRepository{pool: pool}
}

func (r *PgArticleRepository) Create(ctx context.Context, article domain.Article) (domain.Article, error) {
	const query = `
		INSERT INTO articles (title, content, author_id, status)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + articleColumns
	row := r.pool.QueryRow(ctx, query,
		article.Title,
		article.Content,
		article.AuthorID,
		article.Status,
	)
	return scanArticle(row)
}

func (r *PgArticleRepository) GetVisible(ctx context.Context, id, viewerID int64) (domain.Article, error) {
	const query = `
		SELECT ` + articleColumns + `
		FROM articles
		WHERE id = $1 AND (status = $2 OR author_id = $3)
	`
	return scanArticle(r.pool.QueryRow(ctx, query, id, domain.ArticleStatusPublished, viewerID))
}

func (r *PgArticleRepository) ListVisible(ctx context.Context, viewerID int64) ([]domain.Article, error) {
	const query = `
		SELECT ` + articleColumns + `
		FROM articles
		WHERE status = $1 OR author_id = $2
		ORDER BY created_at DESC
	`
	rows, err := r.pool.Query(ctx, query, domain.ArticleStatusPublished, viewerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var articles []domain.Article
	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}
		articles = append(articles, article)
	}
	return articles, rows.Err()
}

// Update arma el SET solo con los campos presentes. La clausula WHERE exige
// el autor: cero filas afectadas significa inexistente o ajeno, y eso se
// reporta como pgx.ErrNoRows sin distinguir los casos.
func (r *PgArticleRepository) Update(ctx context.Context, id, authorID int64, upd domain.ArticleUpdate) (domain.Article, error) {
	sets := []string{"updated_at = now()"}
	args := []any{id, authorID}

	if upd.Title != nil {
		args = append(args, *upd.Title)
		sets = append(sets, fmt.Sprintf("title = $%d", len(args)))
	}
	if upd.Content != nil {
		args = append(args, *upd.Content)
		sets = append(sets, fmt.Sprintf("content = $%d", len(args)))
	}
	if upd.Status != nil {
		args = append(args, *upd.Status)
		sets = append(sets, fmt.Sprintf("status = $%d", len(args)))
	}

	query := fmt.Sprintf(`
		UPDATE articles
		SET %s
		WHERE id = $1 AND author_id = $2
		RETURNING %s`,
		strings.Join(sets, ", "),
		articleColumns,
	)
	return scanArticle(r.pool.QueryRow(ctx, query, args...))
}

func (r *PgArticleRepository) Delete(ctx context.Context, id, authorID int64) (bool, error) {
	const query = `DELETE FROM articles WHERE id = $1 AND author_id = $2`
	tag, err := r.pool.Exec(ctx, query, id, authorID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func scanArticle(row rowScanner) (domain.Article, error) {
	var a domain.Article
	err := row.Scan(
		&a.ID,
		&a.Title,
		&a.Content,
		&a.AuthorID,
		&a.Status,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return domain.Article{}, err
	}
	return a, nil
}
