package domain

import "time"

// Estados de publicacion de un articulo.
const (
	ArticleStatusDraft     int16 = 1
	ArticleStatusPublished int16 = 2
)

type Article struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	AuthorID  int64     `json:"author_id"`
	Status    int16     `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ArticleUpdate describe una actualizacion parcial; los campos nil no se tocan.
type ArticleUpdate struct {
	Title   *string
	Content *string
	Status  *int16
}

// Empty indica si la actualizacion no trae ningun campo.
func (u ArticleUpdate) Empty() bool {
	return u.Title == nil && u.Content == nil && u.Status == nil
}
