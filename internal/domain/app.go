package domain

import "time"

type App struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Identifier  string    `json:"identifier"`
	CreatorID   int64     `json:"creator_id"`
	UpdaterID   int64     `json:"updater_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// AppUpdate describe una actualizacion parcial; los campos nil no se tocan.
type AppUpdate struct {
	Name        *string
	Description *string
}

// Empty indica si la actualizacion no trae ningun campo.
func (u AppUpdate) Empty() bool {
	return u.Name == nil && u.Description == nil
}

// AppFilter define los filtros opcionales del listado de aplicaciones.
type AppFilter struct {
	Keyword    string
	Identifier string
	CreatorID  *int64
	Limit      int64
	Offset     int64
}
