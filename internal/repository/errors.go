package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// uniqueViolation es el codigo SQLSTATE de Postgres para conflictos UNIQUE.
const uniqueViolation = "23505"

// IsUniqueViolation indica si el error proviene de una restriccion UNIQUE.
// Los servicios lo usan para traducir el conflicto a un error de negocio en
// vez de hacer check-then-insert con ventana de carrera.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
