// Package postgres implements the repositories on PostgreSQL through database/sql.
package postgres

import (
	"database/sql"
	"errors"
	"strings"
)

// IsNoRowsError reports whether err means the row was not found.
func IsNoRowsError(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes user input safe to embed in a LIKE/ILIKE pattern.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
