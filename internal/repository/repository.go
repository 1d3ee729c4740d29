// Package repository implements Postgres persistence for the scheduling
// engine on top of pgx. Conditional writes (slot-guarded inserts, status
// CAS updates) live here; all policy stays in the service layer.
package repository

import (
	"errors"

	"github.com/jackc/pgx/v5"
)

// IsNotFound reports whether err is pgx's "no rows" error.
func IsNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
