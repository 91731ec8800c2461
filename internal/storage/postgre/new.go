package postgres

import (
	"database/sql"
	"time"

	"conversion-guard/internal/storage"
	pkgLog "conversion-guard/pkg/log"
)

type implRepository struct {
	l     pkgLog.Logger
	db    *sql.DB
	clock func() time.Time
}

var _ storage.Repository = &implRepository{}

// New returns a postgres-backed storage repository.
func New(l pkgLog.Logger, db *sql.DB) *implRepository {
	return &implRepository{
		l:     l,
		db:    db,
		clock: time.Now,
	}
}
