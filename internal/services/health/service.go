package health

import (
	"context"
	"database/sql"
	"time"

	"velox-backend/internal/shared/storage/db"
)

const pingTimeout = 2 * time.Second

// Status is the /api/health payload.
type Status struct {
	OK       bool   `json:"ok"`
	Database string `json:"database"`
}

// Service reports process and database health.
type Service struct {
	DB *sql.DB
}

// NewService constructs a health service. db may be nil when running on
// in-memory repositories.
func NewService(database *sql.DB) *Service {
	return &Service{DB: database}
}

// Check pings the database when one is configured.
func (s *Service) Check(ctx context.Context) Status {
	if s == nil || s.DB == nil {
		return Status{OK: true, Database: "disabled"}
	}
	if err := db.Ping(ctx, s.DB, pingTimeout); err != nil {
		return Status{OK: false, Database: "unreachable"}
	}
	return Status{OK: true, Database: "up"}
}
