package remote

import (
	"context"
	"fmt"
)

// Drivers accepted by Open.
const (
	DriverNone     = "none"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)

// Config selects and addresses a backend.
type Config struct {
	Driver      string
	SQLitePath  string
	PostgresURL string
	RedisURL    string
	KeyPrefix   string
}

// Open connects the configured backend. DriverNone, or an empty driver,
// returns a nil Backend and no error: the organizer then runs local-only.
func Open(ctx context.Context, cfg Config) (Backend, error) {
	var (
		b   Backend
		err error
	)
	switch cfg.Driver {
	case "", DriverNone:
		return nil, nil
	case DriverSQLite:
		b, err = OpenSQLite(cfg.SQLitePath)
	case DriverPostgres:
		b, err = OpenPostgres(cfg.PostgresURL)
	case DriverRedis:
		b, err = OpenRedis(ctx, cfg.RedisURL, cfg.KeyPrefix)
	default:
		return nil, fmt.Errorf("remote: unknown driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}
