package repository

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"

	"account-service/internal/db"
	"account-service/internal/db/migrate"
)

// Store drivers accepted by Open.
const (
	DriverMemory   = "memory"
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
)

// InferDriver picks a driver from the URL scheme when none is configured.
func InferDriver(driver, url string) string {
	if driver != "" {
		return driver
	}
	switch {
	case url == "":
		return DriverMemory
	case strings.HasPrefix(url, "mongodb://"), strings.HasPrefix(url, "mongodb+srv://"):
		return DriverMongo
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		return DriverPostgres
	default:
		return ""
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Open builds the repository for driver. For postgres the schema is migrated
// up before returning. The returned Closer releases the underlying connection.
func Open(ctx context.Context, driver, url, mongoDatabase string) (Repository, io.Closer, error) {
	switch InferDriver(driver, url) {
	case DriverMemory:
		log.Printf("store: using in-memory repository; data is lost on restart")
		return NewMemoryRepository(), nopCloser{}, nil
	case DriverMongo:
		r, err := NewMongoRepository(ctx, url, mongoDatabase)
		if err != nil {
			return nil, nil, err
		}
		return r, r, nil
	case DriverPostgres:
		if err := migrate.Run(url, migrate.Up); err != nil {
			return nil, nil, fmt.Errorf("postgres: migrate: %w", err)
		}
		conn, err := db.Open(ctx, url)
		if err != nil {
			return nil, nil, fmt.Errorf("postgres: open: %w", err)
		}
		return NewPostgresRepository(conn), conn, nil
	default:
		if driver == "" {
			return nil, nil, fmt.Errorf("store: cannot infer driver from URL scheme %q; set STORE_DRIVER", urlScheme(url))
		}
		return nil, nil, fmt.Errorf("store: unknown driver %q", driver)
	}
}

// urlScheme returns the part of url before "://", or the whole url when there is none.
func urlScheme(url string) string {
	if i := strings.Index(url, "://"); i >= 0 {
		return url[:i]
	}
	return url
}
