package probe

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/vietddude/fintrack/internal/core/gate"
)

const (
	DriverPgx = "pgx"
	DriverPQ  = "postgres"
)

// PostgresProber opens a fresh connection and pings it. Nothing is pooled;
// the connection is closed after every probe.
type PostgresProber struct {
	driver                    string
	dsn                       string
	treatMissingDBAsTransient bool
}

// NewPostgresProber creates a probe for dsn using driver ("pgx" or "postgres").
// An empty driver selects pgx.
func NewPostgresProber(driver, dsn string, treatMissingDBAsTransient bool) *PostgresProber {
	if driver == "" {
		driver = DriverPgx
	}
	return &PostgresProber{
		driver:                    driver,
		dsn:                       dsn,
		treatMissingDBAsTransient: treatMissingDBAsTransient,
	}
}

// Probe implements gate.Prober.
func (p *PostgresProber) Probe(ctx context.Context) error {
	if err := ValidatePostgresDSN(p.driver, p.dsn); err != nil {
		return gate.Misconfigured(err)
	}

	db, err := sqlx.ConnectContext(ctx, p.driver, p.dsn)
	if err != nil {
		return p.tag(err)
	}
	defer func() {
		_ = db.Close()
	}()

	var one int
	if err := db.GetContext(ctx, &one, "SELECT 1"); err != nil {
		return p.tag(err)
	}
	return nil
}

// Classifier returns the gate classifier matching this probe's settings.
func (p *PostgresProber) Classifier() gate.Classifier {
	return gate.ClassifierFunc(func(err error) gate.Kind {
		return ClassifyPostgres(err, p.treatMissingDBAsTransient)
	})
}

func (p *PostgresProber) tag(err error) error {
	if ClassifyPostgres(err, p.treatMissingDBAsTransient) == gate.KindMisconfigured {
		return gate.Misconfigured(err)
	}
	return gate.Transient(err)
}

// ValidatePostgresDSN checks that dsn parses for the given driver without
// touching the network.
func ValidatePostgresDSN(driverName, dsn string) error {
	if strings.TrimSpace(dsn) == "" {
		return errors.New("database url is empty")
	}
	switch driverName {
	case DriverPgx:
		if _, err := pgconn.ParseConfig(dsn); err != nil {
			return fmt.Errorf("invalid database url: %w", err)
		}
	case DriverPQ:
		if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
			if _, err := pq.ParseURL(dsn); err != nil {
				return fmt.Errorf("invalid database url: %w", err)
			}
		}
	default:
		return fmt.Errorf("unsupported database driver %q", driverName)
	}
	return nil
}

// ClassifyPostgres maps errors from pgx or lib/pq to a gate kind.
//
// Server-reported SQLSTATEs are transient only for connection exceptions
// (class 08), cannot_connect_now, too_many_connections and admin shutdown;
// invalid_catalog_name follows missingDBTransient. Any other SQLSTATE is a
// misconfiguration. Without a SQLSTATE, only network failures (including a
// pgconn.ConnectError wrapping one) and broken driver connections are
// transient; TLS, DSN and every other error is a misconfiguration.
func ClassifyPostgres(err error, missingDBTransient bool) gate.Kind {
	if err == nil {
		return gate.KindTransient
	}
	if errors.Is(err, gate.ErrMisconfigured) {
		return gate.KindMisconfigured
	}
	if errors.Is(err, gate.ErrTransientUnavailable) {
		return gate.KindTransient
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return classifySQLState(pgErr.Code, missingDBTransient)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return classifySQLState(string(pqErr.Code), missingDBTransient)
	}

	var parseErr *pgconn.ParseConfigError
	if errors.As(err, &parseErr) {
		return gate.KindMisconfigured
	}

	if gate.IsConnectivityError(err) || errors.Is(err, driver.ErrBadConn) {
		return gate.KindTransient
	}
	return gate.KindMisconfigured
}

func classifySQLState(code string, missingDBTransient bool) gate.Kind {
	switch {
	case strings.HasPrefix(code, "08"):
		return gate.KindTransient
	case code == "57P01", code == "57P02", code == "57P03", code == "53300":
		return gate.KindTransient
	case code == "3D000":
		if missingDBTransient {
			return gate.KindTransient
		}
		return gate.KindMisconfigured
	default:
		return gate.KindMisconfigured
	}
}
