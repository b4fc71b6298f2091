package database

import (
	"strings"

	"github.com/jackc/pgx"
	"github.com/jackc/pgx/log/zapadapter"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// errors
var (
	ErrEmptyDSN = errors.New("database dsn is empty")
)

// PostgreSQLConfig describes a PostgreSQL connection pool
type PostgreSQLConfig struct {
	DSN            string
	MaxConnections int
	Debug          bool
}

// PostgreSQLConnection initializes a connection pool to the PostgreSQL database
func PostgreSQLConnection(conf PostgreSQLConfig, logger *zap.Logger) (*pgx.ConnPool, error) {
	dsn := strings.TrimSpace(conf.DSN)
	if dsn == "" {
		return nil, ErrEmptyDSN
	}

	connConfig, err := pgx.ParseConnectionString(dsn)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse postgres dsn")
	}

	// injecting logger into database instance
	if logger != nil {
		connConfig.Logger = zapadapter.NewLogger(logger.Named("[postgres]"))
		connConfig.LogLevel = pgx.LogLevelWarn

		if conf.Debug {
			connConfig.LogLevel = pgx.LogLevelDebug
		}
	}

	if conf.MaxConnections <= 0 {
		conf.MaxConnections = 10
	}

	pool, err := pgx.NewConnPool(pgx.ConnPoolConfig{
		ConnConfig:     connConfig,
		MaxConnections: conf.MaxConnections,
	})

	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to postgres database")
	}

	return pool, nil
}

// PostgreSQLForTesting connects to the test database and truncates
// every given table, returns nil if no test database is configured
func PostgreSQLForTesting(dsn string, tables ...string) (*pgx.ConnPool, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, nil
	}

	pool, err := PostgreSQLConnection(PostgreSQLConfig{DSN: dsn, MaxConnections: 2}, nil)
	if err != nil {
		return nil, err
	}

	for _, tableName := range tables {
		q := `TRUNCATE TABLE "` + tableName + `" RESTART IDENTITY CASCADE`

		if _, err = pool.Exec(q); err != nil {
			pool.Close()
			return nil, errors.Wrapf(err, "failed to truncate table %s", tableName)
		}
	}

	return pool, nil
}
