package database

import (
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/gocraft/dbr/v2"
	"github.com/pkg/errors"
)

// MySQLConnection opens a dbr connection to the MySQL database
// NOTE: DATETIME columns are always parsed into UTC time.Time values
func MySQLConnection(dsn string) (*dbr.Connection, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, ErrEmptyDSN
	}

	conf, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse mysql dsn")
	}

	conf.ParseTime = true
	conf.Loc = time.UTC

	conn, err := dbr.Open("mysql", conf.FormatDSN(), nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to mysql database")
	}

	conn.SetConnMaxLifetime(5 * time.Minute)

	if err = conn.Ping(); err != nil {
		conn.Close()
		return nil, errors.Wrap(err, "failed to ping mysql database")
	}

	return conn, nil
}

// MySQLForTesting connects to the test database and truncates every given
// table, returns nil if no test database is configured
func MySQLForTesting(dsn string, tables ...string) (conn *dbr.Connection, err error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, nil
	}

	conn, err = MySQLConnection(dsn)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to test database")
	}

	tx, err := conn.NewSession(nil).Begin()
	if err != nil {
		return nil, err
	}
	defer tx.RollbackUnlessCommitted()

	// temporarily disabling foreign key checks to enable truncate
	if _, err = tx.Exec("SET foreign_key_checks = 0"); err != nil {
		return nil, err
	}

	for _, tableName := range tables {
		if _, err = tx.Exec("TRUNCATE TABLE `" + tableName + "`"); err != nil {
			return nil, errors.Wrapf(err, "failed to truncate table %s", tableName)
		}
	}

	if _, err = tx.Exec("SET foreign_key_checks = 1"); err != nil {
		return nil, err
	}

	return conn, tx.Commit()
}
