package sqlstore

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pressly/goose/v3"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

type dialectName string

const (
	dialectSQLite   dialectName = "sqlite"
	dialectPostgres dialectName = "postgres"
)

type dialect struct {
	name         dialectName
	driverName   string
	gooseDialect goose.Dialect
}

func dialectFor(driver string) (dialect, error) {
	switch dialectName(driver) {
	case dialectSQLite:
		return dialect{name: dialectSQLite, driverName: "sqlite", gooseDialect: goose.DialectSQLite3}, nil
	case dialectPostgres:
		return dialect{name: dialectPostgres, driverName: "pgx", gooseDialect: goose.DialectPostgres}, nil
	default:
		return dialect{}, fmt.Errorf("unsupported database driver %q", driver)
	}
}

// rebind rewrites ? placeholders to $n for postgres. Queries in this
// package never contain a literal question mark.
func (d dialect) rebind(query string) string {
	if d.name != dialectPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return true
		}
	}
	return false
}
