// Package connectortest provides an in-memory database/sql driver that answers
// queries from canned result sets, for tests of code built on connectors.
package connectortest

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
)

// DriverName is the name the fake driver is registered under
const DriverName = "connectortest"

// Column describes one result column
type Column struct {
	Name string
	Type string // reported as DatabaseTypeName
}

// Result is the canned answer to a query
type Result struct {
	Columns      []Column
	Rows         [][]driver.Value
	RowsAffected int64
	Err          error
}

// Script maps a query fragment to its result. A query is answered by the
// entry whose key it contains; keys must not overlap.
type Script map[string]Result

var (
	registerOnce sync.Once
	mu           sync.Mutex
	scripts      = map[string]Script{}
	seq          int
)

// Open returns a database handle answering from script. It is closed when
// the test ends.
func Open(t testing.TB, script Script) *sql.DB {
	t.Helper()
	registerOnce.Do(func() { sql.Register(DriverName, fakeDriver{}) })

	mu.Lock()
	seq++
	dsn := fmt.Sprintf("%s#%d", t.Name(), seq)
	scripts[dsn] = script
	mu.Unlock()

	db, err := sql.Open(DriverName, dsn)
	if err != nil {
		t.Fatalf("open fake database: %v", err)
	}
	t.Cleanup(func() {
		db.Close()
		mu.Lock()
		delete(scripts, dsn)
		mu.Unlock()
	})
	return db
}

type fakeDriver struct{}

func (fakeDriver) Open(dsn string) (driver.Conn, error) {
	mu.Lock()
	script, ok := scripts[dsn]
	mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("no script registered for %q", dsn)
	}
	return &conn{script: script}, nil
}

type conn struct {
	script Script
}

func (c *conn) lookup(query string) (Result, error) {
	for key, res := range c.script {
		if strings.Contains(query, key) {
			return res, res.Err
		}
	}
	return Result{}, fmt.Errorf("unexpected query: %s", query)
}

func (c *conn) QueryContext(_ context.Context, query string, _ []driver.NamedValue) (driver.Rows, error) {
	res, err := c.lookup(query)
	if err != nil {
		return nil, err
	}
	return &rows{columns: res.Columns, data: res.Rows}, nil
}

func (c *conn) ExecContext(_ context.Context, query string, _ []driver.NamedValue) (driver.Result, error) {
	res, err := c.lookup(query)
	if err != nil {
		return nil, err
	}
	return driver.RowsAffected(res.RowsAffected), nil
}

func (c *conn) Prepare(string) (driver.Stmt, error) {
	return nil, errors.New("prepared statements are not supported")
}

func (c *conn) Close() error { return nil }

func (c *conn) Begin() (driver.Tx, error) { return tx{}, nil }

type tx struct{}

func (tx) Commit() error   { return nil }
func (tx) Rollback() error { return nil }

type rows struct {
	columns []Column
	data    [][]driver.Value
	pos     int
}

func (r *rows) Columns() []string {
	names := make([]string, len(r.columns))
	for i, c := range r.columns {
		names[i] = c.Name
	}
	return names
}

func (r *rows) Close() error { return nil }

func (r *rows) Next(dest []driver.Value) error {
	if r.pos >= len(r.data) {
		return io.EOF
	}
	copy(dest, r.data[r.pos])
	r.pos++
	return nil
}

func (r *rows) ColumnTypeDatabaseTypeName(index int) string {
	return r.columns[index].Type
}
