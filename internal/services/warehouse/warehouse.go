package warehouse

import (
	"bufio"
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/autovolt/lakehouse/internal/models"
	"github.com/autovolt/lakehouse/internal/services/storage"
)

// Supported drivers
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// LoadOptions controls how a JSONL object is mapped onto a table
type LoadOptions struct {
	// IgnoreUnknownFields drops row fields that are not table columns
	// instead of failing the load.
	IgnoreUnknownFields bool
}

// Ack reports a completed load
type Ack struct {
	JobID string `json:"job_id"`
	Table string `json:"table"`
	Rows  int    `json:"rows"`
}

// ErrUnknownField is returned when a row carries a field the table does not
// have and the load does not ignore unknown fields.
var ErrUnknownField = errors.New("unknown field")

// Sink appends lake objects into warehouse tables
type Sink struct {
	db     *sql.DB
	driver string
	blobs  storage.BlobStore
}

// Open connects to the warehouse. blobs resolves the object URIs handed to
// LoadAppend.
func Open(ctx context.Context, driver, dsn string, blobs storage.BlobStore) (*Sink, error) {
	switch driver {
	case DriverPostgres, DriverSQLite:
	default:
		return nil, fmt.Errorf("unsupported warehouse driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to warehouse: %w", err)
	}

	// Configure connection pool
	if driver == DriverSQLite {
		// every connection to an in-memory database is a new database
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
	}
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping warehouse: %w", err)
	}

	return &Sink{db: db, driver: driver, blobs: blobs}, nil
}

// Close closes the database connection
func (s *Sink) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// DB returns the connection pool, for instrumentation
func (s *Sink) DB() *sql.DB {
	return s.db
}

func (s *Sink) columnType(t models.FieldType) string {
	switch t {
	case models.TypeFloat:
		if s.driver == DriverPostgres {
			return "DOUBLE PRECISION"
		}
		return "REAL"
	case models.TypeTimestamp:
		if s.driver == DriverPostgres {
			return "TIMESTAMPTZ"
		}
		return "TEXT"
	default:
		return "TEXT"
	}
}

// EnsureTable creates the table when it does not exist yet
func (s *Sink) EnsureTable(ctx context.Context, name string, schema models.Schema) error {
	cols := make([]string, len(schema))
	for i, f := range schema {
		cols[i] = pq.QuoteIdentifier(f.Name) + " " + s.columnType(f.Type)
	}

	query := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", pq.QuoteIdentifier(name), strings.Join(cols, ", "))
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create table %s: %w", name, err)
	}
	return nil
}

// EnsureAll creates every bronze table
func (s *Sink) EnsureAll(ctx context.Context) error {
	for _, name := range models.TableNames() {
		if err := s.EnsureTable(ctx, name, models.Schemas[name]); err != nil {
			return err
		}
	}
	return nil
}

// LoadAppend reads the JSONL object at uri and appends its rows to table in
// a single transaction.
func (s *Sink) LoadAppend(ctx context.Context, table, uri string, schema models.Schema, opts LoadOptions) (Ack, error) {
	_, path, err := storage.ParseURI(uri)
	if err != nil {
		return Ack{}, err
	}

	data, err := s.blobs.Read(ctx, path)
	if err != nil {
		return Ack{}, fmt.Errorf("failed to read %s: %w", uri, err)
	}

	rows, err := decodeRows(data, schema, opts)
	if err != nil {
		return Ack{}, fmt.Errorf("failed to decode %s: %w", uri, err)
	}

	if err := s.insert(ctx, table, schema.Names(), rows); err != nil {
		return Ack{}, fmt.Errorf("failed to load %s into %s: %w", uri, table, err)
	}

	return Ack{JobID: uuid.NewString(), Table: table, Rows: len(rows)}, nil
}

func (s *Sink) insert(ctx context.Context, table string, cols []string, rows [][]any) error {
	if len(rows) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var query string
	if s.driver == DriverPostgres {
		query = pq.CopyIn(table, cols...)
	} else {
		quoted := make([]string, len(cols))
		for i, c := range cols {
			quoted[i] = pq.QuoteIdentifier(c)
		}
		placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")
		query = fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
			pq.QuoteIdentifier(table), strings.Join(quoted, ", "), placeholders)
	}

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, row := range rows {
		if _, err := stmt.ExecContext(ctx, row...); err != nil {
			return err
		}
	}
	if s.driver == DriverPostgres {
		// flush the COPY buffer
		if _, err := stmt.ExecContext(ctx); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// Count returns the number of rows in table
func (s *Sink) Count(ctx context.Context, table string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+pq.QuoteIdentifier(table)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", table, err)
	}
	return n, nil
}

var timestampLayouts = []string{time.RFC3339Nano, "2006-01-02 15:04:05", "2006-01-02"}

// decodeRows turns newline-delimited JSON into column values ordered as
// schema.
func decodeRows(data []byte, schema models.Schema, opts LoadOptions) ([][]any, error) {
	var out [][]any
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	line := 0
	for scanner.Scan() {
		line++
		raw := bytes.TrimSpace(scanner.Bytes())
		if len(raw) == 0 {
			continue
		}

		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.UseNumber()
		var rec map[string]any
		if err := dec.Decode(&rec); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		if !opts.IgnoreUnknownFields {
			for name := range rec {
				if _, ok := schema.Lookup(name); !ok {
					return nil, fmt.Errorf("line %d: %w %q", line, ErrUnknownField, name)
				}
			}
		}

		values := make([]any, len(schema))
		for i, f := range schema {
			v, err := convert(rec[f.Name], f.Type)
			if err != nil {
				return nil, fmt.Errorf("line %d, field %s: %w", line, f.Name, err)
			}
			values[i] = v
		}
		out = append(out, values)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func convert(v any, t models.FieldType) (any, error) {
	if v == nil {
		return nil, nil
	}

	switch t {
	case models.TypeFloat:
		switch x := v.(type) {
		case json.Number:
			return x.Float64()
		case string:
			return strconv.ParseFloat(x, 64)
		}
	case models.TypeTimestamp:
		s, ok := v.(string)
		if !ok {
			break
		}
		for _, layout := range timestampLayouts {
			if ts, err := time.Parse(layout, s); err == nil {
				return ts.Format(time.RFC3339Nano), nil
			}
		}
		return nil, fmt.Errorf("invalid timestamp %q", s)
	default:
		switch x := v.(type) {
		case string:
			return x, nil
		case json.Number:
			return x.String(), nil
		case bool:
			return strconv.FormatBool(x), nil
		}
	}
	return nil, fmt.Errorf("unexpected %T for %s column", v, t)
}
