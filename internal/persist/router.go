package persist

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/autovolt/lakehouse/internal/metrics"
	"github.com/autovolt/lakehouse/internal/models"
	"github.com/autovolt/lakehouse/internal/services/storage"
	"github.com/autovolt/lakehouse/internal/services/warehouse"
	"github.com/autovolt/lakehouse/pkg/utils"
)

// Row metadata added to every lake record
const (
	FieldRunID      = "_run_id"
	FieldIngestedAt = "_ingested_at"
)

// Policy decides whether rows may reach the warehouse
type Policy int

const (
	// LakeOnly never loads the warehouse
	LakeOnly Policy = iota
	// HotLayer loads rows whose timestamp falls in the current year
	HotLayer
)

func (p Policy) String() string {
	if p == HotLayer {
		return "hot"
	}
	return "lake-only"
}

// Sink appends a lake object to a warehouse table
type Sink interface {
	LoadAppend(ctx context.Context, table, uri string, schema models.Schema, opts warehouse.LoadOptions) (warehouse.Ack, error)
}

// Result describes one persisted batch
type Result struct {
	URI    string
	Rows   int
	Loaded bool
}

// Router writes row batches to the lake and, under the hot-layer policy,
// into the warehouse.
type Router struct {
	blobs   storage.BlobStore
	sink    Sink
	prefix  string
	loc     *time.Location
	metrics *metrics.Metrics

	// now is the wall clock used for ingestion stamps and the hot-layer year
	now func() time.Time
}

// Option configures a Router
type Option func(*Router)

// WithMetrics counts written objects and loads
func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Router) { r.metrics = m }
}

// WithClock replaces the wall clock
func WithClock(now func() time.Time) Option {
	return func(r *Router) { r.now = now }
}

// NewRouter creates a router. sink may be nil, in which case nothing is
// ever loaded into the warehouse.
func NewRouter(blobs storage.BlobStore, sink Sink, prefix string, loc *time.Location, opts ...Option) *Router {
	r := &Router{
		blobs:  blobs,
		sink:   sink,
		prefix: strings.Trim(prefix, "/"),
		loc:    loc,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ObjectPath returns the lake path of a new object for table at simulated
// time t.
func (r *Router) ObjectPath(table, runID string, t time.Time) string {
	file := "part-" + strings.ReplaceAll(uuid.NewString(), "-", "") + ".jsonl"
	return utils.PartitionKey(r.prefix, table, t.In(r.loc), runID, file)
}

// IsHot reports whether rows stamped t belong in the warehouse under p
func (r *Router) IsHot(p Policy, t time.Time) bool {
	return p == HotLayer && t.In(r.loc).Year() == r.now().In(r.loc).Year()
}

// Persist writes rows as one JSONL object and loads it into the warehouse
// when the policy allows. Empty batches are skipped.
func (r *Router) Persist(ctx context.Context, table string, rows []any, runID string, t time.Time, p Policy) (Result, error) {
	if len(rows) == 0 {
		return Result{}, nil
	}

	schema, ok := models.Schemas[table]
	if !ok {
		return Result{}, fmt.Errorf("unknown table %q", table)
	}

	data, err := r.encode(rows, runID)
	if err != nil {
		return Result{}, fmt.Errorf("failed to encode %s rows: %w", table, err)
	}

	objectPath := r.ObjectPath(table, runID, t)
	uri, err := r.blobs.Write(ctx, objectPath, data, "application/json")
	if err != nil {
		return Result{}, fmt.Errorf("failed to write %s: %w", objectPath, err)
	}
	if r.metrics != nil {
		r.metrics.LakeObjects.WithLabelValues(table).Inc()
		r.metrics.RowsGenerated.WithLabelValues(table).Add(float64(len(rows)))
	}

	res := Result{URI: uri, Rows: len(rows)}
	if r.sink == nil || !r.IsHot(p, t) {
		slog.Debug("Persisted to lake", "table", table, "rows", len(rows), "uri", uri, "run_id", runID)
		return res, nil
	}

	ack, err := r.sink.LoadAppend(ctx, table, uri, schema, warehouse.LoadOptions{IgnoreUnknownFields: true})
	if err != nil {
		return res, fmt.Errorf("failed to load %s: %w", table, err)
	}
	res.Loaded = true
	if r.metrics != nil {
		r.metrics.WarehouseLoads.WithLabelValues(table).Inc()
	}
	slog.Debug("Persisted to lake and warehouse", "table", table, "rows", len(rows), "uri", uri, "job_id", ack.JobID, "run_id", runID)
	return res, nil
}

// encode renders rows as newline-delimited JSON with run metadata
func (r *Router) encode(rows []any, runID string) ([]byte, error) {
	ingestedAt := r.now().In(r.loc).Format(time.RFC3339)

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	for _, row := range rows {
		raw, err := json.Marshal(row)
		if err != nil {
			return nil, err
		}

		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.UseNumber()
		var rec map[string]any
		if err := dec.Decode(&rec); err != nil {
			return nil, err
		}
		rec[FieldRunID] = runID
		rec[FieldIngestedAt] = ingestedAt

		if err := enc.Encode(rec); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}
