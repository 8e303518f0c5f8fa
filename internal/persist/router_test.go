package persist_test

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autovolt/lakehouse/internal/metrics"
	"github.com/autovolt/lakehouse/internal/models"
	"github.com/autovolt/lakehouse/internal/persist"
	"github.com/autovolt/lakehouse/internal/services/storage"
	"github.com/autovolt/lakehouse/internal/services/warehouse"
)

var recife = time.FixedZone("America/Recife", -3*3600)

type loadCall struct {
	table string
	uri   string
	opts  warehouse.LoadOptions
}

type fakeSink struct {
	calls []loadCall
	err   error
}

func (f *fakeSink) LoadAppend(ctx context.Context, table, uri string, schema models.Schema, opts warehouse.LoadOptions) (warehouse.Ack, error) {
	f.calls = append(f.calls, loadCall{table: table, uri: uri, opts: opts})
	if f.err != nil {
		return warehouse.Ack{}, f.err
	}
	return warehouse.Ack{JobID: "job", Table: table, Rows: 1}, nil
}

func fixedClock() time.Time {
	return time.Date(2024, time.June, 10, 12, 0, 0, 0, recife)
}

func batchRows() []any {
	return []any{
		models.Batch{ID: "L00000001", ProductID: "P01", LineID: "L01", MachineID: "M001",
			StartTime: "2024-06-10 10:00:00", EndTime: "2024-06-10 11:00:00", DurationHours: "1.0"},
	}
}

func TestObjectPath(t *testing.T) {
	t.Run("should partition by local date, hour and run", func(t *testing.T) {
		r := persist.NewRouter(storage.NewMemory("lake"), nil, "/bronze/", recife)
		ts := time.Date(2024, time.June, 10, 2, 30, 0, 0, time.UTC)

		path := r.ObjectPath(models.TableSale, "run-1", ts)
		pattern := `^bronze/raw_vendas/dt=2024-06-09/hr=23/run=run-1/part-[0-9a-f]{32}\.jsonl$`
		assert.Regexp(t, regexp.MustCompile(pattern), path)
	})

	t.Run("should name every object uniquely", func(t *testing.T) {
		r := persist.NewRouter(storage.NewMemory("lake"), nil, "bronze", recife)
		ts := fixedClock()
		assert.NotEqual(t, r.ObjectPath("raw_lote", "r", ts), r.ObjectPath("raw_lote", "r", ts))
	})
}

func TestIsHot(t *testing.T) {
	r := persist.NewRouter(storage.NewMemory("lake"), nil, "bronze", recife, persist.WithClock(fixedClock))

	assert.True(t, r.IsHot(persist.HotLayer, time.Date(2024, time.January, 1, 0, 0, 0, 0, recife)))
	assert.False(t, r.IsHot(persist.HotLayer, time.Date(2023, time.December, 31, 23, 0, 0, 0, recife)))
	assert.False(t, r.IsHot(persist.LakeOnly, fixedClock()))
	// 2024-01-01 01:00 UTC is still 2023 in Recife
	assert.False(t, r.IsHot(persist.HotLayer, time.Date(2024, time.January, 1, 1, 0, 0, 0, time.UTC)))
}

func TestPersist(t *testing.T) {
	ctx := context.Background()

	t.Run("should write JSONL with run metadata", func(t *testing.T) {
		blobs := storage.NewMemory("lake")
		r := persist.NewRouter(blobs, nil, "bronze", recife, persist.WithClock(fixedClock))

		res, err := r.Persist(ctx, models.TableBatch, batchRows(), "run-1", fixedClock(), persist.LakeOnly)
		require.NoError(t, err)
		assert.Equal(t, 1, res.Rows)
		assert.False(t, res.Loaded)
		assert.True(t, strings.HasPrefix(res.URI, "s3://lake/bronze/raw_lote/dt=2024-06-10/hr=12/run=run-1/"))

		paths := blobs.List("bronze/raw_lote/")
		require.Len(t, paths, 1)
		data, err := blobs.Read(ctx, paths[0])
		require.NoError(t, err)

		lines := strings.Split(strings.TrimSpace(string(data)), "\n")
		require.Len(t, lines, 1)
		var rec map[string]any
		require.NoError(t, json.Unmarshal([]byte(lines[0]), &rec))
		assert.Equal(t, "L00000001", rec["lote_id"])
		assert.Equal(t, "1.0", rec["duracao_horas"])
		assert.Equal(t, "run-1", rec[persist.FieldRunID])
		assert.Equal(t, "2024-06-10T12:00:00-03:00", rec[persist.FieldIngestedAt])
	})

	t.Run("should load current-year rows under the hot policy", func(t *testing.T) {
		sink := &fakeSink{}
		r := persist.NewRouter(storage.NewMemory("lake"), sink, "bronze", recife, persist.WithClock(fixedClock))

		res, err := r.Persist(ctx, models.TableBatch, batchRows(), "run-1", fixedClock(), persist.HotLayer)
		require.NoError(t, err)
		assert.True(t, res.Loaded)
		require.Len(t, sink.calls, 1)
		assert.Equal(t, models.TableBatch, sink.calls[0].table)
		assert.Equal(t, res.URI, sink.calls[0].uri)
		assert.True(t, sink.calls[0].opts.IgnoreUnknownFields)
	})

	t.Run("should keep past years and lake-only batches out of the warehouse", func(t *testing.T) {
		sink := &fakeSink{}
		r := persist.NewRouter(storage.NewMemory("lake"), sink, "bronze", recife, persist.WithClock(fixedClock))

		past := time.Date(2023, time.May, 1, 10, 0, 0, 0, recife)
		_, err := r.Persist(ctx, models.TableBatch, batchRows(), "run-1", past, persist.HotLayer)
		require.NoError(t, err)
		_, err = r.Persist(ctx, models.TableBatch, batchRows(), "run-1", fixedClock(), persist.LakeOnly)
		require.NoError(t, err)

		assert.Empty(t, sink.calls)
	})

	t.Run("should skip empty batches", func(t *testing.T) {
		blobs := storage.NewMemory("lake")
		r := persist.NewRouter(blobs, &fakeSink{}, "bronze", recife)

		res, err := r.Persist(ctx, models.TableSale, nil, "run-1", fixedClock(), persist.HotLayer)
		require.NoError(t, err)
		assert.Equal(t, persist.Result{}, res)
		assert.Empty(t, blobs.List(""))
	})

	t.Run("should reject unknown tables", func(t *testing.T) {
		r := persist.NewRouter(storage.NewMemory("lake"), nil, "bronze", recife)
		_, err := r.Persist(ctx, "raw_nada", batchRows(), "run-1", fixedClock(), persist.LakeOnly)
		assert.Error(t, err)
	})

	t.Run("should surface warehouse failures after the lake write", func(t *testing.T) {
		blobs := storage.NewMemory("lake")
		sink := &fakeSink{err: errors.New("quota exceeded")}
		r := persist.NewRouter(blobs, sink, "bronze", recife, persist.WithClock(fixedClock))

		res, err := r.Persist(ctx, models.TableBatch, batchRows(), "run-1", fixedClock(), persist.HotLayer)
		assert.ErrorContains(t, err, "quota exceeded")
		assert.NotEmpty(t, res.URI)
		assert.Len(t, blobs.List("bronze/raw_lote/"), 1)
	})

	t.Run("should count objects, rows and loads", func(t *testing.T) {
		m := metrics.New()
		r := persist.NewRouter(storage.NewMemory("lake"), &fakeSink{}, "bronze", recife,
			persist.WithClock(fixedClock), persist.WithMetrics(m))

		_, err := r.Persist(ctx, models.TableBatch, append(batchRows(), batchRows()...), "run-1", fixedClock(), persist.HotLayer)
		require.NoError(t, err)

		families, err := m.Registry().Gather()
		require.NoError(t, err)
		got := map[string]float64{}
		for _, mf := range families {
			for _, metric := range mf.GetMetric() {
				got[mf.GetName()] += metric.GetCounter().GetValue()
			}
		}
		assert.Equal(t, 1.0, got["autovolt_lake_objects_total"])
		assert.Equal(t, 2.0, got["autovolt_rows_generated_total"])
		assert.Equal(t, 1.0, got["autovolt_warehouse_loads_total"])
	})

	t.Run("should persist into a real warehouse", func(t *testing.T) {
		blobs := storage.NewMemory("lake")
		sink, err := warehouse.Open(ctx, warehouse.DriverSQLite, ":memory:", blobs)
		require.NoError(t, err)
		defer sink.Close()
		require.NoError(t, sink.EnsureAll(ctx))

		r := persist.NewRouter(blobs, sink, "bronze", recife, persist.WithClock(fixedClock))
		res, err := r.Persist(ctx, models.TableBatch, batchRows(), "run-1", fixedClock(), persist.HotLayer)
		require.NoError(t, err)
		assert.True(t, res.Loaded)

		n, err := sink.Count(ctx, models.TableBatch)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	})
}
