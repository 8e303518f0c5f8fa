package warehouse_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autovolt/lakehouse/internal/models"
	"github.com/autovolt/lakehouse/internal/services/storage"
	"github.com/autovolt/lakehouse/internal/services/warehouse"
)

func openSink(t *testing.T) (*warehouse.Sink, *storage.Memory) {
	t.Helper()
	blobs := storage.NewMemory("lake")
	sink, err := warehouse.Open(context.Background(), warehouse.DriverSQLite, ":memory:", blobs)
	require.NoError(t, err)
	t.Cleanup(func() { sink.Close() })
	require.NoError(t, sink.EnsureAll(context.Background()))
	return sink, blobs
}

func put(t *testing.T, blobs *storage.Memory, path, body string) string {
	t.Helper()
	uri, err := blobs.Write(context.Background(), path, []byte(body), "application/json")
	require.NoError(t, err)
	return uri
}

func TestOpen(t *testing.T) {
	t.Run("should reject unknown drivers", func(t *testing.T) {
		_, err := warehouse.Open(context.Background(), "mysql", "x", storage.NewMemory("lake"))
		assert.Error(t, err)
	})
}

func TestEnsureAll(t *testing.T) {
	t.Run("should create every bronze table and be repeatable", func(t *testing.T) {
		sink, _ := openSink(t)
		ctx := context.Background()
		require.NoError(t, sink.EnsureAll(ctx))

		for _, name := range models.TableNames() {
			n, err := sink.Count(ctx, name)
			require.NoError(t, err, name)
			assert.Zero(t, n, name)
		}
	})
}

func TestLoadAppend(t *testing.T) {
	ctx := context.Background()

	t.Run("should append rows and ignore lake metadata", func(t *testing.T) {
		sink, blobs := openSink(t)
		uri := put(t, blobs, "bronze/raw_lote/part-1.jsonl",
			`{"lote_id":"L00000001","produto_id":"P01","linha_id":"L01","maquina_id":"M001","inicio_producao":"2024-01-01 10:00:00","fim_producao":"2024-01-01 11:00:00","duracao_horas":"1.0","_run_id":"r1","_ingested_at":"2024-01-01T10:00:00-03:00"}
{"lote_id":"L00000002","produto_id":"P02","linha_id":"L02","maquina_id":"M002","inicio_producao":"2024-01-01 10:00:00","fim_producao":"2024-01-01 11:00:00","duracao_horas":"0.9","_run_id":"r1","_ingested_at":"2024-01-01T10:00:00-03:00"}
`)

		ack, err := sink.LoadAppend(ctx, models.TableBatch, uri, models.Schemas[models.TableBatch],
			warehouse.LoadOptions{IgnoreUnknownFields: true})
		require.NoError(t, err)
		assert.Equal(t, 2, ack.Rows)
		assert.Equal(t, models.TableBatch, ack.Table)
		assert.NotEmpty(t, ack.JobID)

		n, err := sink.Count(ctx, models.TableBatch)
		require.NoError(t, err)
		assert.Equal(t, 2, n)
	})

	t.Run("should fail on unknown fields unless ignored", func(t *testing.T) {
		sink, blobs := openSink(t)
		uri := put(t, blobs, "bronze/raw_compras/part-1.jsonl", `{"compra_id":"CP000001","extra":"x"}`)

		_, err := sink.LoadAppend(ctx, models.TablePurchase, uri, models.Schemas[models.TablePurchase], warehouse.LoadOptions{})
		assert.True(t, errors.Is(err, warehouse.ErrUnknownField))

		n, err := sink.Count(ctx, models.TablePurchase)
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("should coerce alert values and timestamps", func(t *testing.T) {
		sink, blobs := openSink(t)
		uri := put(t, blobs, "bronze/monitoramento_alertas/part-1.jsonl",
			`{"alerta_id":"ALT-abc","data_ocorrencia":"2024-03-01T10:00:00-03:00","nivel":"CRITICO","maquina_id":"M001","mensagem":"x","valor_medido":104.2}
{"alerta_id":"ALT-def","data_ocorrencia":"2024-03-01 11:00:00","nivel":"CRITICO","maquina_id":"M002","mensagem":"y","valor_medido":"2101"}
`)

		ack, err := sink.LoadAppend(ctx, models.TableAlert, uri, models.Schemas[models.TableAlert], warehouse.LoadOptions{})
		require.NoError(t, err)
		assert.Equal(t, 2, ack.Rows)
	})

	t.Run("should roll back a batch with a malformed value", func(t *testing.T) {
		sink, blobs := openSink(t)
		uri := put(t, blobs, "bronze/monitoramento_alertas/part-2.jsonl",
			`{"alerta_id":"ALT-abc","data_ocorrencia":"2024-03-01T10:00:00-03:00","nivel":"CRITICO","maquina_id":"M001","mensagem":"x","valor_medido":101}
{"alerta_id":"ALT-def","data_ocorrencia":"2024-03-01T10:00:00-03:00","nivel":"CRITICO","maquina_id":"M001","mensagem":"x","valor_medido":"hot"}
`)

		_, err := sink.LoadAppend(ctx, models.TableAlert, uri, models.Schemas[models.TableAlert], warehouse.LoadOptions{})
		assert.Error(t, err)

		n, err := sink.Count(ctx, models.TableAlert)
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("should reject invalid timestamps", func(t *testing.T) {
		sink, blobs := openSink(t)
		uri := put(t, blobs, "bronze/monitoramento_alertas/part-3.jsonl",
			`{"alerta_id":"ALT-abc","data_ocorrencia":"yesterday","valor_medido":101}`)

		_, err := sink.LoadAppend(ctx, models.TableAlert, uri, models.Schemas[models.TableAlert], warehouse.LoadOptions{})
		assert.Error(t, err)
	})

	t.Run("should fail on missing objects", func(t *testing.T) {
		sink, _ := openSink(t)
		_, err := sink.LoadAppend(ctx, models.TableSale, "s3://lake/bronze/none.jsonl", models.Schemas[models.TableSale], warehouse.LoadOptions{})
		assert.True(t, errors.Is(err, storage.ErrNotFound))
	})

	t.Run("should accept empty objects", func(t *testing.T) {
		sink, blobs := openSink(t)
		uri := put(t, blobs, "bronze/raw_vendas/part-1.jsonl", "\n")
		ack, err := sink.LoadAppend(ctx, models.TableSale, uri, models.Schemas[models.TableSale], warehouse.LoadOptions{})
		require.NoError(t, err)
		assert.Zero(t, ack.Rows)
	})
}
