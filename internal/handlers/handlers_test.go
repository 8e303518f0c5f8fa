package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autovolt/lakehouse/internal/handlers"
	"github.com/autovolt/lakehouse/internal/orchestrator"
	"github.com/autovolt/lakehouse/internal/services/lock"
	"github.com/autovolt/lakehouse/internal/services/notification"
	"github.com/autovolt/lakehouse/internal/state"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var recife = time.FixedZone("America/Recife", -3*3600)

type fakeRunner struct {
	got     []orchestrator.Request
	summary orchestrator.Summary
	err     error
}

func (f *fakeRunner) Run(ctx context.Context, req orchestrator.Request) (orchestrator.Summary, error) {
	f.got = append(f.got, req)
	if f.err != nil {
		return orchestrator.Summary{}, f.err
	}
	s := f.summary
	s.Mode = req.Mode
	return s, nil
}

func parse(p orchestrator.Params) (orchestrator.Request, error) {
	return orchestrator.ParseRequest(p, recife, 1, 366)
}

func setupRunRouter(runner handlers.Runner) *gin.Engine {
	router := gin.New()
	h := handlers.NewRunHandler(runner, parse)
	router.GET("/", h.Trigger)
	router.POST("/", h.Trigger)
	return router
}

func TestRunHandler(t *testing.T) {
	t.Run("should run and return the summary line", func(t *testing.T) {
		runner := &fakeRunner{summary: orchestrator.Summary{RunID: "r1", Counts: map[string]int{"prod": 20}}}
		router := setupRunRouter(runner)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/?steps=3", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.True(t, strings.HasPrefix(w.Body.String(), "OK incremental run_id=r1 | cli=0"))
		require.Len(t, runner.got, 1)
		assert.Equal(t, 3, runner.got[0].Steps)
	})

	t.Run("should read backfill parameters from a form body", func(t *testing.T) {
		runner := &fakeRunner{summary: orchestrator.Summary{RunID: "r2"}}
		router := setupRunRouter(runner)

		form := url.Values{"mode": {"backfill"}, "start": {"2022-01-01"}, "end": {"2022-01-05"}}
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		require.Len(t, runner.got, 1)
		assert.Equal(t, orchestrator.Backfill, runner.got[0].Mode)
		assert.Equal(t, 5, runner.got[0].Days())
	})

	t.Run("should reject invalid requests without running", func(t *testing.T) {
		runner := &fakeRunner{}
		router := setupRunRouter(runner)

		for _, target := range []string{"/?mode=backfill", "/?steps=99", "/?mode=backfill&start=01-01-2022&end=2022-01-02", "/?mode=x"} {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
			assert.Equal(t, http.StatusBadRequest, w.Code, target)
			assert.True(t, strings.HasPrefix(w.Body.String(), "ERRO:"), target)
		}
		assert.Empty(t, runner.got)
	})

	t.Run("should map run failures to status codes", func(t *testing.T) {
		cases := []struct {
			err  error
			code int
		}{
			{lock.ErrHeld, http.StatusConflict},
			{fmt.Errorf("failed to save state: %w", state.ErrConflict), http.StatusConflict},
			{errors.New("bucket unreachable"), http.StatusInternalServerError},
		}
		for _, tc := range cases {
			router := setupRunRouter(&fakeRunner{err: tc.err})
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

			assert.Equal(t, tc.code, w.Code, tc.err.Error())
			assert.Equal(t, "ERRO: "+tc.err.Error(), w.Body.String())
		}
	})
}

type fakeHistory struct {
	events []notification.RunEvent
	limit  int
	err    error
}

func (f *fakeHistory) Recent(ctx context.Context, limit int) ([]notification.RunEvent, error) {
	f.limit = limit
	if f.err != nil {
		return nil, f.err
	}
	return f.events[:min(limit, len(f.events))], nil
}

func setupHistoryRouter(history handlers.History) *gin.Engine {
	router := gin.New()
	router.GET("/api/v1/runs", handlers.NewHistoryHandler(history).List)
	return router
}

func TestHistoryHandler(t *testing.T) {
	events := []notification.RunEvent{
		{RunID: "r2", Mode: "incremental", Status: "ok"},
		{RunID: "r1", Mode: "backfill", Status: "error", Error: "boom"},
	}

	t.Run("should list recent runs with the default limit", func(t *testing.T) {
		history := &fakeHistory{events: events}
		w := httptest.NewRecorder()
		setupHistoryRouter(history).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/runs", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 20, history.limit)

		var body struct {
			Runs  []notification.RunEvent `json:"runs"`
			Count int                     `json:"count"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, 2, body.Count)
		assert.Equal(t, "r2", body.Runs[0].RunID)
	})

	t.Run("should honor an explicit limit", func(t *testing.T) {
		history := &fakeHistory{events: events}
		w := httptest.NewRecorder()
		setupHistoryRouter(history).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/runs?limit=1", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 1, history.limit)
		assert.Contains(t, w.Body.String(), `"count":1`)
	})

	t.Run("should reject invalid limits", func(t *testing.T) {
		for _, limit := range []string{"0", "101", "abc"} {
			w := httptest.NewRecorder()
			setupHistoryRouter(&fakeHistory{}).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/runs?limit="+limit, nil))
			assert.Equal(t, http.StatusBadRequest, w.Code, limit)
		}
	})

	t.Run("should report history failures", func(t *testing.T) {
		w := httptest.NewRecorder()
		setupHistoryRouter(&fakeHistory{err: errors.New("redis down")}).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/runs", nil))
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}
