package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/autovolt/lakehouse/internal/orchestrator"
	"github.com/autovolt/lakehouse/internal/services/lock"
	"github.com/autovolt/lakehouse/internal/state"
)

// Runner executes a validated run request
type Runner interface {
	Run(ctx context.Context, req orchestrator.Request) (orchestrator.Summary, error)
}

// ParseFunc validates raw run parameters
type ParseFunc func(orchestrator.Params) (orchestrator.Request, error)

// RunHandler triggers generator runs
type RunHandler struct {
	runner Runner
	parse  ParseFunc
}

// NewRunHandler creates a new run handler
func NewRunHandler(runner Runner, parse ParseFunc) *RunHandler {
	return &RunHandler{runner: runner, parse: parse}
}

// Trigger validates the query and runs the generator. Parameters are read
// from the query string, falling back to a form body on POST.
func (h *RunHandler) Trigger(c *gin.Context) {
	params := orchestrator.Params{
		Mode:  param(c, "mode"),
		Start: param(c, "start"),
		End:   param(c, "end"),
		Steps: param(c, "steps"),
	}

	req, err := h.parse(params)
	if err != nil {
		c.String(http.StatusBadRequest, err.Error())
		return
	}

	summary, err := h.runner.Run(c.Request.Context(), req)
	if err != nil {
		c.String(statusFor(err), "ERRO: "+err.Error())
		return
	}

	c.String(http.StatusOK, summary.String())
}

func param(c *gin.Context, key string) string {
	if v := c.Query(key); v != "" {
		return v
	}
	if c.Request.Method == http.MethodPost {
		return c.PostForm(key)
	}
	return ""
}

func statusFor(err error) int {
	switch {
	case orchestrator.IsValidation(err):
		return http.StatusBadRequest
	case errors.Is(err, lock.ErrHeld), errors.Is(err, state.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
