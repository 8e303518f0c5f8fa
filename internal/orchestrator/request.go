package orchestrator

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/autovolt/lakehouse/internal/config"
)

// Mode selects how the simulated clock advances
type Mode string

const (
	// Incremental runs hourly steps starting at the current time and loads
	// the current year into the warehouse.
	Incremental Mode = "incremental"
	// Backfill runs one step per day over a date range, lake only.
	Backfill Mode = "backfill"
)

// MaxSteps bounds the steps of one incremental run
const MaxSteps = config.MaxStepsPerRun

// ValidationError reports a malformed run request
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

func invalid(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a ValidationError
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// Params are the raw request parameters, as received from HTTP or the CLI
type Params struct {
	Mode  string
	Start string
	End   string
	Steps string
}

// Request is a validated run request
type Request struct {
	Mode  Mode
	Start time.Time
	End   time.Time
	Steps int
}

// Days returns the number of backfill steps
func (r Request) Days() int {
	return int(r.End.Sub(r.Start).Hours()/24) + 1
}

// ParseRequest validates p. Dates are read as local midnight in loc.
// defaultSteps applies when Steps is empty; maxDays bounds a backfill.
func ParseRequest(p Params, loc *time.Location, defaultSteps, maxDays int) (Request, error) {
	mode := Mode(strings.ToLower(strings.TrimSpace(p.Mode)))
	if mode == "" {
		mode = Incremental
	}

	switch mode {
	case Incremental:
		steps := defaultSteps
		if p.Steps != "" {
			n, err := strconv.Atoi(p.Steps)
			if err != nil {
				return Request{}, invalid("ERRO: steps deve ser um inteiro entre 1 e %d", MaxSteps)
			}
			steps = n
		}
		if steps < 1 || steps > MaxSteps {
			return Request{}, invalid("ERRO: steps deve ser um inteiro entre 1 e %d", MaxSteps)
		}
		return Request{Mode: Incremental, Steps: steps}, nil

	case Backfill:
		if p.Start == "" || p.End == "" {
			return Request{}, invalid("ERRO: backfill requer ?mode=backfill&start=YYYY-MM-DD&end=YYYY-MM-DD")
		}
		start, err1 := time.ParseInLocation(time.DateOnly, p.Start, loc)
		end, err2 := time.ParseInLocation(time.DateOnly, p.End, loc)
		if err1 != nil || err2 != nil {
			return Request{}, invalid("ERRO: formato de data inválido. Use YYYY-MM-DD")
		}
		if end.Before(start) {
			return Request{}, invalid("ERRO: end deve ser maior ou igual a start")
		}
		req := Request{Mode: Backfill, Start: start, End: end}
		if req.Days() > maxDays {
			return Request{}, invalid("ERRO: intervalo de backfill excede %d dias", maxDays)
		}
		return req, nil

	default:
		return Request{}, invalid("ERRO: mode inválido %q. Use incremental ou backfill", p.Mode)
	}
}
