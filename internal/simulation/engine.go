package simulation

import (
	"math/rand/v2"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Engine draws every generated entity from one random stream. It is not
// safe for concurrent use; each run builds its own.
type Engine struct {
	rng   *rand.Rand
	epoch time.Time
	newID func() string
}

// NewEngine returns an engine seeded with seed. epoch is the registration
// date of the founding customer.
func NewEngine(seed int64, epoch time.Time) *Engine {
	return &Engine{
		rng:   NewRand(seed),
		epoch: epoch,
		newID: func() string {
			return strings.ReplaceAll(uuid.NewString(), "-", "")[:10]
		},
	}
}
