package simulation

import (
	"fmt"
	"strconv"

	"github.com/autovolt/lakehouse/internal/models"
	"github.com/autovolt/lakehouse/internal/state"
)

// EnsureFleet returns the persisted fleet, generating and storing size
// machines the first time it is called for a deployment.
func (e *Engine) EnsureFleet(st *state.SimulationState, size int) []models.Machine {
	if len(st.Fleet) > 0 {
		return st.Fleet
	}

	fleet := make([]models.Machine, size)
	for i := range fleet {
		fleet[i] = models.Machine{
			ID:                fmt.Sprintf("M%03d", i+1),
			Type:              choice(e.rng, machineTypes),
			Manufacturer:      choice(e.rng, machineManufacturers),
			ManufacturingYear: strconv.Itoa(choice(e.rng, machineYears)),
			LineID:            choice(e.rng, lineIDs),
		}
	}
	st.Fleet = fleet
	return fleet
}
