package state

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/autovolt/lakehouse/internal/models"
)

// DefaultSeed is the seed of a state document that never recorded one
const DefaultSeed int64 = 42

// SeedModulus bounds the seed after each advance
const SeedModulus int64 = 1_000_000_000

// Counters holds the last issued sequence number of every entity family
type Counters struct {
	ProductionOrder int64 `json:"cnt_op"`
	Batch           int64 `json:"cnt_lote"`
	Sale            int64 `json:"cnt_venda"`
	Purchase        int64 `json:"cnt_compra"`
	Customer        int64 `json:"cnt_cliente"`
	Warranty        int64 `json:"cnt_garantia"`
	Maintenance     int64 `json:"cnt_manut"`
}

// ByFamily returns the counters keyed by their document field name
func (c Counters) ByFamily() map[string]int64 {
	return map[string]int64{
		"cnt_op":       c.ProductionOrder,
		"cnt_lote":     c.Batch,
		"cnt_venda":    c.Sale,
		"cnt_compra":   c.Purchase,
		"cnt_cliente":  c.Customer,
		"cnt_garantia": c.Warranty,
		"cnt_manut":    c.Maintenance,
	}
}

// SimulationState is the durable cross-invocation state of the generator.
// It is loaded once per invocation and threaded by pointer through every
// generator call.
type SimulationState struct {
	Seed         int64
	StaticLoaded bool
	Counters
	CustomerIDs []string
	Customers   map[string]models.Customer
	Fleet       []models.Machine
	// Version is bumped on every successful save
	Version int64

	extra map[string]json.RawMessage
}

// New returns the state of a deployment that has never run
func New(seed int64) *SimulationState {
	return &SimulationState{
		Seed:        seed,
		CustomerIDs: []string{},
		Customers:   map[string]models.Customer{},
	}
}

// AddCustomer registers a new customer snapshot
func (s *SimulationState) AddCustomer(c models.Customer) {
	s.CustomerIDs = append(s.CustomerIDs, c.ID)
	s.Customers[c.ID] = c
}

// AdvanceSeed moves the seed so the next run draws a disjoint stream
func (s *SimulationState) AdvanceSeed() {
	s.Seed = (s.Seed + 1) % SeedModulus
}

var knownKeys = map[string]bool{
	"seed": true, "static": true, "version": true,
	"cnt_op": true, "cnt_lote": true, "cnt_venda": true, "cnt_compra": true,
	"cnt_cliente": true, "cnt_garantia": true, "cnt_manut": true,
	"clientes": true, "clientes_dim": true, "fleet": true,
}

// MarshalJSON writes the flat document layout, keeping fields written by
// other versions untouched.
func (s *SimulationState) MarshalJSON() ([]byte, error) {
	doc := make(map[string]any, len(s.extra)+len(knownKeys))
	for k, v := range s.extra {
		doc[k] = v
	}

	customerIDs := s.CustomerIDs
	if customerIDs == nil {
		customerIDs = []string{}
	}
	customers := s.Customers
	if customers == nil {
		customers = map[string]models.Customer{}
	}
	var fleet any
	if len(s.Fleet) > 0 {
		fleet = s.Fleet
	}

	doc["seed"] = s.Seed
	doc["static"] = s.StaticLoaded
	doc["version"] = s.Version
	for k, v := range s.Counters.ByFamily() {
		doc[k] = v
	}
	doc["clientes"] = customerIDs
	doc["clientes_dim"] = customers
	doc["fleet"] = fleet

	return json.Marshal(doc)
}

// UnmarshalJSON migrates a stored document: missing fields take their
// defaults, numbers stored as strings or floats are coerced, an empty
// fleet counts as absent and unknown fields are retained.
func (s *SimulationState) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to decode state document: %w", err)
	}

	next := New(DefaultSeed)
	next.extra = make(map[string]json.RawMessage)
	for k, v := range raw {
		if !knownKeys[k] {
			next.extra[k] = v
		}
	}

	if v, ok := raw["seed"]; ok {
		next.Seed = lenientInt(v)
	}
	if v, ok := raw["static"]; ok {
		next.StaticLoaded = lenientBool(v)
	}
	if v, ok := raw["version"]; ok {
		next.Version = lenientInt(v)
	}

	counters := map[string]*int64{
		"cnt_op":       &next.ProductionOrder,
		"cnt_lote":     &next.Batch,
		"cnt_venda":    &next.Sale,
		"cnt_compra":   &next.Purchase,
		"cnt_cliente":  &next.Customer,
		"cnt_garantia": &next.Warranty,
		"cnt_manut":    &next.Maintenance,
	}
	for key, dst := range counters {
		if v, ok := raw[key]; ok {
			*dst = lenientInt(v)
		}
	}

	if v, ok := raw["clientes"]; ok {
		if err := json.Unmarshal(v, &next.CustomerIDs); err != nil {
			return fmt.Errorf("failed to decode clientes: %w", err)
		}
	}
	if next.CustomerIDs == nil {
		next.CustomerIDs = []string{}
	}

	if v, ok := raw["clientes_dim"]; ok {
		if err := json.Unmarshal(v, &next.Customers); err != nil {
			return fmt.Errorf("failed to decode clientes_dim: %w", err)
		}
	}
	if next.Customers == nil {
		next.Customers = map[string]models.Customer{}
	}

	if v, ok := raw["fleet"]; ok {
		if err := json.Unmarshal(v, &next.Fleet); err != nil {
			return fmt.Errorf("failed to decode fleet: %w", err)
		}
	}
	if len(next.Fleet) == 0 {
		next.Fleet = nil
	}

	*s = *next
	return nil
}

// lenientInt reads an integer stored as a number or a numeric string.
// Anything else reads as zero.
func lenientInt(raw json.RawMessage) int64 {
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		if i, err := n.Int64(); err == nil {
			return i
		}
		if f, err := n.Float64(); err == nil && !math.IsNaN(f) {
			return int64(f)
		}
		return 0
	}

	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		if i, err := strconv.ParseInt(str, 10, 64); err == nil {
			return i
		}
		if f, err := strconv.ParseFloat(str, 64); err == nil && !math.IsNaN(f) {
			return int64(f)
		}
	}
	return 0
}

// lenientBool reads a flag stored as a boolean, a number or a string such
// as "true" or "1". Anything else reads as false.
func lenientBool(raw json.RawMessage) bool {
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return b
	}

	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		if b, err := strconv.ParseBool(strings.TrimSpace(str)); err == nil {
			return b
		}
	}
	return lenientInt(raw) != 0
}
