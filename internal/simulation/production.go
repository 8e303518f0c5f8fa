package simulation

import (
	"fmt"
	"time"

	"github.com/autovolt/lakehouse/internal/models"
	"github.com/autovolt/lakehouse/internal/state"
)

// Quality test constants
const (
	NominalVoltage     = 12.6
	InternalResistance = "6.0"
	TestedCapacityAh   = "60.0"
	QualityTestDelay   = 10 * time.Minute
)

// ProductionOutput groups the records produced for one time-step
type ProductionOutput struct {
	Orders  []models.ProductionOrder
	Batches []models.Batch
	Tests   []models.QualityTest
	Alerts  []models.Alert
}

// Production runs one batch on every machine of the fleet starting at t
func (e *Engine) Production(t time.Time, st *state.SimulationState, fleet []models.Machine) ProductionOutput {
	out := ProductionOutput{
		Orders:  make([]models.ProductionOrder, 0, len(fleet)),
		Batches: make([]models.Batch, 0, len(fleet)),
		Tests:   make([]models.QualityTest, 0, len(fleet)),
	}

	for _, m := range fleet {
		st.ProductionOrder++
		st.Batch++
		orderID := fmt.Sprintf("OP%07d", st.ProductionOrder)
		batchID := fmt.Sprintf("Lote%07d", st.Batch)

		rd := Wear(e.rng, ParseBuildYear(m.ManufacturingYear), t)
		duration := round(uniform(e.rng, 0.8, 1.0), 2)
		end := t.Add(time.Duration(duration * float64(time.Hour)).Round(time.Second))
		productID := choice(e.rng, productIDs)
		y := ComputeYield(e.rng, duration, NominalCycleMin, rd.Performance)

		out.Batches = append(out.Batches, models.Batch{
			ID:            batchID,
			ProductID:     productID,
			LineID:        m.LineID,
			MachineID:     m.ID,
			StartTime:     ts(t),
			EndTime:       ts(end),
			DurationHours: short(duration),
		})

		out.Orders = append(out.Orders, models.ProductionOrder{
			ID:                  orderID,
			BatchID:             batchID,
			ProductID:           productID,
			LineID:              m.LineID,
			MachineID:           m.ID,
			ShiftID:             ShiftFor(t.Hour()),
			StartTime:           ts(t),
			NominalCycleMinutes: short(NominalCycleMin),
			DurationHours:       short(duration),
			AvgTemperature:      fixed(rd.Temperature, 1),
			AvgVibration:        fixed(rd.Vibration, 1),
			AvgPressure:         fixed(round(uniform(e.rng, 6, 8), 1), 1),
			QuantityPlanned:     itoa(y.Planned),
			QuantityProduced:    itoa(y.Produced),
			QuantityScrapped:    itoa(y.Scrapped),
		})

		approved := "0"
		if y.Produced > 0 {
			approved = "1"
		}
		out.Tests = append(out.Tests, models.QualityTest{
			ID:                 fmt.Sprintf("T%07d", st.Batch),
			BatchID:            batchID,
			ProductID:          productID,
			TestedAt:           ts(end.Add(QualityTestDelay)),
			MeasuredVoltage:    short(round(normal(e.rng, NominalVoltage, 0.2), 2)),
			InternalResistance: InternalResistance,
			TestedCapacityAh:   TestedCapacityAh,
			DefectID:           "D00",
			Approved:           approved,
		})

		if value, ok := Anomaly(rd); ok {
			out.Alerts = append(out.Alerts, models.Alert{
				ID:            "ALT-" + e.newID(),
				OccurredAt:    t.Format(time.RFC3339),
				Level:         "CRITICO",
				MachineID:     m.ID,
				Message:       "Anomalia Detectada",
				MeasuredValue: value,
			})
		}
	}
	return out
}

// LotPurchaseLinks attaches up to three of the step's purchases to each
// batch, without repeating a purchase within a batch.
func (e *Engine) LotPurchaseLinks(batches []models.Batch, purchases []models.Purchase) []models.LotPurchaseLink {
	if len(batches) == 0 || len(purchases) == 0 {
		return nil
	}

	var out []models.LotPurchaseLink
	for _, b := range batches {
		k := intRange(e.rng, 0, min(3, len(purchases)))
		if k == 0 {
			continue
		}
		for _, i := range e.rng.Perm(len(purchases))[:k] {
			out = append(out, models.LotPurchaseLink{BatchID: b.ID, PurchaseID: purchases[i].ID})
		}
	}
	return out
}

// Maintenance occasionally schedules a two-hour intervention on a random
// machine.
func (e *Engine) Maintenance(t time.Time, st *state.SimulationState, fleet []models.Machine) []models.MaintenanceEvent {
	if len(fleet) == 0 || e.rng.Float64() >= MaintenanceProbability {
		return nil
	}

	st.Maintenance++
	m := choice(e.rng, fleet)
	return []models.MaintenanceEvent{{
		ID:              fmt.Sprintf("EVM%07d", st.Maintenance),
		MachineID:       m.ID,
		LineID:          m.LineID,
		TypeID:          choice(e.rng, maintenanceTypeIDs),
		StartTime:       ts(t),
		EndTime:         ts(t.Add(2 * time.Hour)),
		DurationMinutes: "120",
		Criticality:     choice(e.rng, maintenanceCriticality),
	}}
}
