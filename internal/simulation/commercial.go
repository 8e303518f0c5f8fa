package simulation

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/autovolt/lakehouse/internal/models"
	"github.com/autovolt/lakehouse/internal/state"
)

// Customers registers the founding customer on an empty deployment, and
// otherwise occasionally onboards a new one.
func (e *Engine) Customers(t time.Time, st *state.SimulationState) []models.Customer {
	if len(st.CustomerIDs) == 0 {
		st.Customer++
		c := models.Customer{
			ID:               fmt.Sprintf("C%04d", st.Customer),
			Type:             "Distribuidor",
			City:             "SP",
			PlanTier:         "Standard",
			RegistrationDate: date(e.epoch),
			Version:          "1",
		}
		st.AddCustomer(c)
		return []models.Customer{c}
	}

	if e.rng.Float64() >= CustomerArrival.At(t.Year()) {
		return nil
	}

	st.Customer++
	c := models.Customer{
		ID:               fmt.Sprintf("C%04d", st.Customer),
		Type:             choice(e.rng, customerTypes),
		City:             choice(e.rng, customerCities),
		PlanTier:         choice(e.rng, customerPlans),
		RegistrationDate: date(t),
		Version:          "1",
	}
	st.AddCustomer(c)
	return []models.Customer{c}
}

// Purchases emits between one and four raw-material purchases on active
// steps.
func (e *Engine) Purchases(t time.Time, st *state.SimulationState) []models.Purchase {
	if e.rng.Float64() >= PurchaseActivity.At(t.Year()) {
		return nil
	}

	n := intRange(e.rng, 1, 4)
	out := make([]models.Purchase, 0, n)
	for range n {
		st.Purchase++
		qty := intRange(e.rng, 500, 2000)
		unit := money(uniform(e.rng, 20, 100))
		total := decimal.NewFromInt(int64(qty)).Mul(unit).Round(2)

		out = append(out, models.Purchase{
			ID:            fmt.Sprintf("CP%06d", st.Purchase),
			SupplierID:    choice(e.rng, supplierIDs),
			RawMaterialID: choice(e.rng, rawMaterialIDs),
			PurchasedAt:   ts(t),
			Quantity:      strconv.Itoa(qty),
			UnitCost:      unit.String(),
			TotalCost:     total.String(),
		})
	}
	return out
}

// Sales sells the first fifth of the step's batches, at least one, to
// random customers. Every customer touched gets one new snapshot with its
// last purchase date and a bumped version.
func (e *Engine) Sales(t time.Time, st *state.SimulationState, batches []models.Batch, orders []models.ProductionOrder) ([]models.Sale, []models.Customer) {
	if len(batches) == 0 || len(st.CustomerIDs) == 0 {
		return nil, nil
	}

	orderByBatch := make(map[string]string, len(orders))
	for _, o := range orders {
		orderByBatch[o.BatchID] = o.ID
	}

	n := min(len(batches), max(1, len(batches)/SalesShare))
	sales := make([]models.Sale, 0, n)
	var updates []models.Customer
	touched := make(map[string]bool)

	for _, b := range batches[:n] {
		st.Sale++
		customerID := choice(e.rng, st.CustomerIDs)
		qty := intRange(e.rng, 20, 120)
		value := money(uniform(e.rng, 5000, 15000))

		sales = append(sales, models.Sale{
			ID:                fmt.Sprintf("V%07d", st.Sale),
			YearMonthID:       t.Format(YearMonthLayout),
			CustomerID:        customerID,
			ProductID:         b.ProductID,
			ProductionOrderID: orderByBatch[b.ID],
			BatchID:           b.ID,
			SaleDate:          date(t),
			Quantity:          strconv.Itoa(qty),
			TotalValue:        value.String(),
		})

		if touched[customerID] {
			continue
		}
		c, ok := st.Customers[customerID]
		if !ok {
			continue
		}
		touched[customerID] = true
		c.LastPurchaseDate = date(t)
		c.Version = nextVersion(c.Version)
		st.Customers[customerID] = c
		updates = append(updates, c)
	}
	return sales, updates
}

func nextVersion(v string) string {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n < 1 {
		n = 1
	}
	return strconv.Itoa(n + 1)
}

// Warranties raises a claim against a small share of the sales
func (e *Engine) Warranties(t time.Time, st *state.SimulationState, sales []models.Sale) []models.Warranty {
	var out []models.Warranty
	for _, s := range sales {
		if e.rng.Float64() >= WarrantyClaimProbability {
			continue
		}

		st.Warranty++
		days := intRange(e.rng, 1, 90)
		status := choice(e.rng, warrantyStatuses)
		cost := decimal.Zero
		if strings.Contains(status, "Aprovada") {
			cost = money(uniform(e.rng, 200, 3000))
		}

		out = append(out, models.Warranty{
			ID:               fmt.Sprintf("W%07d", st.Warranty),
			CustomerID:       s.CustomerID,
			ProductID:        s.ProductID,
			BatchID:          s.BatchID,
			ComplaintDate:    ts(t.AddDate(0, 0, days)),
			DaysAfterSale:    strconv.Itoa(days),
			DefectID:         choice(e.rng, defectIDs),
			Status:           status,
			ResponseTimeDays: strconv.Itoa(intRange(e.rng, 1, 15)),
			Cost:             cost.String(),
		})
	}
	return out
}
