package simulation

import (
	"time"

	"github.com/autovolt/lakehouse/internal/models"
	"github.com/autovolt/lakehouse/internal/state"
)

// TableRows is one batch of rows destined for a bronze table
type TableRows struct {
	Table string
	Rows  []any
}

func rowsOf[T any](xs []T) []any {
	out := make([]any, len(xs))
	for i := range xs {
		out[i] = xs[i]
	}
	return out
}

// StepOutput is everything generated for one simulated timestamp
type StepOutput struct {
	Time            time.Time
	NewCustomers    []models.Customer
	CustomerUpdates []models.Customer
	Purchases       []models.Purchase
	LotLinks        []models.LotPurchaseLink
	ProductionOutput
	Sales       []models.Sale
	Warranties  []models.Warranty
	Maintenance []models.MaintenanceEvent
}

// Step generates one time-step at t, in dependency order. st is mutated
// in place; the fleet must already be ensured.
func (e *Engine) Step(t time.Time, st *state.SimulationState) StepOutput {
	out := StepOutput{Time: t}
	out.NewCustomers = e.Customers(t, st)
	out.Purchases = e.Purchases(t, st)
	out.ProductionOutput = e.Production(t, st, st.Fleet)
	out.LotLinks = e.LotPurchaseLinks(out.Batches, out.Purchases)
	out.Sales, out.CustomerUpdates = e.Sales(t, st, out.Batches, out.Orders)
	out.Warranties = e.Warranties(t, st, out.Sales)
	out.Maintenance = e.Maintenance(t, st, st.Fleet)
	return out
}

// Tables lists the step's rows per table in persistence order. Tables
// without rows are omitted.
func (o StepOutput) Tables() []TableRows {
	customers := append(append([]models.Customer{}, o.NewCustomers...), o.CustomerUpdates...)
	all := []TableRows{
		{models.TableCustomer, rowsOf(customers)},
		{models.TablePurchase, rowsOf(o.Purchases)},
		{models.TableLotPurchase, rowsOf(o.LotLinks)},
		{models.TableProduction, rowsOf(o.Orders)},
		{models.TableBatch, rowsOf(o.Batches)},
		{models.TableQuality, rowsOf(o.Tests)},
		{models.TableSale, rowsOf(o.Sales)},
		{models.TableWarranty, rowsOf(o.Warranties)},
		{models.TableMaintenance, rowsOf(o.Maintenance)},
		{models.TableAlert, rowsOf(o.Alerts)},
	}

	out := all[:0]
	for _, tr := range all {
		if len(tr.Rows) > 0 {
			out = append(out, tr)
		}
	}
	return out
}

// Counts returns the number of rows per entity family, keyed by the short
// names reported to callers.
func (o StepOutput) Counts() map[string]int {
	return map[string]int{
		"cli":     len(o.NewCustomers),
		"cli_upd": len(o.CustomerUpdates),
		"comp":    len(o.Purchases),
		"map":     len(o.LotLinks),
		"prod":    len(o.Orders),
		"lote":    len(o.Batches),
		"qual":    len(o.Tests),
		"vend":    len(o.Sales),
		"gar":     len(o.Warranties),
		"man":     len(o.Maintenance),
		"alt":     len(o.Alerts),
	}
}

// StaticTables returns the reference tables of a deployment: the calendar
// and sales targets for the configured year range, the plant catalogs and
// the machine fleet.
func StaticTables(fleet []models.Machine, startYear, endYear int) []TableRows {
	calendar := BuildCalendar(startYear, endYear)
	return []TableRows{
		{models.TableCalendar, rowsOf(calendar)},
		{models.TableSalesTarget, rowsOf(BuildSalesTargets(calendar))},
		{models.TableLine, rowsOf(ProductLines)},
		{models.TableShift, rowsOf(Shifts)},
		{models.TableMaintenanceType, rowsOf(MaintenanceTypes)},
		{models.TableDefect, rowsOf(Defects)},
		{models.TableRawMaterial, rowsOf(RawMaterials)},
		{models.TableSupplier, rowsOf(Suppliers)},
		{models.TableProduct, rowsOf(Products)},
		{models.TableMachine, rowsOf(fleet)},
	}
}
