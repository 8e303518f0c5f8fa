package simulation

// YearCurve is a probability that decays in two steps after a cutoff year
type YearCurve struct {
	Cutoff     int
	UpToCutoff float64
	NextYear   float64
	Later      float64
}

// At returns the probability for the given calendar year
func (c YearCurve) At(year int) float64 {
	switch {
	case year <= c.Cutoff:
		return c.UpToCutoff
	case year == c.Cutoff+1:
		return c.NextYear
	default:
		return c.Later
	}
}

var (
	// CustomerArrival is the chance of a new customer per step
	CustomerArrival = YearCurve{Cutoff: 2023, UpToCutoff: 0.20, NextYear: 0.08, Later: 0.04}
	// PurchaseActivity is the chance of buying raw material in a step
	PurchaseActivity = YearCurve{Cutoff: 2023, UpToCutoff: 0.55, NextYear: 0.45, Later: 0.35}
)

const (
	WarrantyClaimProbability = 0.01
	MaintenanceProbability   = 0.05
	// SalesShare is the divisor applied to the step's batches to get the
	// number of batches sold
	SalesShare = 5
)
