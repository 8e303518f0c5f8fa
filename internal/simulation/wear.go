package simulation

import (
	"math"
	"math/rand/v2"
	"strconv"
	"time"
)

// Machine physics constants
const (
	BaseTemperatureC   = 65.0
	BaseVibrationRPM   = 1200.0
	WearPerYear        = 0.03
	PerformanceFloor   = 0.85
	FallbackBuildYear  = 2021
	NominalCycleMin    = 0.5
	PlannedUtilization = 0.95

	TemperatureAlertC = 100.0
	VibrationAlertRPM = 2000.0
)

// Reading is a simulated sensor snapshot of one machine
type Reading struct {
	Temperature float64
	Vibration   float64
	Performance float64
}

// ParseBuildYear reads a machine manufacturing year, falling back to
// FallbackBuildYear when it is not a number.
func ParseBuildYear(s string) int {
	year, err := strconv.Atoi(s)
	if err != nil {
		return FallbackBuildYear
	}
	return year
}

// Wear simulates the sensors of a machine built in buildYear at time t.
// Older machines run hotter, shake more and lose performance down to
// PerformanceFloor.
func Wear(r *rand.Rand, buildYear int, t time.Time) Reading {
	age := max(0, t.Year()-buildYear)
	factor := 1 + WearPerYear*float64(age)

	return Reading{
		Temperature: round(normal(r, BaseTemperatureC*factor, 3), 1),
		Vibration:   round(normal(r, BaseVibrationRPM*factor, 150), 0),
		Performance: math.Max(PerformanceFloor, 1-0.01*float64(age)),
	}
}

// Yield is the output of one production window
type Yield struct {
	Planned   int
	Produced  int
	Scrapped  int
	Efficient float64
}

// ComputeYield derives planned, produced and scrapped units for a window of
// durationHours on a machine with the given performance.
func ComputeYield(r *rand.Rand, durationHours, cycleMinutes, performance float64) Yield {
	capacity := int(durationHours * 60 / cycleMinutes)
	planned := int(float64(capacity) * PlannedUtilization)

	efficiency := math.Min(1, math.Max(0, normal(r, performance, 0.05)))
	produced := int(float64(planned) * efficiency)
	scrapped := int(float64(produced) * uniform(r, 0, 0.01+(1-performance)))

	return Yield{Planned: planned, Produced: produced, Scrapped: scrapped, Efficient: efficiency}
}

// Anomaly reports whether a reading crosses an alert threshold. The returned
// value is the reading that triggered it, temperature taking precedence.
func Anomaly(rd Reading) (float64, bool) {
	switch {
	case rd.Temperature > TemperatureAlertC:
		return rd.Temperature, true
	case rd.Vibration > VibrationAlertRPM:
		return rd.Vibration, true
	default:
		return 0, false
	}
}

// ShiftFor maps an hour of the day to its shift id
func ShiftFor(hour int) string {
	switch {
	case hour >= 6 && hour < 14:
		return "T1"
	case hour >= 14 && hour < 22:
		return "T2"
	default:
		return "T3"
	}
}
