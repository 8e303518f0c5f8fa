package simulation_test

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/autovolt/lakehouse/internal/simulation"
)

var recife = time.FixedZone("America/Recife", -3*3600)

func at(year int, month time.Month, day, hour int) time.Time {
	return time.Date(year, month, day, hour, 0, 0, 0, recife)
}

func isRounded(x float64, places int) bool {
	p := math.Pow(10, float64(places))
	return math.Abs(x*p-math.Round(x*p)) < 1e-6
}

func TestWear(t *testing.T) {
	t.Run("should degrade performance by one percent per year of age", func(t *testing.T) {
		r := simulation.NewRand(1)
		rd := simulation.Wear(r, 2019, at(2024, time.March, 1, 8))
		assert.InDelta(t, 0.95, rd.Performance, 1e-9)
	})

	t.Run("should floor performance", func(t *testing.T) {
		r := simulation.NewRand(1)
		rd := simulation.Wear(r, 2000, at(2030, time.March, 1, 8))
		assert.InDelta(t, simulation.PerformanceFloor, rd.Performance, 1e-9)
	})

	t.Run("should treat machines built in the future as new", func(t *testing.T) {
		r := simulation.NewRand(1)
		rd := simulation.Wear(r, 2026, at(2022, time.March, 1, 8))
		assert.InDelta(t, 1.0, rd.Performance, 1e-9)
	})

	t.Run("should round temperature to one decimal and vibration to units", func(t *testing.T) {
		r := simulation.NewRand(7)
		for range 200 {
			rd := simulation.Wear(r, 2020, at(2023, time.May, 2, 9))
			assert.True(t, isRounded(rd.Temperature, 1), "temperature %v", rd.Temperature)
			assert.True(t, isRounded(rd.Vibration, 0), "vibration %v", rd.Vibration)
		}
	})

	t.Run("should center readings on the age-scaled base values", func(t *testing.T) {
		r := simulation.NewRand(11)
		const n = 4000
		var temp, vib float64
		for range n {
			rd := simulation.Wear(r, 2019, at(2024, time.May, 2, 9))
			temp += rd.Temperature
			vib += rd.Vibration
		}
		factor := 1 + 0.03*5
		assert.InDelta(t, 65*factor, temp/n, 0.5)
		assert.InDelta(t, 1200*factor, vib/n, 20)
	})
}

func TestParseBuildYear(t *testing.T) {
	t.Run("should parse numeric years", func(t *testing.T) {
		assert.Equal(t, 2019, simulation.ParseBuildYear("2019"))
	})

	t.Run("should fall back on malformed years", func(t *testing.T) {
		assert.Equal(t, 2021, simulation.ParseBuildYear("abc"))
		assert.Equal(t, 2021, simulation.ParseBuildYear(""))
	})
}

func TestComputeYield(t *testing.T) {
	t.Run("should plan 95 percent of capacity", func(t *testing.T) {
		r := simulation.NewRand(3)
		y := simulation.ComputeYield(r, 1.0, 0.5, 1.0)
		assert.Equal(t, 114, y.Planned)
	})

	t.Run("should keep produced within planned and scrap within the wear bound", func(t *testing.T) {
		r := simulation.NewRand(5)
		for _, perf := range []float64{1.0, 0.95, 0.85} {
			for range 500 {
				y := simulation.ComputeYield(r, 0.9, 0.5, perf)
				assert.Equal(t, 102, y.Planned)
				assert.GreaterOrEqual(t, y.Produced, 0)
				assert.LessOrEqual(t, y.Produced, y.Planned)
				assert.GreaterOrEqual(t, y.Scrapped, 0)
				assert.LessOrEqual(t, float64(y.Scrapped), float64(y.Produced)*(0.01+1-perf)+1e-9)
				assert.GreaterOrEqual(t, y.Efficient, 0.0)
				assert.LessOrEqual(t, y.Efficient, 1.0)
			}
		}
	})
}

func TestAnomaly(t *testing.T) {
	t.Run("should report the temperature when it crosses the threshold", func(t *testing.T) {
		v, ok := simulation.Anomaly(simulation.Reading{Temperature: 100.4, Vibration: 2500})
		assert.True(t, ok)
		assert.Equal(t, 100.4, v)
	})

	t.Run("should report the vibration when only it crosses the threshold", func(t *testing.T) {
		v, ok := simulation.Anomaly(simulation.Reading{Temperature: 80, Vibration: 2001})
		assert.True(t, ok)
		assert.Equal(t, 2001.0, v)
	})

	t.Run("should not alert at the thresholds", func(t *testing.T) {
		_, ok := simulation.Anomaly(simulation.Reading{Temperature: 100, Vibration: 2000})
		assert.False(t, ok)
	})
}

func TestShiftFor(t *testing.T) {
	cases := map[int]string{
		0: "T3", 5: "T3", 6: "T1", 10: "T1", 13: "T1",
		14: "T2", 21: "T2", 22: "T3", 23: "T3",
	}
	for hour, want := range cases {
		assert.Equal(t, want, simulation.ShiftFor(hour), "hour %d", hour)
	}
}

func TestYearCurve(t *testing.T) {
	t.Run("should step down after the cutoff", func(t *testing.T) {
		assert.Equal(t, 0.20, simulation.CustomerArrival.At(2022))
		assert.Equal(t, 0.20, simulation.CustomerArrival.At(2023))
		assert.Equal(t, 0.08, simulation.CustomerArrival.At(2024))
		assert.Equal(t, 0.04, simulation.CustomerArrival.At(2025))
		assert.Equal(t, 0.04, simulation.CustomerArrival.At(2030))
	})

	t.Run("should decay purchase activity", func(t *testing.T) {
		assert.Equal(t, 0.55, simulation.PurchaseActivity.At(2023))
		assert.Equal(t, 0.45, simulation.PurchaseActivity.At(2024))
		assert.Equal(t, 0.35, simulation.PurchaseActivity.At(2026))
	})
}
