package simulation

import (
	"fmt"
	"strconv"

	"github.com/autovolt/lakehouse/internal/models"
)

var monthNames = [...]string{
	"Janeiro", "Fevereiro", "Março", "Abril", "Maio", "Junho",
	"Julho", "Agosto", "Setembro", "Outubro", "Novembro", "Dezembro",
}

var monthAbbrev = [...]string{"jan", "fev", "mar", "abr", "mai", "jun", "jul", "ago", "set", "out", "nov", "dez"}

// Monthly sales goal applied to every calendar month
const (
	MonthlyTargetQuantity = "2000"
	MonthlyTargetValue    = "500000"
)

// BuildCalendar returns one row per month of the inclusive year range
func BuildCalendar(startYear, endYear int) []models.CalendarMonth {
	var out []models.CalendarMonth
	for year := startYear; year <= endYear; year++ {
		for month := 1; month <= 12; month++ {
			y := strconv.Itoa(year)
			out = append(out, models.CalendarMonth{
				ID:        fmt.Sprintf("%d-%02d", year, month),
				Year:      y,
				Month:     fmt.Sprintf("%02d", month),
				MonthName: monthNames[month-1],
				Quarter:   strconv.Itoa((month-1)/3 + 1),
				Label:     fmt.Sprintf("%s/%02d", monthAbbrev[month-1], year%100),
			})
		}
	}
	return out
}

// BuildSalesTargets returns one target per calendar month
func BuildSalesTargets(calendar []models.CalendarMonth) []models.SalesTarget {
	out := make([]models.SalesTarget, len(calendar))
	for i, m := range calendar {
		out[i] = models.SalesTarget{
			ID:             fmt.Sprintf("M%04d", i+1),
			YearMonthID:    m.ID,
			TargetQuantity: MonthlyTargetQuantity,
			TargetValue:    MonthlyTargetValue,
		}
	}
	return out
}
