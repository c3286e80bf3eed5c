package valuation

import (
	"time"

	"github.com/foliotrack/folio-service/internal/models"
)

// WindowPerformance applies the caller's display window to a full
// inception-to-date chain. The chain itself is never recomputed per window:
// both indices are rebased to 100 at the first point with date >= from, and
// each displayed yield is the rebased index minus 100, so the first
// displayed point always yields exactly 0. The scalar totals remain
// inception-to-date.
func WindowPerformance(chain []models.NavPoint, from, to time.Time) models.PerformanceResult {
	result := models.PerformanceResult{Points: []models.PerformancePoint{}}
	if len(chain) == 0 {
		return result
	}
	from, to = Day(from), Day(to)

	start := len(chain)
	for i, p := range chain {
		if !p.Date.Before(from) {
			start = i
			break
		}
	}

	if start < len(chain) {
		baseTwr := chain[start].TwrIndex
		baseMwr := chain[start].MwrIndex
		if baseTwr == 0 {
			baseTwr = 1
		}
		if baseMwr == 0 {
			baseMwr = 1
		}
		for _, p := range chain[start:] {
			if p.Date.After(to) {
				break
			}
			result.Points = append(result.Points, models.PerformancePoint{
				Date:      p.Date,
				NetAssets: p.Nav,
				YieldTwr:  initialIndex*p.TwrIndex/baseTwr - initialIndex,
				YieldMwr:  initialIndex*p.MwrIndex/baseMwr - initialIndex,
			})
		}
	}

	last := chain[len(chain)-1]
	result.TotalReturnTwr = last.TwrIndex - initialIndex
	result.TotalReturnMwr = last.MwrIndex - initialIndex
	if len(chain) >= 2 {
		prev := chain[len(chain)-2]
		if prev.TwrIndex != 0 {
			result.PrevDayReturnTwr = (last.TwrIndex/prev.TwrIndex - 1) * 100
		}
		if prev.MwrIndex != 0 {
			result.PrevDayReturnMwr = (last.MwrIndex/prev.MwrIndex - 1) * 100
		}
	}
	return result
}
