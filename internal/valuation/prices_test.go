package valuation

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foliotrack/folio-service/internal/models"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func pricePoint(symbol string, date time.Time, close float64) models.PricePoint {
	return models.PricePoint{Symbol: symbol, Date: date, Close: decimal.NewFromFloat(close)}
}

func TestBuildDailySeries(t *testing.T) {
	t.Run("forward fill across gaps", func(t *testing.T) {
		// Raw closes on days 1 and 5 only; the series for days 1-7 carries
		// d1 until d5 arrives, and day 0 stays absent.
		points := []models.PricePoint{
			pricePoint("AAPL", day(2025, 3, 1), 100),
			pricePoint("AAPL", day(2025, 3, 5), 105),
		}
		series := BuildDailySeries(points, day(2025, 3, 1), day(2025, 3, 7))

		expected := map[int]float64{1: 100, 2: 100, 3: 100, 4: 100, 5: 105, 6: 105, 7: 105}
		for d, want := range expected {
			got, ok := series.CloseOn("AAPL", day(2025, 3, d))
			require.True(t, ok, "day %d should have a close", d)
			gotF, _ := got.Float64()
			assert.Equal(t, want, gotF, "day %d", d)
		}

		_, ok := series.CloseOn("AAPL", day(2025, 2, 28))
		assert.False(t, ok, "day before any data must be absent")
	})

	t.Run("days before first close are absent", func(t *testing.T) {
		points := []models.PricePoint{pricePoint("MSFT", day(2025, 3, 4), 50)}
		series := BuildDailySeries(points, day(2025, 3, 1), day(2025, 3, 7))

		for d := 1; d <= 3; d++ {
			_, ok := series.CloseOn("MSFT", day(2025, 3, d))
			assert.False(t, ok, "day %d precedes the first close", d)
		}
		got, ok := series.CloseOn("MSFT", day(2025, 3, 4))
		require.True(t, ok)
		assert.True(t, got.Equal(decimal.NewFromInt(50)))
	})

	t.Run("seed point strictly before the window fills the first day", func(t *testing.T) {
		points := []models.PricePoint{
			pricePoint("VWRL", day(2025, 2, 26), 98),
			pricePoint("VWRL", day(2025, 3, 3), 99),
		}
		series := BuildDailySeries(points, day(2025, 3, 1), day(2025, 3, 4))

		got, ok := series.CloseOn("VWRL", day(2025, 3, 1))
		require.True(t, ok, "seed close should cover the first requested day")
		assert.True(t, got.Equal(decimal.NewFromInt(98)))

		got, _ = series.CloseOn("VWRL", day(2025, 3, 3))
		assert.True(t, got.Equal(decimal.NewFromInt(99)))
	})

	t.Run("unknown symbol lookup misses", func(t *testing.T) {
		series := BuildDailySeries(nil, day(2025, 3, 1), day(2025, 3, 7))
		_, ok := series.CloseOn("NOPE", day(2025, 3, 1))
		assert.False(t, ok)
	})

	t.Run("unsorted raw points are sorted before filling", func(t *testing.T) {
		points := []models.PricePoint{
			pricePoint("AAPL", day(2025, 3, 5), 105),
			pricePoint("AAPL", day(2025, 3, 1), 100),
		}
		series := BuildDailySeries(points, day(2025, 3, 1), day(2025, 3, 5))

		got, ok := series.CloseOn("AAPL", day(2025, 3, 3))
		require.True(t, ok)
		assert.True(t, got.Equal(decimal.NewFromInt(100)))
	})
}
