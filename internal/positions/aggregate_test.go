package positions

import (
	"math"
	"testing"

	"github.com/andrhp/lp-dashboard/internal/domain/entities"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestAggregate_Empty(t *testing.T) {
	zero := entities.PortfolioStats{}

	if got := Aggregate(nil); got != zero {
		t.Errorf("expected zero stats for nil input, got %+v", got)
	}
	if got := Aggregate([]entities.Position{}); got != zero {
		t.Errorf("expected zero stats for empty input, got %+v", got)
	}
}

func TestAggregate_DemoFixture(t *testing.T) {
	stats := Aggregate(DemoPositions("0xDemo0000000000000000000000000000000000", entities.ChainBSC))

	if stats.TotalPositions != 2 {
		t.Errorf("expected 2 total positions, got %d", stats.TotalPositions)
	}
	if stats.ActivePositions != 2 {
		t.Errorf("expected 2 active positions, got %d", stats.ActivePositions)
	}
	if !almostEqual(stats.TotalValueUSD, 13901.19) {
		t.Errorf("expected total value 13901.19, got %f", stats.TotalValueUSD)
	}
	if !almostEqual(stats.TotalFeesEarnedUSD, 130.44) {
		t.Errorf("expected total fees 130.44, got %f", stats.TotalFeesEarnedUSD)
	}
	if stats.InRangePositions != 1 {
		t.Errorf("expected 1 in-range position, got %d", stats.InRangePositions)
	}
	if stats.OutOfRangePositions != 1 {
		t.Errorf("expected 1 out-of-range position, got %d", stats.OutOfRangePositions)
	}
}

func TestAggregate_CountsAndSums(t *testing.T) {
	list := []entities.Position{
		{Status: entities.StatusActive, InRange: true, ValueUSD: 100, FeesEarnedUSD: 1},
		{Status: entities.StatusOutOfRange, InRange: false, ValueUSD: 200, FeesEarnedUSD: 2},
		{Status: entities.StatusClosed, InRange: false, ValueUSD: 50, FeesEarnedUSD: 0.5},
	}

	stats := Aggregate(list)

	if stats.TotalPositions != 3 {
		t.Errorf("expected 3 total, got %d", stats.TotalPositions)
	}
	if stats.ActivePositions != 1 {
		t.Errorf("expected 1 active, got %d", stats.ActivePositions)
	}
	if !almostEqual(stats.TotalValueUSD, 350) {
		t.Errorf("expected total value 350, got %f", stats.TotalValueUSD)
	}
	if !almostEqual(stats.TotalFeesEarnedUSD, 3.5) {
		t.Errorf("expected total fees 3.5, got %f", stats.TotalFeesEarnedUSD)
	}
	if stats.InRangePositions != 1 || stats.OutOfRangePositions != 2 {
		t.Errorf("expected 1 in range / 2 out, got %d/%d",
			stats.InRangePositions, stats.OutOfRangePositions)
	}
}

func TestAggregate_AverageAPR(t *testing.T) {
	t.Run("zero when no pool reports an APR", func(t *testing.T) {
		list := []entities.Position{
			{Status: entities.StatusActive, ValueUSD: 100},
			{Status: entities.StatusActive, ValueUSD: 200},
		}
		if stats := Aggregate(list); stats.AverageAPR != 0 {
			t.Errorf("expected 0 APR, got %f", stats.AverageAPR)
		}
	})

	t.Run("value-weighted mean over pool APRs", func(t *testing.T) {
		list := []entities.Position{
			{Status: entities.StatusActive, ValueUSD: 100, Pool: entities.Pool{APR: 10}},
			{Status: entities.StatusActive, ValueUSD: 300, Pool: entities.Pool{APR: 20}},
		}
		stats := Aggregate(list)
		if !almostEqual(stats.AverageAPR, 17.5) {
			t.Errorf("expected weighted APR 17.5, got %f", stats.AverageAPR)
		}
	})
}

func TestDemoStats_MatchesFixture(t *testing.T) {
	stats := DemoStats()

	if stats.TotalPositions != 2 || stats.ActivePositions != 2 {
		t.Errorf("unexpected counts: %+v", stats)
	}
	if !almostEqual(stats.TotalValueUSD, 13901.19) {
		t.Errorf("expected 13901.19, got %f", stats.TotalValueUSD)
	}
	if !almostEqual(stats.TotalFeesEarnedUSD, 130.44) {
		t.Errorf("expected 130.44, got %f", stats.TotalFeesEarnedUSD)
	}
	if !almostEqual(stats.AverageAPR, 12.0) {
		t.Errorf("expected 12.0, got %f", stats.AverageAPR)
	}
}
