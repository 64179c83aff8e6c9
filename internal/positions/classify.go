package positions

import "github.com/andrhp/lp-dashboard/internal/domain/entities"

// Classification is the derived status of a position relative to the pool's
// current price.
type Classification struct {
	Status  entities.PositionStatus
	InRange bool
}

// Classify determines whether a position is active, out of range, or
// closed. A closed marker wins unconditionally; range membership is not
// evaluated for closed positions. Bounds are inclusive, so a price sitting
// exactly on either bound counts as in range, and a zero-width range admits
// only the exact price. Classify is idempotent: reclassifying an already
// classified position yields the same result.
func Classify(p entities.Position) Classification {
	if p.Status == entities.StatusClosed {
		return Classification{Status: entities.StatusClosed, InRange: false}
	}
	if p.CurrentPrice >= p.PriceRange.Lower && p.CurrentPrice <= p.PriceRange.Upper {
		return Classification{Status: entities.StatusActive, InRange: true}
	}
	return Classification{Status: entities.StatusOutOfRange, InRange: false}
}

// Annotate applies Classify to the position in place
func Annotate(p *entities.Position) {
	c := Classify(*p)
	p.Status = c.Status
	p.InRange = c.InRange
}

// InRangePercent is a display-only heuristic for progress bars: 100 when
// the current price sits inside the bounds, 0 otherwise. A point price
// against a closed interval has no partial-overlap state to interpolate.
func InRangePercent(p entities.Position) int {
	if p.Status == entities.StatusClosed {
		return 0
	}
	if p.CurrentPrice >= p.PriceRange.Lower && p.CurrentPrice <= p.PriceRange.Upper {
		return 100
	}
	return 0
}
