package positions

import (
	"sort"
	"strings"

	"github.com/andrhp/lp-dashboard/internal/domain/entities"
)

// Apply produces a filtered, optionally sorted view of a position set. The
// input slice is never mutated. Predicates combine with logical AND: status
// membership, chain membership, pool membership, case-insensitive substring
// search over the pair symbols and the position id, and the valueUSD range.
// An empty spec returns every position in its original order.
func Apply(list []entities.Position, spec entities.FilterSpec) []entities.Position {
	out := make([]entities.Position, 0, len(list))
	search := strings.ToLower(spec.Search)

	for _, p := range list {
		if len(spec.Status) > 0 && !hasStatus(spec.Status, p.Status) {
			continue
		}
		if len(spec.Chains) > 0 && !hasChain(spec.Chains, p.Chain) {
			continue
		}
		if len(spec.Pools) > 0 && !hasPool(spec.Pools, p.Pool.Address) {
			continue
		}
		if search != "" && !matchesSearch(p, search) {
			continue
		}
		if spec.MinValue != nil && p.ValueUSD < *spec.MinValue {
			continue
		}
		if spec.MaxValue != nil && p.ValueUSD > *spec.MaxValue {
			continue
		}
		out = append(out, p)
	}

	sortView(out, spec.SortBy, spec.SortOrder)
	return out
}

func hasStatus(set []entities.PositionStatus, s entities.PositionStatus) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}

func hasChain(set []entities.Chain, c entities.Chain) bool {
	for _, v := range set {
		if v == c {
			return true
		}
	}
	return false
}

func hasPool(set []string, address string) bool {
	for _, v := range set {
		if strings.EqualFold(v, address) {
			return true
		}
	}
	return false
}

// A position matches when any of the pair symbols or the id contains the
// search term.
func matchesSearch(p entities.Position, search string) bool {
	return strings.Contains(strings.ToLower(p.Pool.Token0.Symbol), search) ||
		strings.Contains(strings.ToLower(p.Pool.Token1.Symbol), search) ||
		strings.Contains(strings.ToLower(p.ID), search)
}

// sortView stable-sorts the view by the named key, ascending unless desc.
// An unrecognized key leaves the order unchanged.
func sortView(list []entities.Position, key entities.SortKey, order entities.SortOrder) {
	var value func(entities.Position) float64

	switch key {
	case entities.SortByValue:
		value = func(p entities.Position) float64 { return p.ValueUSD }
	case entities.SortByFees:
		value = func(p entities.Position) float64 { return p.FeesEarnedUSD }
	case entities.SortByAPR:
		value = func(p entities.Position) float64 { return p.Pool.APR }
	case entities.SortByCreatedAt:
		value = func(p entities.Position) float64 { return float64(p.CreatedAt.UnixMilli()) }
	default:
		return
	}

	sort.SliceStable(list, func(i, j int) bool {
		if order == entities.SortDesc {
			return value(list[i]) > value(list[j])
		}
		return value(list[i]) < value(list[j])
	})
}
