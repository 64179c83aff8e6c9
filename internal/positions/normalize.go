package positions

import (
	"strconv"
	"time"

	"github.com/andrhp/lp-dashboard/internal/domain/entities"
)

// Defaults applied when the upstream record omits a field. Fee tier and tick
// spacing match the most common PancakeSwap-style V3 pool configuration.
const (
	DefaultFeeTier     = 3000
	DefaultTickSpacing = 60
	DefaultDecimals    = 18

	UnknownID        = "unknown"
	UnknownSymbol    = "UNKNOWN"
	UnknownTokenName = "Unknown Token"
)

// Normalize converts one raw upstream record into the canonical position
// model, owned by the given wallet on the given chain. Every field falls
// back independently: aliases are tried in priority order and documented
// defaults fill whatever the backend omitted. The current price is the
// midpoint of the supplied price bounds, an approximation in place of a
// live price feed. Callers run Classify on the result before relying on
// status or inRange.
func Normalize(raw RawRecord, owner string, chain entities.Chain) entities.Position {
	now := time.Now().UTC()

	var tokenID int64
	switch {
	case raw.TokenID != nil:
		tokenID = *raw.TokenID
	case raw.TokenIDAlt != nil:
		tokenID = *raw.TokenIDAlt
	}

	id := string(raw.ID)
	if id == "" {
		if raw.TokenID != nil || raw.TokenIDAlt != nil {
			id = strconv.FormatInt(tokenID, 10)
		} else {
			id = UnknownID
		}
	}

	status := entities.StatusActive
	if raw.Status == string(entities.StatusClosed) {
		status = entities.StatusClosed
	}

	priceLower := floatOrZero(raw.PriceLower)
	priceUpper := floatOrZero(raw.PriceUpper)
	if priceLower > priceUpper {
		priceLower, priceUpper = priceUpper, priceLower
	}

	liquidity := stringOr(raw.Liquidity, "0")
	owed0 := stringOr(raw.TokensOwed0, "0")
	owed1 := stringOr(raw.TokensOwed1, "0")

	return entities.Position{
		ID:      id,
		TokenID: tokenID,
		Owner:   owner,
		Chain:   chain,
		Pool: entities.Pool{
			Address:     raw.PoolAddress,
			Token0:      normalizeToken(raw.Token0Address, raw.Token0Symbol),
			Token1:      normalizeToken(raw.Token1Address, raw.Token1Symbol),
			Fee:         intOr(raw.FeeTier, DefaultFeeTier),
			TickSpacing: DefaultTickSpacing,
			Liquidity:   liquidity,
		},
		TickLower:        intOr(raw.TickLower, 0),
		TickUpper:        intOr(raw.TickUpper, 0),
		Liquidity:        liquidity,
		Amount0:          stringOr(raw.Amount0, "0"),
		Amount1:          stringOr(raw.Amount1, "0"),
		UncollectedFees0: owed0,
		UncollectedFees1: owed1,
		TokensOwed0:      owed0,
		TokensOwed1:      owed1,
		Status:           status,
		CurrentPrice:     (priceLower + priceUpper) / 2,
		PriceRange:       entities.PriceRange{Lower: priceLower, Upper: priceUpper},
		ValueUSD:         floatOrZero(raw.USDValue),
		FeesEarnedUSD:    0,
		CreatedAt:        parseTime(raw.CreatedAt, now),
		UpdatedAt:        parseTime(raw.UpdatedAt, now),
	}
}

// NormalizeAll pre-filters, normalizes, and classifies an entire payload.
// This is the full pipeline from raw upstream response to canonical
// position set.
func NormalizeAll(payload *RawPayload, owner string, chain entities.Chain) []entities.Position {
	records := payload.Valid()
	out := make([]entities.Position, 0, len(records))
	for _, r := range records {
		p := Normalize(r, owner, chain)
		Annotate(&p)
		out = append(out, p)
	}
	return out
}

func normalizeToken(address, symbol string) entities.Token {
	t := entities.Token{
		Address:  address,
		Symbol:   symbol,
		Name:     symbol,
		Decimals: DefaultDecimals,
	}
	if t.Symbol == "" {
		t.Symbol = UnknownSymbol
		t.Name = UnknownTokenName
	}
	return t
}

func parseTime(s string, fallback time.Time) time.Time {
	if s == "" {
		return fallback
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return fallback
	}
	return t
}

func stringOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

func intOr(v *int, fallback int) int {
	if v == nil {
		return fallback
	}
	return *v
}

func floatOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
