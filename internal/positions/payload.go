// Package positions implements the normalization and portfolio-analytics
// pipeline: upstream payload decoding, record normalization, range/status
// classification, aggregation, and filtered views. Everything here is pure
// and total for well-typed input; malformed individual records are filtered,
// never propagated as errors.
package positions

import (
	"bytes"
	"encoding/json"
)

// FlexID decodes a JSON string or number into its string form. Upstream
// sends position identifiers as either depending on the backend version.
type FlexID string

// UnmarshalJSON implements json.Unmarshaler
func (f *FlexID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = FlexID(n.String())
	return nil
}

// RawRecord is one loosely-typed position item as returned by the upstream
// backend. Several fields arrive under more than one key depending on the
// backend version; Normalize resolves the aliases in a fixed priority order.
// Pointer fields distinguish "absent" from zero.
type RawRecord struct {
	ID            FlexID   `json:"id"`
	TokenID       *int64   `json:"token_id"`
	TokenIDAlt    *int64   `json:"tokenId"`
	PoolAddress   string   `json:"pool_address"`
	Token0Address string   `json:"token0_address"`
	Token1Address string   `json:"token1_address"`
	Token0Symbol  string   `json:"token0_symbol"`
	Token1Symbol  string   `json:"token1_symbol"`
	FeeTier       *int     `json:"fee_tier"`
	TickLower     *int     `json:"tick_lower"`
	TickUpper     *int     `json:"tick_upper"`
	PriceLower    *float64 `json:"price_lower"`
	PriceUpper    *float64 `json:"price_upper"`
	Liquidity     string   `json:"liquidity"`
	Amount0       string   `json:"amount0"`
	Amount1       string   `json:"amount1"`
	TokensOwed0   string   `json:"tokens_owed_0"`
	TokensOwed1   string   `json:"tokens_owed_1"`
	Status        string   `json:"status"`
	USDValue      *float64 `json:"usd_value"`
	CreatedAt     string   `json:"created_at"`
	UpdatedAt     string   `json:"updated_at"`
	Network       string   `json:"network"`

	// Upstream mixes per-item error objects into the positions list.
	// Anything carrying either marker is not a position.
	Error   json.RawMessage `json:"error"`
	Message string          `json:"message"`
}

// HasErrorMarker reports whether the record is an error sentinel rather
// than a position. A literal false or null error value does not count.
func (r *RawRecord) HasErrorMarker() bool {
	if r.Message != "" {
		return true
	}
	e := bytes.TrimSpace(r.Error)
	if len(e) == 0 {
		return false
	}
	return !bytes.Equal(e, []byte("null")) && !bytes.Equal(e, []byte("false"))
}

// HasIdentifier reports whether the record carries at least one of the
// accepted identifier fields.
func (r *RawRecord) HasIdentifier() bool {
	return r.ID != "" || r.TokenID != nil || r.TokenIDAlt != nil
}

// RawPayload is the upstream positions response in any of its three
// accepted container shapes:
//
//	{"positions": [...], "total": n}
//	{"data": {"positions": [...]}}
//	[...]
//
// Decoding collapses all three into a single record list so nothing past
// this point branches on payload shape.
type RawPayload struct {
	Records []RawRecord
	Total   int
}

// UnmarshalJSON implements json.Unmarshaler
func (p *RawPayload) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var items []RawRecord
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		p.Records = items
		p.Total = len(items)
		return nil
	}

	var envelope struct {
		Positions []RawRecord `json:"positions"`
		Total     int         `json:"total"`
		Data      *struct {
			Positions []RawRecord `json:"positions"`
		} `json:"data"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return err
	}

	switch {
	case envelope.Positions != nil:
		p.Records = envelope.Positions
		p.Total = envelope.Total
	case envelope.Data != nil:
		p.Records = envelope.Data.Positions
		p.Total = len(envelope.Data.Positions)
	}

	if p.Total == 0 {
		p.Total = len(p.Records)
	}
	return nil
}

// Valid returns the records worth normalizing. Error sentinels and records
// lacking every identifier field are dropped silently; one bad record never
// aborts processing of the rest.
func (p *RawPayload) Valid() []RawRecord {
	out := make([]RawRecord, 0, len(p.Records))
	for _, r := range p.Records {
		if r.HasErrorMarker() || !r.HasIdentifier() {
			continue
		}
		out = append(out, r)
	}
	return out
}
