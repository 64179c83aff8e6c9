package entities

// Token represents one side of a liquidity pool pair. The address is the
// identity key; a token is never mutated after construction.
type Token struct {
	Address  string  `json:"address"`
	Symbol   string  `json:"symbol"`
	Name     string  `json:"name"`
	Decimals int     `json:"decimals"`
	Price    float64 `json:"price,omitempty"`
}
