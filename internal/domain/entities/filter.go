package entities

// SortKey selects the field a filtered view is ordered by
type SortKey string

const (
	SortByValue     SortKey = "value"
	SortByFees      SortKey = "fees"
	SortByAPR       SortKey = "apr"
	SortByCreatedAt SortKey = "created_at"
)

// SortOrder is the direction of a sorted view
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// FilterSpec is a declarative filter/sort specification applied to a
// position set. It is a pure value object: applying it produces a derived
// view and never mutates the canonical collection. All predicates combine
// with logical AND; unset fields do not filter.
type FilterSpec struct {
	Search    string           `json:"search,omitempty"`
	Status    []PositionStatus `json:"status,omitempty"`
	Chains    []Chain          `json:"chains,omitempty"`
	Pools     []string         `json:"pools,omitempty"`
	MinValue  *float64         `json:"min_value,omitempty"`
	MaxValue  *float64         `json:"max_value,omitempty"`
	SortBy    SortKey          `json:"sort_by,omitempty"`
	SortOrder SortOrder        `json:"sort_order,omitempty"`
}
