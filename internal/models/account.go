package models

// Account represents a household money account.
// Reserve accounts count toward grand totals but not toward available liquidity.
type Account struct {
	ID        string `json:"id"`
	Name      string `json:"name,omitempty"`
	IsReserve bool   `json:"is_reserve"`
	IsActive  bool   `json:"is_active"`
}
