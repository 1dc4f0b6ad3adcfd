package inventory

import "github.com/tgfriperie/cavalin-tcg-novo/go/internal/models"

// AllOwners disables the stock owner filter.
const AllOwners = "all"

// CreateCardRequest represents the data needed to add a card to inventory
type CreateCardRequest struct {
	Name         string   `json:"name"`
	ImageURL     string   `json:"image_url"`
	Collection   string   `json:"collection"`
	Condition    string   `json:"condition"`
	Language     string   `json:"language"`
	Cost         float64  `json:"cost"`
	InitialValue float64  `json:"initial_value"`
	MarketValue  *float64 `json:"market_value,omitempty"`
	StockOwner   string   `json:"stock_owner"`
	Category     string   `json:"category"`
}

// UpdateCardRequest is a partial update; nil fields are left untouched
type UpdateCardRequest struct {
	Name         *string  `json:"name,omitempty"`
	ImageURL     *string  `json:"image_url,omitempty"`
	Collection   *string  `json:"collection,omitempty"`
	Condition    *string  `json:"condition,omitempty"`
	Language     *string  `json:"language,omitempty"`
	Cost         *float64 `json:"cost,omitempty"`
	InitialValue *float64 `json:"initial_value,omitempty"`
	MarketValue  *float64 `json:"market_value,omitempty"`
	StockOwner   *string  `json:"stock_owner,omitempty"`
	Category     *string  `json:"category,omitempty"`
}

// onlyImage reports whether the request touches nothing but the image URL.
func (r UpdateCardRequest) onlyImage() bool {
	return r.Name == nil && r.Collection == nil && r.Condition == nil && r.Language == nil &&
		r.Cost == nil && r.InitialValue == nil && r.MarketValue == nil &&
		r.StockOwner == nil && r.Category == nil
}

// ListFilter narrows ListCards. Empty fields match everything.
type ListFilter struct {
	Status     models.CardStatus `json:"status,omitempty"`
	StockOwner string            `json:"stock_owner,omitempty"`
	Category   string            `json:"category,omitempty"`
	Search     string            `json:"search,omitempty"`
}

// OwnerTotals is the inventory held by one stock owner.
type OwnerTotals struct {
	StockOwner string  `json:"stock_owner"`
	Count      int     `json:"count"`
	TotalCost  float64 `json:"total_cost"`
}

// Summary aggregates the unsold inventory.
type Summary struct {
	Count     int           `json:"count"`
	TotalCost float64       `json:"total_cost"`
	ByOwner   []OwnerTotals `json:"by_owner"`
}
