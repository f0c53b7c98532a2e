// Package state holds the per-session view of all domain data. The
// container is the single choke point for mutation: everything flows
// through Merge or Reset, and subscribers observe every change.
package state

import (
	"github.com/iflow-pos/iflow/internal/capital"
	"github.com/iflow-pos/iflow/internal/categories"
	"github.com/iflow-pos/iflow/internal/clients"
	"github.com/iflow-pos/iflow/internal/debts"
	"github.com/iflow-pos/iflow/internal/profile"
	"github.com/iflow-pos/iflow/internal/sales"
	"github.com/iflow-pos/iflow/internal/stock"
)

// AppState is one snapshot of the session's domain data. Collections are
// never nil after a merge; consumers treat snapshots as immutable.
type AppState struct {
	Profile        profile.Profile         `json:"profile"`
	Capital        capital.Summary         `json:"capital"`
	Stock          []stock.Item            `json:"stock"`
	Sales          []sales.Sale            `json:"sales"`
	Clients        []clients.Client        `json:"clients"`
	Categories     []categories.Category   `json:"categories"`
	Debts          []debts.Debt            `json:"debts"`
	CapitalHistory []capital.HistoryEntry  `json:"capitalHistory"`
	IsDataLoading  bool                    `json:"isDataLoading"`
}

// Initial returns the empty shape the container starts from and returns to
// on Reset.
func Initial() AppState {
	return AppState{
		Stock:          []stock.Item{},
		Sales:          []sales.Sale{},
		Clients:        []clients.Client{},
		Categories:     []categories.Category{},
		Debts:          []debts.Debt{},
		CapitalHistory: []capital.HistoryEntry{},
		IsDataLoading:  true,
	}
}

// Partial is a shallow-merge patch: nil fields are left untouched, set
// fields replace the snapshot's value wholesale.
type Partial struct {
	Profile        *profile.Profile
	Capital        *capital.Summary
	Stock          *[]stock.Item
	Sales          *[]sales.Sale
	Clients        *[]clients.Client
	Categories     *[]categories.Category
	Debts          *[]debts.Debt
	CapitalHistory *[]capital.HistoryEntry
	IsDataLoading  *bool
}

func (p Partial) applyTo(s *AppState) {
	if p.Profile != nil {
		s.Profile = *p.Profile
	}
	if p.Capital != nil {
		s.Capital = *p.Capital
	}
	if p.Stock != nil {
		s.Stock = *p.Stock
	}
	if p.Sales != nil {
		s.Sales = *p.Sales
	}
	if p.Clients != nil {
		s.Clients = *p.Clients
	}
	if p.Categories != nil {
		s.Categories = *p.Categories
	}
	if p.Debts != nil {
		s.Debts = *p.Debts
	}
	if p.CapitalHistory != nil {
		s.CapitalHistory = *p.CapitalHistory
	}
	if p.IsDataLoading != nil {
		s.IsDataLoading = *p.IsDataLoading
	}
}

// Bool is a convenience for building Partial flags.
func Bool(v bool) *bool { return &v }
