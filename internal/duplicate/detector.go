// Package duplicate flags import candidates that look like entries already
// booked. Only cash-point movements are checked; bank exports repeat those
// rows when cash deposits are also entered by hand.
package duplicate

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/cashbook/internal/ledger"
)

var (
	DefaultCategories = []string{"ATM/Cash-point", "Cash-point", "Geldautomat"}
	DefaultMarkers    = []string{"cash deposit", "sb-einzahlung", "bareinzahlung", "einzahlung"}
	DefaultTolerance  = decimal.New(1, -2)
)

// Finder is the read side of the ledger the detector searches.
type Finder interface {
	ListEntries(ctx context.Context, filter ledger.EntryFilter) ([]*ledger.Entry, error)
}

type Detector struct {
	categories map[string]struct{}
	markers    []string
	tolerance  decimal.Decimal
}

type Option func(*Detector)

// WithCategories replaces the dedupe-sensitive category set.
func WithCategories(categories ...string) Option {
	return func(d *Detector) {
		d.categories = make(map[string]struct{}, len(categories))
		for _, c := range categories {
			d.categories[strings.ToLower(strings.TrimSpace(c))] = struct{}{}
		}
	}
}

func WithMarkers(markers ...string) Option {
	return func(d *Detector) {
		d.markers = make([]string, len(markers))
		for i, m := range markers {
			d.markers[i] = strings.ToLower(m)
		}
	}
}

func WithTolerance(t decimal.Decimal) Option {
	return func(d *Detector) { d.tolerance = t }
}

func NewDetector(opts ...Option) *Detector {
	d := &Detector{markers: DefaultMarkers, tolerance: DefaultTolerance}
	WithCategories(DefaultCategories...)(d)

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Candidate is a classified row that has not been stored yet.
type Candidate struct {
	Amount   decimal.Decimal
	Usage    string
	Category string
}

// Check returns the stored entry the candidate conflicts with, or nil. Rows
// outside the dedupe-sensitive categories are never flagged.
func (d *Detector) Check(ctx context.Context, finder Finder, accountID uuid.UUID, c Candidate) (*ledger.Entry, error) {
	if !d.Sensitive(c.Category) || !d.hasMarker(c.Usage) {
		return nil, nil
	}

	amount := c.Amount

	existing, err := finder.ListEntries(ctx, ledger.EntryFilter{
		AccountID: &accountID,
		Amount:    &amount,
		Tolerance: d.tolerance,
	})
	if err != nil {
		return nil, fmt.Errorf("finding duplicates: %w", err)
	}

	for _, e := range existing {
		if !e.Amount.Sub(c.Amount).Abs().GreaterThan(d.tolerance) && (d.hasMarker(e.Usage) || d.Sensitive(e.Category)) {
			return e, nil
		}
	}

	return nil, nil
}

// Sensitive reports whether entries of category are checked for duplicates.
func (d *Detector) Sensitive(category string) bool {
	_, ok := d.categories[strings.ToLower(strings.TrimSpace(category))]
	return ok
}

func (d *Detector) hasMarker(s string) bool {
	s = strings.ToLower(s)
	for _, m := range d.markers {
		if strings.Contains(s, m) {
			return true
		}
	}

	return false
}
