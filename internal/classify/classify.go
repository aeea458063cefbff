// Package classify derives kind, category and usage text for imported
// statement rows through an ordered chain of heuristics.
package classify

import (
	"context"
	"log/slog"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/cashbook/internal/ledger"
)

// DefaultGuestDeposit is the fixed deposit guests pay to hold a booking.
var DefaultGuestDeposit = decimal.New(5000, -2)

type Input struct {
	Purpose  string
	Name     string
	Category string
	Amount   decimal.Decimal
}

type Result struct {
	Usage    string
	Category string
	Kind     ledger.Kind
}

// Stage either claims an input or abstains.
type Stage func(Input) (Result, bool)

//go:generate mockgen -source=classify.go -destination=learner_mock.go -package=classify
type Learner interface {
	Suggest(ctx context.Context, usage string) (string, bool, error)
	Learn(ctx context.Context, usage, category string) error
}

type Classifier struct {
	stages  []Stage
	learner Learner
	logger  *slog.Logger
}

type Option func(*Classifier)

func WithLogger(l *slog.Logger) Option {
	return func(c *Classifier) { c.logger = l }
}

// WithStages replaces the default stage chain.
func WithStages(stages ...Stage) Option {
	return func(c *Classifier) { c.stages = stages }
}

// New builds a classifier with the default chain: payroll, reservation,
// known vendor, cash deposit.
func New(learner Learner, guestDeposit decimal.Decimal, opts ...Option) *Classifier {
	c := &Classifier{
		stages: []Stage{
			Payroll,
			Reservation(guestDeposit),
			Vendor,
			CashDeposit,
		},
		learner: learner,
		logger:  slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

var transferPattern = regexp.MustCompile(`(?i)sb-auszahlung|\btransfer|\bumbuchung|\bgeldautomat|\batm\b`)

// IsTransfer reports whether purpose or name carries a transfer keyword.
func IsTransfer(in Input) bool {
	return transferPattern.MatchString(in.Purpose) || transferPattern.MatchString(in.Name)
}

// Classify runs the stage chain and falls back to learned categories, then
// to the category from the file, then to the reserved category. Any outcome
// other than the reserved category is fed back into the learner.
func (c *Classifier) Classify(ctx context.Context, in Input) Result {
	res, ok := c.runStages(in)
	if !ok {
		res = c.fallback(ctx, in)
	}

	if res.Kind != ledger.KindCashDeposit && IsTransfer(in) {
		res.Kind = ledger.KindTransfer
	}

	// The reserved category means nothing was known; learning it would shadow
	// categories that later rows bring along.
	if c.learner != nil && !strings.EqualFold(res.Category, ledger.ReservedCategory) {
		if err := c.learner.Learn(ctx, res.Usage, res.Category); err != nil {
			c.logger.Warn("failed to learn category", "usage", res.Usage, "category", res.Category, "error", err)
		}
	}

	return res
}

func (c *Classifier) runStages(in Input) (Result, bool) {
	for _, stage := range c.stages {
		if res, ok := stage(in); ok {
			return res, true
		}
	}

	return Result{}, false
}

func (c *Classifier) fallback(ctx context.Context, in Input) Result {
	usage := strings.TrimSpace(in.Name)
	if usage == "" {
		usage = strings.TrimSpace(in.Purpose)
	}

	res := Result{Usage: usage, Kind: KindBySign(in.Amount)}

	if c.learner != nil {
		category, found, err := c.learner.Suggest(ctx, usage)
		if err != nil {
			c.logger.Warn("category suggestion failed", "usage", usage, "error", err)
		}

		if found {
			res.Category = category
			return res
		}
	}

	res.Category = strings.TrimSpace(in.Category)
	if res.Category == "" {
		res.Category = ledger.ReservedCategory
	}

	return res
}

// KindBySign maps an amount to income or expense.
func KindBySign(amount decimal.Decimal) ledger.Kind {
	if amount.IsNegative() {
		return ledger.KindExpense
	}

	return ledger.KindIncome
}
