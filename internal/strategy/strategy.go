package strategy

import (
	"context"
	"errors"

	"github.com/jky-sys/Screener-3.0/internal/indicator"
	"github.com/jky-sys/Screener-3.0/pkg/model"
)

// ErrInsufficientHistory is returned when a symbol has too few bars to be
// worth classifying. Callers treat it as a skip, not a failure.
var ErrInsufficientHistory = errors.New("insufficient price history")

// Signal represents a candidate found by a strategy
type Signal struct {
	Stock       model.Stock     `json:"stock"`
	Strategy    string          `json:"strategy"`
	LatestClose float64         `json:"latest_close"`
	Score       int             `json:"score"`
	Severity    string          `json:"severity"`
	Label       string          `json:"label"`
	AsOf        string          `json:"as_of"`          // date of the current bar
	Rows        []indicator.Row `json:"rows,omitempty"` // full indicator table for charting
}

// Strategy defines the interface for screening strategies
type Strategy interface {
	// Name returns the strategy name
	Name() string

	// Description returns a brief description
	Description() string

	// Analyze returns a signal if the stock is a candidate, nil if not
	Analyze(ctx context.Context, stock model.Stock) (*Signal, error)
}
