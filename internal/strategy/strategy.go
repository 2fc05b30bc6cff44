// Package strategy defines the trade proposal contract and the concrete
// signal strategies. A strategy sees only the bar series it is handed, with
// the last bar as the reference day, and answers with a directional proposal.
package strategy

import (
	"math"
	"sync"

	"github.com/vnquant-lab/signal-engine/internal/types"
	"github.com/vnquant-lab/signal-engine/pkg/errors"
)

// Strategy is the polymorphic contract every signal strategy implements.
// GenerateSignal must treat the final bar as "today" and must not assume
// anything beyond it exists.
type Strategy interface {
	Name() string
	GenerateSignal(bars []types.Bar) (types.TradeProposal, error)
}

// Registry manages the available strategies, preserving registration order so
// simulation output is stable across runs.
type Registry struct {
	strategies map[string]Strategy
	order      []string
	mu         sync.RWMutex
}

// NewRegistry creates an empty strategy registry.
func NewRegistry() *Registry {
	return &Registry{
		strategies: make(map[string]Strategy),
	}
}

// Register adds a strategy to the registry.
func (r *Registry) Register(s Strategy) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := s.Name()
	if _, exists := r.strategies[name]; exists {
		return errors.Newf(errors.ErrCodeStrategyAlreadyExists, "strategy %s already registered", name)
	}

	r.strategies[name] = s
	r.order = append(r.order, name)

	return nil
}

// Get retrieves a strategy by name.
func (r *Registry) Get(name string) (Strategy, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, exists := r.strategies[name]
	if !exists {
		return nil, errors.Newf(errors.ErrCodeStrategyNotFound, "strategy %s not found", name)
	}

	return s, nil
}

// All returns the registered strategies in registration order.
func (r *Registry) All() []Strategy {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Strategy, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.strategies[name])
	}

	return out
}

func smaLast(values []float64, period int) float64 {
	if period <= 0 || len(values) < period {
		return 0
	}

	var sum float64
	for i := len(values) - period; i < len(values); i++ {
		sum += values[i]
	}

	return sum / float64(period)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
