// Package repository stores detection reports in memory. The store is the
// source the HTTP surface reads from; analysis writes into it as games
// complete.
package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/chessguard/chessguard/internal/domain/model"
	"github.com/chessguard/chessguard/pkg/logger"
)

// Store is an in-memory, concurrency-safe report repository.
type Store struct {
	mu      sync.RWMutex
	reports map[string]*model.DetectionReport
	order   []string // insertion order for stable listings
	log     logger.Logger
}

// NewStore returns an empty report store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		reports: make(map[string]*model.DetectionReport),
		log:     logger.Get().Named("repository"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Put stores a report under its game ID, replacing any previous version.
func (s *Store) Put(ctx context.Context, r *model.DetectionReport) error {
	if r == nil || r.GameID == "" {
		return fmt.Errorf("%w: report without game id", ErrInvalidReport)
	}

	s.mu.Lock()
	if _, exists := s.reports[r.GameID]; !exists {
		s.order = append(s.order, r.GameID)
	}
	s.reports[r.GameID] = r
	s.mu.Unlock()

	s.log.Debug(ctx, "report stored",
		logger.String("game_id", r.GameID),
		logger.String("risk", string(r.Ensemble.RiskLevel)))
	return nil
}

// Get returns the report for a game ID.
func (s *Store) Get(ctx context.Context, gameID string) (*model.DetectionReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.reports[gameID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, gameID)
	}
	return r, nil
}

// List returns all reports in insertion order.
func (s *Store) List(ctx context.Context) []*model.DetectionReport {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*model.DetectionReport, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.reports[id])
	}
	return out
}

// Count returns report totals per risk level plus the overall count.
func (s *Store) Count(ctx context.Context) (total int, byRisk map[model.RiskLevel]int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	byRisk = make(map[model.RiskLevel]int)
	for _, r := range s.reports {
		byRisk[r.Ensemble.RiskLevel]++
	}
	return len(s.reports), byRisk
}

// IDs returns the stored game IDs, sorted.
func (s *Store) IDs(ctx context.Context) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, len(s.order))
	copy(ids, s.order)
	sort.Strings(ids)
	return ids
}
