package challenge

import (
	"context"
	"fmt"
	"time"
)

// CatalogStats are read-only projections for the admin surface.
// They are derived and carry no invariants of their own.
type CatalogStats struct {
	Total        int            `json:"total"`
	ByDifficulty map[string]int `json:"by_difficulty"`
	ByCategory   map[string]int `json:"by_category"`
	// CreatedTrend maps calendar date to the number of challenges
	// created on that date over the trailing 30 days.
	CreatedTrend map[string]int `json:"created_trend"`
}

func (s *CatalogSrvc) Stats(ctx context.Context) (*CatalogStats, error) {
	now := time.Now()
	challenges, err := s.repo.List(ctx,
		now.AddDate(-10, 0, 0), now.AddDate(0, 0, s.horizon+1))
	if err != nil {
		return nil, fmt.Errorf("failed to list challenges for stats: %w", err)
	}

	stats := &CatalogStats{
		ByDifficulty: make(map[string]int),
		ByCategory:   make(map[string]int),
		CreatedTrend: make(map[string]int),
	}
	trendCutoff := now.AddDate(0, 0, -30)
	for _, ch := range challenges {
		stats.Total++
		stats.ByDifficulty[ch.Difficulty]++
		stats.ByCategory[ch.Category]++
		if ch.CreatedAt.After(trendCutoff) {
			day := NormalizeDate(ch.CreatedAt).Format(time.DateOnly)
			stats.CreatedTrend[day]++
		}
	}
	return stats, nil
}
