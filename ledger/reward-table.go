package ledger

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// RewardTable holds the fixed point amounts granted per award kind.
// Operators override the defaults with a TOML file.
type RewardTable struct {
	Rank1         int `toml:"rank_1"`
	Rank2         int `toml:"rank_2"`
	Rank3         int `toml:"rank_3"`
	Participation int `toml:"participation"`
	PerfectScore  int `toml:"perfect_score"`
	Streak7d      int `toml:"streak_7d"`
	Streak14d     int `toml:"streak_14d"`
	Streak30d     int `toml:"streak_30d"`
}

func DefaultRewardTable() RewardTable {
	return RewardTable{
		Rank1:         100,
		Rank2:         75,
		Rank3:         50,
		Participation: 10,
		PerfectScore:  25,
		Streak7d:      50,
		Streak14d:     120,
		Streak30d:     300,
	}
}

// LoadRewardTable reads a TOML override file on top of the defaults.
// An empty path returns the defaults unchanged.
func LoadRewardTable(path string) (RewardTable, error) {
	table := DefaultRewardTable()
	if path == "" {
		return table, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return table, fmt.Errorf("failed to read reward table: %w", err)
	}
	if err := toml.Unmarshal(data, &table); err != nil {
		return table, fmt.Errorf("failed to parse reward table: %w", err)
	}
	return table, nil
}

// ForRank returns the points granted for a final rank, zero for
// ranks without a fixed prize.
func (t RewardTable) ForRank(rank int) (points int, reason string) {
	switch rank {
	case 1:
		return t.Rank1, ReasonRank1
	case 2:
		return t.Rank2, ReasonRank2
	case 3:
		return t.Rank3, ReasonRank3
	default:
		return 0, ""
	}
}
