package models

// ScoreRecord is a user's cookie race tally.
type ScoreRecord struct {
	UserID int64 `json:"user_id"`
	Count  int64 `json:"count"`
}

// RankedScore is a ScoreRecord with its 1-based leaderboard position.
type RankedScore struct {
	ScoreRecord
	Rank int `json:"rank"`
}

// Rank numbers records in the order given.
func Rank(records []ScoreRecord) []RankedScore {
	out := make([]RankedScore, len(records))
	for i, r := range records {
		out[i] = RankedScore{ScoreRecord: r, Rank: i + 1}
	}
	return out
}
