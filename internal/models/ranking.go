package models

// RankedStudent is one leaderboard row. Rank follows competition
// ranking: tied auras share a rank and the next distinct aura resumes
// at the 1-based position ("1,2,2,4").
type RankedStudent struct {
	ID        string `db:"id" json:"id"`
	FirstName string `db:"first_name" json:"first_name"`
	LastName  string `db:"last_name" json:"last_name"`
	Aura      int    `db:"aura" json:"aura"`
	Rank      int    `json:"rank"`
}

// Leaderboard is the ranking response: the caller's own entry (nil when
// the caller is not part of the ranked set) plus the ordered rows.
type Leaderboard struct {
	UserRank *RankedStudent  `json:"user_rank"`
	Ranking  []RankedStudent `json:"ranking"`
}
