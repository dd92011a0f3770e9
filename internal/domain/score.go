package domain

import "math"

// ComputeScore derives a movie's popularity score: votes * rating, rounded half-up to
// two decimals.
func ComputeScore(votes int64, rating float64) float64 {
	cents := float64(votes) * rating * 100
	// Float products like 917299.4999999 must still round to .50.
	return math.Floor(cents+0.5+1e-7) / 100
}

// CompareScores orders two scores at cent precision: 1 if a > b, -1 if a < b, 0 on a tie.
func CompareScores(a, b float64) int {
	ca := math.Round(a * 100)
	cb := math.Round(b * 100)
	switch {
	case ca > cb:
		return 1
	case ca < cb:
		return -1
	default:
		return 0
	}
}

// Envelope is the outward result shape of every operation.
type Envelope struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}
