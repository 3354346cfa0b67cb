package model

// RiskResult is the outcome of a collision-risk estimate: the probability of
// at least one collision over the mission window and the expected financial
// loss derived from it.
//
// Valid distinguishes a genuine zero-risk estimate from the zero result
// returned for a non-physical input range (e.g. an inverted altitude shell).
// The JSON field names match the public API surface.
type RiskResult struct {
	FinancialRisk float64 `json:"financial_risk"`
	CollisionRisk float64 `json:"collision_risk"`
	Valid         bool    `json:"-"`
}
