package dto

// AddPointsRequest adjusts a player's total by a delta.
type AddPointsRequest struct {
	Delta int `json:"delta"`
}

// SetPointsRequest overwrites a player's total.
type SetPointsRequest struct {
	Value int `json:"value"`
}

// PointsResponse reports a player's total.
type PointsResponse struct {
	Name   string `json:"name"`
	Points int    `json:"points"`
}

// RankInfoResponse reports rank progress for a player.
type RankInfoResponse struct {
	Name      string `json:"name"`
	Points    int    `json:"points"`
	Current   string `json:"current_rank,omitempty"`
	Next      string `json:"next_rank,omitempty"`
	Remaining int    `json:"points_until_next"`
}
