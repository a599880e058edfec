package handlers

import "github.com/abrezinsky/luckydraw/internal/models"

// TokenResponse carries a signed bearer token
type TokenResponse struct {
	Token     string `json:"token"`
	Role      string `json:"role"`
	TenantID  string `json:"tenant_id"`
	ExpiresIn int    `json:"expires_in"`
}

// HealthResponse is the liveness probe body
type HealthResponse struct {
	Status string `json:"status"`
}

// DrawResponse is returned by draw execution
type DrawResponse struct {
	ConfigID   string                `json:"config_id"`
	Winners    []models.Winner       `json:"winners"`
	Tiers      []models.TierWinners  `json:"tiers"`
	Statistics models.DrawStatistics `json:"statistics"`
}

func newDrawResponse(result *models.DrawResult) DrawResponse {
	winners := result.AllWinners()
	if winners == nil {
		winners = []models.Winner{}
	}
	return DrawResponse{
		ConfigID:   result.ConfigID,
		Winners:    winners,
		Tiers:      result.Tiers,
		Statistics: result.Statistics,
	}
}
