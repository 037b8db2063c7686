package server

import "github.com/aman-zulfiqar/solana-meme-detector/internal/models"

const disclaimer = "Trust scores are for informational purposes only. Always do your own research (DYOR) before investing. This is not financial advice."

// ErrorResponse represents a standardized error response format
type ErrorResponse struct {
	Status  string `json:"status"`            // Always "error"
	Error   string `json:"error"`             // Human-readable error message
	Code    int    `json:"code"`              // HTTP status code
	Details any    `json:"details,omitempty"` // Additional error details (dev mode only)
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// RootResponse describes the service and its endpoints
type RootResponse struct {
	Name      string            `json:"name"`
	Version   string            `json:"version"`
	Status    string            `json:"status"`
	Endpoints map[string]string `json:"endpoints"`
}

// DetectParams are the effective detector parameters after clamping
type DetectParams struct {
	Limit        int     `json:"limit"`
	MinLiquidity float64 `json:"min_liquidity"`
}

// DetectorResponse is the envelope for scored tokens
type DetectorResponse struct {
	Status          string               `json:"status"`
	Count           int                  `json:"count"`
	Tokens          []models.ScoredToken `json:"tokens"`
	Cached          bool                 `json:"cached"`
	CacheAgeSeconds *int                 `json:"cache_age_seconds"`
	Disclaimer      string               `json:"disclaimer"`
}

// EmptyResponse is returned when no token met the criteria
type EmptyResponse struct {
	Status         string               `json:"status"`
	Count          int                  `json:"count"`
	Tokens         []models.ScoredToken `json:"tokens"`
	Message        string               `json:"message"`
	ParametersUsed *DetectParams        `json:"parameters_used,omitempty"`
}

// ParamDoc documents one accepted parameter
type ParamDoc struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
	Example     any    `json:"example"`
}

// TrustScoreInfo explains the score range and factor weights
type TrustScoreInfo struct {
	Range   string   `json:"range"`
	Factors []string `json:"factors"`
}

// ReadyResponse is returned for an empty POST body
type ReadyResponse struct {
	Status         string              `json:"status"`
	Message        string              `json:"message"`
	Version        string              `json:"version"`
	Parameters     map[string]ParamDoc `json:"parameters"`
	APIXFormat     map[string]string   `json:"apix_format"`
	TrustScoreInfo TrustScoreInfo      `json:"trust_score_info"`
}
