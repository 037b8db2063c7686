package server

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/aman-zulfiqar/solana-meme-detector/internal/models"
	"github.com/aman-zulfiqar/solana-meme-detector/internal/pipeline"
)

const noTokensMessage = "No new meme coins found matching criteria"

// Detector produces scored tokens for the detector endpoints
type Detector interface {
	Detect(ctx context.Context, limit int, minLiquidity float64) (*pipeline.Result, error)
}

// Handlers contains all dependencies for API endpoint handlers
type Handlers struct {
	Detector      Detector       // Market + enrichment pipeline
	Limits        Limits         // Parameter defaults and bounds
	AppName       string         // Service name for the root descriptor
	Version       string         // Service version
	DetectTimeout time.Duration  // Upper bound for one detection run
	DevMode       bool           // Enable detailed error responses in development
	Logger        *logrus.Logger // Structured logger
}

// err returns a standardized JSON error response
// In dev mode, includes additional error details for debugging
func (h *Handlers) err(c echo.Context, code int, msg string, details any) error {
	resp := ErrorResponse{Status: "error", Error: msg, Code: code}
	if h.DevMode && details != nil {
		resp.Details = details
	}
	return c.JSON(code, resp)
}

// withTimeout creates a context with timeout, defaulting to 120 seconds if duration <= 0
func (h *Handlers) withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		d = 120 * time.Second
	}
	return context.WithTimeout(ctx, d)
}

func (h *Handlers) log(c echo.Context) *logrus.Entry {
	return h.Logger.WithField("request_id", c.Response().Header().Get(echo.HeaderXRequestID))
}

// Health returns a simple health check endpoint
func (h *Handlers) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{Status: "healthy", Version: h.Version})
}

// Root describes the service and its endpoints
func (h *Handlers) Root(c echo.Context) error {
	return c.JSON(http.StatusOK, RootResponse{
		Name:    h.AppName,
		Version: h.Version,
		Status:  "running",
		Endpoints: map[string]string{
			"meme_detector": "/api/v1/solana-meme-detector",
			"health":        "/health",
			"metrics":       "/metrics",
		},
	})
}

// DetectGet scores tokens using the limit and min_liquidity query parameters
func (h *Handlers) DetectGet(c echo.Context) error {
	params := h.Limits.Clamp(queryValue(c, "limit"), queryValue(c, "min_liquidity"))
	h.log(c).WithFields(logrus.Fields{
		"limit":         params.Limit,
		"min_liquidity": params.MinLiquidity,
	}).Info("GET detector request")

	return h.detect(c, params, false)
}

// DetectPost accepts a JSON body with parameter aliases, or an APIX
// {"query": "limit=10&min_liquidity=5000"} body. An empty body returns the
// ready descriptor.
func (h *Handlers) DetectPost(c echo.Context) error {
	raw, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return h.err(c, http.StatusBadRequest, "failed to read body", nil)
	}

	body, ok := parseBody(raw)
	if !ok {
		h.log(c).Warn("invalid JSON body")
		return h.err(c, http.StatusBadRequest, "Invalid JSON body", nil)
	}

	rawLimit := firstPresent(body.values, limitKeys)
	rawMinLiq := firstPresent(body.values, minLiquidityKeys)
	if rawLimit == nil && rawMinLiq == nil && body.empty {
		return c.JSON(http.StatusOK, h.ready())
	}

	params := h.Limits.Clamp(rawLimit, rawMinLiq)
	h.log(c).WithFields(logrus.Fields{
		"limit":         params.Limit,
		"min_liquidity": params.MinLiquidity,
	}).Info("POST detector request")

	return h.detect(c, params, true)
}

func (h *Handlers) detect(c echo.Context, params DetectParams, echoParams bool) error {
	ctx, cancel := h.withTimeout(c.Request().Context(), h.DetectTimeout)
	defer cancel()

	res, err := h.Detector.Detect(ctx, params.Limit, params.MinLiquidity)
	if err != nil {
		// Upstream trouble degrades to an empty result rather than a 5xx.
		h.log(c).WithError(err).Error("detection failed")
		res = &pipeline.Result{}
	}

	if len(res.Tokens) == 0 {
		resp := EmptyResponse{
			Status:  "success",
			Count:   0,
			Tokens:  []models.ScoredToken{},
			Message: noTokensMessage,
		}
		if echoParams {
			resp.ParametersUsed = &params
		}
		return c.JSON(http.StatusOK, resp)
	}

	return c.JSON(http.StatusOK, DetectorResponse{
		Status:          "success",
		Count:           len(res.Tokens),
		Tokens:          res.Tokens,
		Cached:          res.Cached,
		CacheAgeSeconds: res.CacheAgeSeconds,
		Disclaimer:      disclaimer,
	})
}

func (h *Handlers) ready() ReadyResponse {
	return ReadyResponse{
		Status:  "ready",
		Message: "Solana Meme Coin Detector API - Detects recently launched meme coins with trust scores",
		Version: h.Version,
		Parameters: map[string]ParamDoc{
			"limit": {
				Type:        "number",
				Description: fmt.Sprintf("Number of tokens to return (default: %d, max: %d)", h.Limits.DefaultLimit, h.Limits.MaxLimit),
				Example:     10,
			},
			"min_liquidity": {
				Type:        "number",
				Description: fmt.Sprintf("Minimum liquidity in USD (default: %g)", h.Limits.DefaultMinLiquidity),
				Example:     5000,
			},
		},
		APIXFormat: map[string]string{"query": "limit=10&min_liquidity=5000"},
		TrustScoreInfo: TrustScoreInfo{
			Range: "0-100 (0=Extreme Risk, 100=Safe)",
			Factors: []string{
				"Mint Authority (25%): Can creator mint more tokens?",
				"Freeze Authority (20%): Can creator freeze accounts?",
				"LP Locked (25%): Is liquidity locked/burned?",
				"Holder Concentration (20%): Do top 10 wallets hold too much?",
				"Token Age (10%): How old is the token?",
			},
		},
	}
}

// queryValue returns nil for an absent parameter so defaults apply.
func queryValue(c echo.Context, name string) any {
	if !c.QueryParams().Has(name) {
		return nil
	}
	return c.QueryParam(name)
}
