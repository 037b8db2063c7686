package server

import (
	"bytes"
	"encoding/json"
	"math"
	"net/url"
	"strconv"
	"strings"
)

// Accepted spellings, in priority order
var (
	limitKeys        = []string{"limit", "Limit", "count"}
	minLiquidityKeys = []string{"min_liquidity", "minLiquidity", "min_liq"}
)

// Limits bound the detector parameters accepted from callers
type Limits struct {
	DefaultLimit        int
	MaxLimit            int
	DefaultMinLiquidity float64
}

// Clamp parses raw values, falling back to defaults when absent or
// unparseable. limit is clamped to [1, MaxLimit], minLiquidity to >= 0.
func (l Limits) Clamp(rawLimit, rawMinLiquidity any) DetectParams {
	p := DetectParams{Limit: l.DefaultLimit, MinLiquidity: l.DefaultMinLiquidity}

	if n, ok := toInt(rawLimit); ok {
		p.Limit = max(1, min(n, l.MaxLimit))
	}
	if f, ok := toFloat(rawMinLiquidity); ok {
		p.MinLiquidity = math.Max(0, f)
	}
	return p
}

// bodyParams is the decoded POST body: either the APIX {"query": "..."}
// form or a plain JSON object.
type bodyParams struct {
	values map[string]any
	empty  bool
}

// parseBody decodes a POST body. ok is false for malformed JSON or a
// non-object document.
func parseBody(raw []byte) (bodyParams, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return bodyParams{values: map[string]any{}, empty: true}, true
	}

	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err != nil || obj == nil {
		return bodyParams{}, false
	}

	out := bodyParams{values: obj, empty: len(obj) == 0}
	if q, ok := obj["query"].(string); ok {
		out.values = parseAPIXQuery(q)
	}
	return out, true
}

// parseAPIXQuery turns "limit=10&min_liquidity=5000" into a value map.
func parseAPIXQuery(q string) map[string]any {
	out := map[string]any{}
	values, err := url.ParseQuery(q)
	if err != nil {
		return out
	}
	for k, vs := range values {
		if len(vs) > 0 {
			out[k] = vs[0]
		}
	}
	return out
}

// firstPresent returns the first alias whose value is set and not zero-like.
func firstPresent(values map[string]any, keys []string) any {
	for _, k := range keys {
		if v, ok := values[k]; ok && !isZeroLike(v) {
			return v
		}
	}
	return nil
}

func isZeroLike(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case float64:
		return t == 0
	case bool:
		return !t
	default:
		return false
	}
}

func toInt(v any) (int, bool) {
	switch t := v.(type) {
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return 0, false
		}
		return int(math.Max(math.Min(t, math.MaxInt32), math.MinInt32)), true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

func toFloat(v any) (float64, bool) {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
