package bitrefill

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
)

const (
	// CorsProxyBaseURL relays the request and returns the upstream body unchanged.
	CorsProxyBaseURL = "https://corsproxy.io/"
	// AllOriginsBaseURL wraps the upstream body in a {"contents": "..."} envelope.
	AllOriginsBaseURL = "https://api.allorigins.win/get"
)

// Strategy names accepted by StrategiesByName.
const (
	StrategyCorsProxy  = "corsproxy"
	StrategyAllOrigins = "allorigins"
	StrategyDirect     = "direct"
)

// Strategy is one way of relaying a request to the upstream API. Wrap builds the
// URL actually requested and Unwrap extracts the upstream JSON document from the
// relay's response body.
type Strategy struct {
	Name   string
	Wrap   func(target string) string
	Unwrap func(body []byte) ([]byte, error)
}

// NewCorsProxyStrategy relays through a corsproxy.io-compatible endpoint.
func NewCorsProxyStrategy(baseURL string) Strategy {
	return Strategy{
		Name: StrategyCorsProxy,
		Wrap: func(target string) string {
			return baseURL + "?" + url.QueryEscape(target)
		},
		Unwrap: passThrough,
	}
}

// NewAllOriginsStrategy relays through an allorigins-compatible endpoint. The
// relay answers 200 with the upstream document as a string in "contents"; a
// missing or non-string field is an UnwrapError.
func NewAllOriginsStrategy(baseURL string) Strategy {
	return Strategy{
		Name: StrategyAllOrigins,
		Wrap: func(target string) string {
			return baseURL + "?url=" + url.QueryEscape(target)
		},
		Unwrap: unwrapContents,
	}
}

// NewDirectStrategy requests the upstream API without a relay.
func NewDirectStrategy() Strategy {
	return Strategy{
		Name:   StrategyDirect,
		Wrap:   func(target string) string { return target },
		Unwrap: passThrough,
	}
}

// DefaultStrategies returns corsproxy followed by allorigins.
func DefaultStrategies() []Strategy {
	return []Strategy{
		NewCorsProxyStrategy(CorsProxyBaseURL),
		NewAllOriginsStrategy(AllOriginsBaseURL),
	}
}

// StrategiesByName builds an ordered strategy list from names such as
// "corsproxy,allorigins,direct".
func StrategiesByName(names []string) ([]Strategy, error) {
	out := make([]Strategy, 0, len(names))
	for _, raw := range names {
		switch strings.ToLower(strings.TrimSpace(raw)) {
		case "":
			continue
		case StrategyCorsProxy:
			out = append(out, NewCorsProxyStrategy(CorsProxyBaseURL))
		case StrategyAllOrigins:
			out = append(out, NewAllOriginsStrategy(AllOriginsBaseURL))
		case StrategyDirect:
			out = append(out, NewDirectStrategy())
		default:
			return nil, fmt.Errorf("unknown proxy strategy %q", raw)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no proxy strategies configured")
	}
	return out, nil
}

func passThrough(body []byte) ([]byte, error) {
	return body, nil
}

func unwrapContents(body []byte) ([]byte, error) {
	var envelope struct {
		Contents json.RawMessage `json:"contents"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, &UnwrapError{Strategy: StrategyAllOrigins, Reason: "invalid envelope", Err: err}
	}

	var contents *string
	if err := json.Unmarshal(envelope.Contents, &contents); err != nil || contents == nil {
		return nil, &UnwrapError{Strategy: StrategyAllOrigins, Reason: "allorigins returned no contents"}
	}
	if !json.Valid([]byte(*contents)) {
		return nil, &UnwrapError{Strategy: StrategyAllOrigins, Reason: "contents is not valid JSON"}
	}
	return []byte(*contents), nil
}
