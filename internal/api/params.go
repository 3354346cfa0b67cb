package api

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
)

var (
	// ErrMissingParameter marks a required query parameter that was absent.
	ErrMissingParameter = errors.New("missing required parameter")
	// ErrInvalidParameter marks a query parameter that did not parse.
	ErrInvalidParameter = errors.New("invalid parameter")
)

func floatParam(q url.Values, name string) (float64, error) {
	raw := q.Get(name)
	if raw == "" {
		return 0, fmt.Errorf("%w: %s", ErrMissingParameter, name)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q", ErrInvalidParameter, name, raw)
	}
	return v, nil
}

// optionalFloatParam returns fallback when the parameter is absent, but an
// explicitly supplied value must still parse.
func optionalFloatParam(q url.Values, name string, fallback float64) (float64, error) {
	if q.Get(name) == "" {
		return fallback, nil
	}
	return floatParam(q, name)
}

func stringParam(q url.Values, name string) (string, error) {
	raw := q.Get(name)
	if raw == "" {
		return "", fmt.Errorf("%w: %s", ErrMissingParameter, name)
	}
	return raw, nil
}
