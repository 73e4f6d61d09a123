package service

import "errors"

var (
	ErrMissingSentiment  = errors.New("no sentiment labels: scoring must run before aggregation")
	ErrScorerUnavailable = errors.New("polarity scorer unavailable")
)
