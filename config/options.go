package config

import "time"

var (
	APIRequestTimeout   = 10 * time.Second
	TokenRequestTimeout = 5 * time.Second
	ChartRequestTimeout = 15 * time.Second

	// Wall-clock budget of the exponential backoff wrapping a single request.
	RetryBudget = 5 * time.Second

	// Pause between consecutive batch chunks and chart weeks.
	BatchPause = 1 * time.Second
	// Pause between consecutive per-id requests of long enumerations.
	ItemPause = 2 * time.Second
)
