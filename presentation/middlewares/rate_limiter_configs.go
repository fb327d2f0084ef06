package middlewares

import "time"

// IngestRateLimiterConfig for event batch submission. Clients flush a
// batch every few seconds per open session, so the allowance is high.
func IngestRateLimiterConfig() RateLimiterConfig {
	return RateLimiterConfig{
		RequestsPerWindow: 300,             // 300 batches
		Window:            time.Minute,     // per minute
		BlockDuration:     time.Minute * 2, // block for 2 minutes
	}
}

// SessionRateLimiterConfig for session start/end and stats lookups.
func SessionRateLimiterConfig() RateLimiterConfig {
	return RateLimiterConfig{
		RequestsPerWindow: 60,              // 60 requests
		Window:            time.Minute,     // per minute
		BlockDuration:     time.Minute * 5, // block for 5 minutes
	}
}

// RightsRateLimiterConfig for export and erase. These are heavy and
// legitimate callers invoke them rarely.
func RightsRateLimiterConfig() RateLimiterConfig {
	return RateLimiterConfig{
		RequestsPerWindow: 5,                // 5 requests
		Window:            time.Minute,      // per minute
		BlockDuration:     time.Minute * 15, // block for 15 minutes
	}
}
