package models

import "time"

// RatelimitConfig holds the rate limit in ulule/limiter format (e.g. "5-S",
// "100-M"). Stored in the database and managed with the configure CLI.
type RatelimitConfig struct {
	Rate      string    `json:"rate"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
