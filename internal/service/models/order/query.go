package order

import "time"

// QueryRecentModel represents filter parameters for listing recent orders.
type QueryRecentModel struct {
	Since time.Time `json:"since"`
	Page  int       `json:"page,omitempty"`
	Limit int       `json:"limit,omitempty"`
}
