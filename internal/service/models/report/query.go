package report

// QueryReportsModel represents filter parameters for querying reports.
type QueryReportsModel struct {
	Status     string `json:"status,omitempty"`
	State      string `json:"state,omitempty"`
	Medication string `json:"medication,omitempty"`
	Age        int    `json:"age,omitempty"`
	Source     string `json:"source,omitempty"`
	Search     string `json:"search,omitempty"`
	Page       int    `json:"page,omitempty"`
	Limit      int    `json:"limit,omitempty"`
}

// MedicationCount is one bucket of the summary aggregation.
type MedicationCount struct {
	Medication string `json:"medication"`
	Count      int64  `json:"count"`
}

// StateCount is one bucket of the summary aggregation.
type StateCount struct {
	State string `json:"state"`
	Count int64  `json:"count"`
}

// Summary holds the aggregated report tallies.
type Summary struct {
	Total       int64             `json:"total"`
	Medications []MedicationCount `json:"medications"`
	States      []StateCount      `json:"states"`
}
