package report

import (
	"time"

	"github.com/google/uuid"
)

// Report represents a self-reported intake submission for the analytics
// subsystem.
type Report struct {
	ID         uuid.UUID `json:"id"`
	Age        int       `json:"age"`
	Medication string    `json:"medication"`
	State      string    `json:"state"`
	City       string    `json:"city"`
	Location   string    `json:"location"`
	Source     string    `json:"source"`
	IsQualify  Status    `json:"isQualify"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}
