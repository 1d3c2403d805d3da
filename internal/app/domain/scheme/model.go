package scheme

import "time"

// Scheme is a read-only catalog entry describing a welfare scheme.
type Scheme struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Eligibility string    `json:"eligibility"`
	CreatedAt   time.Time `json:"created_at"`
}
