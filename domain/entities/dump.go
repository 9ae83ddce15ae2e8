package entities

import "time"

// FailDump describes the page artifacts saved after a failed step.
type FailDump struct {
	ID         string    `json:"id"`
	Label      string    `json:"label"`
	URL        string    `json:"url,omitempty"`
	Screenshot string    `json:"screenshot,omitempty"` // path of the PNG
	HTML       string    `json:"html,omitempty"`       // path of the page source
	CreatedAt  time.Time `json:"created_at"`
}
