package models

import "time"

type RunStatus string

const (
	RunRunning   RunStatus = "running"
	RunCompleted RunStatus = "completed"
	RunFailed    RunStatus = "failed"
)

// AuthoringRun is the journal entry of one authoring attempt. A failed run
// with a non-zero EventID points at an event left with its marker description.
type AuthoringRun struct {
	ID            string    `json:"runId"`
	Title         string    `json:"title"`
	Marker        string    `json:"marker,omitempty"`
	EventID       int       `json:"eventId,omitempty"`
	Step          string    `json:"step"`
	Status        RunStatus `json:"status"`
	Error         string    `json:"error,omitempty"`
	MediaUploaded int       `json:"mediaUploaded"`
	MediaTotal    int       `json:"mediaTotal"`
	StartedAt     time.Time `json:"startedAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}
