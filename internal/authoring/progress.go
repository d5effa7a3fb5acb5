package authoring

import "time"

type Status string

const (
	StatusStarted   Status = "started"
	StatusProgress  Status = "progress"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Progress is emitted when a step starts, finishes or fails, and after each
// media upload.
type Progress struct {
	RunID         string    `json:"runId"`
	Step          Step      `json:"step"`
	Status        Status    `json:"status"`
	Title         string    `json:"title"`
	Marker        string    `json:"marker,omitempty"`
	EventID       int       `json:"eventId,omitempty"`
	MediaUploaded int       `json:"mediaUploaded"`
	MediaTotal    int       `json:"mediaTotal"`
	Error         string    `json:"error,omitempty"`
	At            time.Time `json:"at"`
}

type Observer interface {
	Observe(p Progress)
}

type ObserverFunc func(p Progress)

func (f ObserverFunc) Observe(p Progress) {
	f(p)
}

// Observers fans progress out to every non-nil observer in order.
func Observers(obs ...Observer) Observer {
	return ObserverFunc(func(p Progress) {
		for _, o := range obs {
			if o != nil {
				o.Observe(p)
			}
		}
	})
}
