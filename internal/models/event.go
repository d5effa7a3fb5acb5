package models

import "time"

type EventTypeName string

const (
	EventTypeEvent     EventTypeName = "event"
	EventTypeBattle    EventTypeName = "battle"
	EventTypeBiography EventTypeName = "biography"
)

type EventType struct {
	ID   int           `json:"eventTypeId,omitempty"`
	Name EventTypeName `json:"name"`
}

type Event struct {
	ID           int                `json:"eventId,omitempty"`
	Title        string             `json:"title"`
	Description  string             `json:"description"` // HTML authored from content blocks
	Year         *string            `json:"year"`
	TimePeriodID *int               `json:"timePeriodId"`
	EventTypeID  *int               `json:"eventTypeId"`
	LocationID   *int               `json:"locationId"`
	IsPremium    bool               `json:"isPremium"`
	UpdatedAt    *time.Time         `json:"updatedAt,omitempty"`
	EventType    *EventType         `json:"eventType,omitempty"`
	Location     *Location          `json:"location,omitempty"`
	Media        []Media            `json:"media,omitempty"`
	Translations []EventTranslation `json:"translates,omitempty"`
}

// TypeName returns the name of the attached event type, or "" when the
// backend did not expand the relation.
func (e *Event) TypeName() EventTypeName {
	if e.EventType == nil {
		return ""
	}
	return e.EventType.Name
}

type EventTranslation struct {
	ID          int        `json:"translateId,omitempty"`
	EventID     int        `json:"eventId,omitempty"`
	Language    string     `json:"language"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Year        string     `json:"year,omitempty"`
	CreatedAt   *time.Time `json:"createdAt,omitempty"`
}

// NewEvent is the payload of POST /api/events.
type NewEvent struct {
	Title        string  `json:"title"`
	Description  string  `json:"description"`
	Year         *string `json:"year"`
	TimePeriodID *int    `json:"timePeriodId"`
	LocationID   *int    `json:"locationId"`
	EventTypeID  *int    `json:"eventTypeId"`
	IsPremium    bool    `json:"isPremium"`
}

// EventPatch is the payload of PATCH /api/events/{id}; nil fields are left untouched.
type EventPatch struct {
	Title        *string `json:"title,omitempty"`
	Description  *string `json:"description,omitempty"`
	Year         *string `json:"year,omitempty"`
	TimePeriodID *int    `json:"timePeriodId,omitempty"`
	LocationID   *int    `json:"locationId,omitempty"`
	EventTypeID  *int    `json:"eventTypeId,omitempty"`
	IsPremium    *bool   `json:"isPremium,omitempty"`
}
