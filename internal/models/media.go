package models

import "time"

type MediaType string

const (
	MediaTypeImage MediaType = "image"
	MediaTypeVideo MediaType = "video"
	MediaTypeAudio MediaType = "audio"
)

type Media struct {
	ID          int        `json:"mediaId,omitempty"`
	EventID     *int       `json:"eventId"`
	MediaType   MediaType  `json:"mediaType"`
	URL         string     `json:"url"`
	Description *string    `json:"description"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty"`
}

func (m *Media) DescriptionText() string {
	if m.Description == nil {
		return ""
	}
	return *m.Description
}
