package models

import "time"

type TimePeriod struct {
	ID                 int                     `json:"timePeriodId,omitempty"`
	Name               string                  `json:"name"`
	StartYear          *string                 `json:"startYear"`
	EndYear            *string                 `json:"endYear"`
	ParentTimePeriodID *int                    `json:"parentTimePeriodId"`
	Description        *string                 `json:"description"`
	Children           []TimePeriod            `json:"children,omitempty"`
	Events             []Event                 `json:"events,omitempty"`
	Translations       []TimePeriodTranslation `json:"translations,omitempty"`
}

type TimePeriodTranslation struct {
	ID           int        `json:"timePeriodTranslateId,omitempty"`
	TimePeriodID int        `json:"timePeriodId,omitempty"`
	Language     string     `json:"language"`
	Name         string     `json:"name"`
	StartYear    *string    `json:"startYear,omitempty"`
	EndYear      *string    `json:"endYear,omitempty"`
	Description  *string    `json:"description,omitempty"`
	CreatedAt    *time.Time `json:"createdAt,omitempty"`
}

// NewTimePeriod is the payload for creating or updating a time period.
type NewTimePeriod struct {
	Name               string  `json:"name"`
	StartYear          *string `json:"startYear"`
	EndYear            *string `json:"endYear"`
	ParentTimePeriodID *int    `json:"parentTimePeriodId"`
	Description        *string `json:"description"`
}
