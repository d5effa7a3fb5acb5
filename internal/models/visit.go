package models

type Granularity string

const (
	GranularityDay   Granularity = "day"
	GranularityWeek  Granularity = "week"
	GranularityMonth Granularity = "month"
	GranularityYear  Granularity = "year"
)

func (g Granularity) Valid() bool {
	switch g {
	case GranularityDay, GranularityWeek, GranularityMonth, GranularityYear:
		return true
	}
	return false
}

type VisitStatus struct {
	ID             string      `json:"visitStatusId"`
	Granularity    Granularity `json:"granularity"`
	PeriodKey      string      `json:"periodKey"`
	PeriodStart    string      `json:"periodStart"`
	TotalVisits    int         `json:"totalVisits"`
	UniqueVisitors int         `json:"uniqueVisitors"`
	CreatedAt      string      `json:"createdAt"`
}
