// Package mapview prepares the period tree and event markers shown on the
// map page.
package mapview

import "github.com/mr1hm/histotrails/internal/models"

// Translate returns a copy of the tree with names, years and descriptions
// replaced by the lang translation where one exists. Empty translated fields
// fall back to the original.
func Translate(periods []models.TimePeriod, lang string) []models.TimePeriod {
	if lang == "" {
		return periods
	}
	out := make([]models.TimePeriod, len(periods))
	for i, p := range periods {
		out[i] = translatePeriod(p, lang)
	}
	return out
}

func translatePeriod(p models.TimePeriod, lang string) models.TimePeriod {
	for _, t := range p.Translations {
		if t.Language != lang {
			continue
		}
		if t.Name != "" {
			p.Name = t.Name
		}
		p.StartYear = firstSet(t.StartYear, p.StartYear)
		p.EndYear = firstSet(t.EndYear, p.EndYear)
		p.Description = firstSet(t.Description, p.Description)
		break
	}

	p.Children = Translate(p.Children, lang)

	if len(p.Events) > 0 {
		events := make([]models.Event, len(p.Events))
		for i, e := range p.Events {
			events[i] = translateEvent(e, lang)
		}
		p.Events = events
	}
	return p
}

func translateEvent(e models.Event, lang string) models.Event {
	for _, t := range e.Translations {
		if t.Language != lang {
			continue
		}
		if t.Title != "" {
			e.Title = t.Title
		}
		if t.Description != "" {
			e.Description = t.Description
		}
		break
	}
	return e
}

func firstSet(override, fallback *string) *string {
	if override != nil && *override != "" {
		return override
	}
	return fallback
}

// CollectEvents returns the events of p and all its descendants, parents
// before children.
func CollectEvents(p *models.TimePeriod) []models.Event {
	if p == nil {
		return nil
	}
	events := append([]models.Event(nil), p.Events...)
	for i := range p.Children {
		events = append(events, CollectEvents(&p.Children[i])...)
	}
	return events
}

// FindPeriod searches the tree depth-first.
func FindPeriod(periods []models.TimePeriod, id int) *models.TimePeriod {
	for i := range periods {
		if periods[i].ID == id {
			return &periods[i]
		}
		if found := FindPeriod(periods[i].Children, id); found != nil {
			return found
		}
	}
	return nil
}

type PeriodOption struct {
	ID    int    `json:"id"`
	Label string `json:"label"`
	Depth int    `json:"depth"`
}

// PeriodOptions flattens the tree into select options. Each level of depth
// adds a "— " prefix and the label ends with the year range when known.
func PeriodOptions(periods []models.TimePeriod) []PeriodOption {
	var out []PeriodOption
	appendOptions(&out, periods, "", 0)
	return out
}

func appendOptions(out *[]PeriodOption, periods []models.TimePeriod, prefix string, depth int) {
	for _, p := range periods {
		*out = append(*out, PeriodOption{ID: p.ID, Label: prefix + p.Name + yearSuffix(p), Depth: depth})
		appendOptions(out, p.Children, prefix+"— ", depth+1)
	}
}

func yearSuffix(p models.TimePeriod) string {
	start, end := deref(p.StartYear), deref(p.EndYear)
	switch {
	case start != "" && end != "":
		return " (" + start + " - " + end + ")"
	case start != "":
		return " (from " + start + ")"
	case end != "":
		return " (until " + end + ")"
	}
	return ""
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
