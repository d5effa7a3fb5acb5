package mapview

import (
	"errors"
	"testing"

	"github.com/mr1hm/histotrails/internal/geo"
	"github.com/mr1hm/histotrails/internal/models"
)

func strPtr(s string) *string { return &s }

func testTree() []models.TimePeriod {
	battle := &models.EventType{Name: models.EventTypeBattle}
	bio := &models.EventType{Name: models.EventTypeBiography}

	return []models.TimePeriod{
		{
			ID:        1,
			Name:      "Middle Ages",
			StartYear: strPtr("500"),
			EndYear:   strPtr("1500"),
			Translations: []models.TimePeriodTranslation{
				{Language: "sr", Name: "Srednji vek", StartYear: strPtr("")},
			},
			Events: []models.Event{
				{ID: 10, Title: "Battle of Kosovo", EventType: battle, Location: &models.Location{Latitude: "42.66", Longitude: "21.08"},
					Translations: []models.EventTranslation{{Language: "sr", Title: "Kosovska bitka"}}},
			},
			Children: []models.TimePeriod{
				{
					ID:        2,
					Name:      "Late Middle Ages",
					StartYear: strPtr("1250"),
					Events: []models.Event{
						{ID: 11, Title: "Dusan", EventType: bio, IsPremium: true, Location: &models.Location{Latitude: "42.0", Longitude: "21.4"}},
						{ID: 12, Title: "No location", EventType: battle},
					},
					Children: []models.TimePeriod{
						{ID: 3, Name: "Ottoman advance", EndYear: strPtr("1453")},
					},
				},
			},
		},
		{ID: 4, Name: "Modern"},
	}
}

func TestTranslate(t *testing.T) {
	tree := Translate(testTree(), "sr")

	if tree[0].Name != "Srednji vek" {
		t.Errorf("expected translated name, got %q", tree[0].Name)
	}
	if *tree[0].StartYear != "500" {
		t.Errorf("expected empty translated year to fall back, got %q", *tree[0].StartYear)
	}
	if tree[0].Events[0].Title != "Kosovska bitka" {
		t.Errorf("expected translated event title, got %q", tree[0].Events[0].Title)
	}
	if tree[0].Children[0].Name != "Late Middle Ages" {
		t.Errorf("expected untranslated child to keep its name, got %q", tree[0].Children[0].Name)
	}

	original := testTree()
	Translate(original, "sr")
	if original[0].Name != "Middle Ages" || original[0].Events[0].Title != "Battle of Kosovo" {
		t.Error("Translate modified its input")
	}
}

func TestCollectEvents_DepthFirst(t *testing.T) {
	tree := testTree()
	events := CollectEvents(&tree[0])

	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
	for i, want := range []int{10, 11, 12} {
		if events[i].ID != want {
			t.Errorf("event %d: expected id %d, got %d", i, want, events[i].ID)
		}
	}
	if CollectEvents(nil) != nil {
		t.Error("expected nil for nil period")
	}
}

func TestFindPeriod(t *testing.T) {
	tree := testTree()
	if p := FindPeriod(tree, 3); p == nil || p.Name != "Ottoman advance" {
		t.Errorf("expected nested period, got %+v", p)
	}
	if FindPeriod(tree, 99) != nil {
		t.Error("expected nil for unknown id")
	}
}

func TestPeriodOptions(t *testing.T) {
	opts := PeriodOptions(testTree())

	want := []string{
		"Middle Ages (500 - 1500)",
		"— Late Middle Ages (from 1250)",
		"— — Ottoman advance (until 1453)",
		"Modern",
	}
	if len(opts) != len(want) {
		t.Fatalf("expected %d options, got %d", len(want), len(opts))
	}
	for i, w := range want {
		if opts[i].Label != w {
			t.Errorf("option %d: got %q, want %q", i, opts[i].Label, w)
		}
	}
	if opts[2].Depth != 2 {
		t.Errorf("expected depth 2, got %d", opts[2].Depth)
	}
}

func TestAvailableAndEffectiveType(t *testing.T) {
	tree := testTree()
	types := AvailableTypes(CollectEvents(&tree[0]))

	want := []models.EventTypeName{models.EventTypeBattle, models.EventTypeBiography, models.EventTypeEvent}
	if len(types) != len(want) {
		t.Fatalf("unexpected types %v", types)
	}
	for i := range want {
		if types[i] != want[i] {
			t.Errorf("type %d: got %q, want %q", i, types[i], want[i])
		}
	}

	if AvailableTypes(nil) != nil {
		t.Error("expected no types for no events")
	}
	if got := EffectiveType(models.EventTypeBiography, types); got != models.EventTypeBiography {
		t.Errorf("expected biography, got %q", got)
	}
	if got := EffectiveType(models.EventTypeBattle, nil); got != models.EventTypeEvent {
		t.Errorf("expected fallback to event, got %q", got)
	}
}

func TestPlace(t *testing.T) {
	tree := testTree()
	events := CollectEvents(&tree[0])
	events = append(events, models.Event{ID: 13, EventType: &models.EventType{Name: models.EventTypeBattle},
		Location: &models.Location{Latitude: "n/a", Longitude: "20"}})

	vp := geo.Viewport{Width: 750, Height: 350}
	b := geo.Bounds{North: 60, South: 25, West: -10, East: 65}

	markers, err := Place(events, models.EventTypeBattle, vp, b)
	if err != nil {
		t.Fatalf("Place failed: %v", err)
	}
	if len(markers) != 1 {
		t.Fatalf("expected only the located battle, got %+v", markers)
	}

	m := markers[0]
	if m.EventID != 10 || m.Icon != IconBattle || m.Color != ColorRegular {
		t.Errorf("unexpected marker: %+v", m)
	}
	wantX := (21.08 + 10) / 75 * 750
	wantY := (60 - 42.66) / 35 * 350
	if diff := m.X - wantX; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("x = %v, want %v", m.X, wantX)
	}
	if diff := m.Y - wantY; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("y = %v, want %v", m.Y, wantY)
	}

	bios, _ := Place(events, models.EventTypeBiography, vp, b)
	if len(bios) != 1 || bios[0].Icon != IconBiography || bios[0].Color != ColorPremium {
		t.Errorf("unexpected biography markers: %+v", bios)
	}
}

func TestPlace_InvalidViewport(t *testing.T) {
	_, err := Place(nil, models.EventTypeEvent, geo.Viewport{}, geo.Bounds{North: 1, South: 0, West: 0, East: 1})
	if !errors.Is(err, geo.ErrInvalidViewport) {
		t.Errorf("expected ErrInvalidViewport, got %v", err)
	}
}
