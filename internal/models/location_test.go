package models

import "testing"

func TestLocation_Coordinates(t *testing.T) {
	loc := Location{Name: "Kosovo Polje", Latitude: " 42.66 ", Longitude: "21.08"}

	c, err := loc.Coordinates()
	if err != nil {
		t.Fatalf("Coordinates failed: %v", err)
	}
	if c.Latitude != 42.66 || c.Longitude != 21.08 {
		t.Errorf("unexpected coordinates: %+v", c)
	}
}

func TestLocation_CoordinatesInvalid(t *testing.T) {
	loc := Location{Name: "nowhere", Latitude: "north-ish", Longitude: "21"}
	if _, err := loc.Coordinates(); err == nil {
		t.Error("expected error for unparsable latitude")
	}
}

func TestNewLocation_RoundTrip(t *testing.T) {
	loc := NewLocation("Vienna", Coordinates{Latitude: 48.2082, Longitude: 16.3738})
	if loc.Latitude != "48.2082" || loc.Longitude != "16.3738" {
		t.Errorf("unexpected formatting: %+v", loc)
	}

	c, err := loc.Coordinates()
	if err != nil {
		t.Fatalf("Coordinates failed: %v", err)
	}
	if c.Latitude != 48.2082 || c.Longitude != 16.3738 {
		t.Errorf("round trip mismatch: %+v", c)
	}
}

func TestGranularity_Valid(t *testing.T) {
	for _, g := range []Granularity{GranularityDay, GranularityWeek, GranularityMonth, GranularityYear} {
		if !g.Valid() {
			t.Errorf("expected %q to be valid", g)
		}
	}
	if Granularity("hour").Valid() {
		t.Error("expected hour to be invalid")
	}
}
