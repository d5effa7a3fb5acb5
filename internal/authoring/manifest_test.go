package authoring

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadManifest(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "map.png"), []byte("png"), 0o644); err != nil {
		t.Fatalf("failed to write image: %v", err)
	}

	manifest := `{
		"event": {"title": "Siege of Vienna", "year": "1683", "locationId": 3},
		"blocks": [
			{"type": "text", "content": "The siege began in July."},
			{"type": "image", "description": "Map", "file": "map.png"}
		]
	}`

	meta, blocks, err := LoadManifest(strings.NewReader(manifest), dir)
	if err != nil {
		t.Fatalf("LoadManifest failed: %v", err)
	}
	if meta.Title != "Siege of Vienna" || meta.LocationID == nil || *meta.LocationID != 3 {
		t.Errorf("unexpected metadata: %+v", meta)
	}
	if len(blocks) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(blocks))
	}
	if blocks[1].File == nil || blocks[1].File.Name != "map.png" || string(blocks[1].File.Data) != "png" {
		t.Errorf("unexpected image block: %+v", blocks[1])
	}
}

func TestLoadManifest_Errors(t *testing.T) {
	tests := []struct {
		name     string
		manifest string
		want     error
	}{
		{"no blocks", `{"event": {"title": "x"}, "blocks": []}`, ErrEmptyManifest},
		{"file on text block", `{"event": {"title": "x"}, "blocks": [{"type": "text", "file": "a.png"}]}`, ErrNotImageBlock},
		{"unknown kind", `{"event": {"title": "x"}, "blocks": [{"type": "video"}]}`, ErrUnknownKind},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := LoadManifest(strings.NewReader(tt.manifest), t.TempDir())
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestLoadManifest_MissingFile(t *testing.T) {
	manifest := `{"event": {"title": "x"}, "blocks": [{"type": "image", "file": "missing.png"}]}`
	if _, _, err := LoadManifest(strings.NewReader(manifest), t.TempDir()); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}
