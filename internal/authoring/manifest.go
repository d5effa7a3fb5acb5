package authoring

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	json "github.com/goccy/go-json"
)

// Manifest describes an event to author from the command line. Image blocks
// name their file relative to the manifest.
type Manifest struct {
	Event  Metadata        `json:"event"`
	Blocks []ManifestBlock `json:"blocks"`
}

type ManifestBlock struct {
	Kind        BlockKind `json:"type"`
	Content     string    `json:"content,omitempty"`
	Description string    `json:"description,omitempty"`
	File        string    `json:"file,omitempty"`
}

var ErrEmptyManifest = errors.New("manifest has no blocks")

// LoadManifest decodes r and reads every referenced image from baseDir.
func LoadManifest(r io.Reader, baseDir string) (Metadata, []ContentBlock, error) {
	var m Manifest
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&m); err != nil {
		return Metadata{}, nil, fmt.Errorf("error decoding manifest: %w", err)
	}
	if len(m.Blocks) == 0 {
		return Metadata{}, nil, ErrEmptyManifest
	}

	blocks := make([]ContentBlock, 0, len(m.Blocks))
	for i, mb := range m.Blocks {
		b := ContentBlock{Kind: mb.Kind, Content: mb.Content, Description: mb.Description}
		if mb.File != "" {
			if mb.Kind != BlockImage {
				return Metadata{}, nil, fmt.Errorf("block %d: %w", i, ErrNotImageBlock)
			}
			path := mb.File
			if !filepath.IsAbs(path) {
				path = filepath.Join(baseDir, path)
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return Metadata{}, nil, fmt.Errorf("error reading image for block %d: %w", i, err)
			}
			b.File = &File{Name: filepath.Base(path), Data: data}
		}
		blocks = append(blocks, b)
	}

	if err := ValidateBlocks(blocks); err != nil {
		return Metadata{}, nil, err
	}
	return m.Event, blocks, nil
}
