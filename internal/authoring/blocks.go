package authoring

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

type BlockKind string

const (
	BlockText  BlockKind = "text"
	BlockImage BlockKind = "image"
)

// File is an image attached to a block. It only lives until the upload.
type File struct {
	Name string
	Data []byte
}

// ContentBlock is one element of an event body, either a paragraph of text or
// an image. CorrelationID links an image block to its uploaded media.
type ContentBlock struct {
	Kind          BlockKind `json:"type"`
	Content       string    `json:"content"`
	Description   string    `json:"description,omitempty"`
	CorrelationID string    `json:"cid,omitempty"`
	File          *File     `json:"-"`
}

func (b ContentBlock) hasFile() bool {
	return b.Kind == BlockImage && b.File != nil && len(b.File.Data) > 0
}

func NewCorrelationID() string {
	return uuid.NewString()
}

var (
	ErrBlockIndex    = errors.New("block index out of range")
	ErrLastBlock     = errors.New("cannot remove the last block")
	ErrNotImageBlock = errors.New("block is not an image block")
	ErrUnknownKind   = errors.New("unknown block kind")
)

// Composer is the in-memory editor state behind the create-event form. It
// always holds at least one block.
type Composer struct {
	blocks []ContentBlock
}

func NewComposer() *Composer {
	return &Composer{blocks: []ContentBlock{{Kind: BlockText}}}
}

// Blocks returns a copy of the current blocks in order.
func (c *Composer) Blocks() []ContentBlock {
	out := make([]ContentBlock, len(c.blocks))
	copy(out, c.blocks)
	return out
}

func (c *Composer) Len() int {
	return len(c.blocks)
}

func (c *Composer) AddText() int {
	c.blocks = append(c.blocks, ContentBlock{Kind: BlockText})
	return len(c.blocks) - 1
}

func (c *Composer) AddImage() int {
	c.blocks = append(c.blocks, ContentBlock{Kind: BlockImage, CorrelationID: NewCorrelationID()})
	return len(c.blocks) - 1
}

func (c *Composer) Remove(i int) error {
	if err := c.check(i); err != nil {
		return err
	}
	if len(c.blocks) <= 1 {
		return ErrLastBlock
	}
	c.blocks = append(c.blocks[:i], c.blocks[i+1:]...)
	return nil
}

// MoveUp and MoveDown are no-ops at the edges.
func (c *Composer) MoveUp(i int) error {
	if err := c.check(i); err != nil {
		return err
	}
	if i == 0 {
		return nil
	}
	c.blocks[i-1], c.blocks[i] = c.blocks[i], c.blocks[i-1]
	return nil
}

func (c *Composer) MoveDown(i int) error {
	if err := c.check(i); err != nil {
		return err
	}
	if i == len(c.blocks)-1 {
		return nil
	}
	c.blocks[i], c.blocks[i+1] = c.blocks[i+1], c.blocks[i]
	return nil
}

func (c *Composer) SetText(i int, content string) error {
	if err := c.check(i); err != nil {
		return err
	}
	c.blocks[i].Content = content
	return nil
}

func (c *Composer) SetDescription(i int, description string) error {
	if err := c.check(i); err != nil {
		return err
	}
	c.blocks[i].Description = description
	return nil
}

func (c *Composer) AttachFile(i int, f File) error {
	if err := c.check(i); err != nil {
		return err
	}
	if c.blocks[i].Kind != BlockImage {
		return ErrNotImageBlock
	}
	c.blocks[i].File = &f
	if c.blocks[i].CorrelationID == "" {
		c.blocks[i].CorrelationID = NewCorrelationID()
	}
	return nil
}

func (c *Composer) DetachFile(i int) error {
	if err := c.check(i); err != nil {
		return err
	}
	c.blocks[i].File = nil
	return nil
}

func (c *Composer) check(i int) error {
	if i < 0 || i >= len(c.blocks) {
		return fmt.Errorf("%w: %d of %d", ErrBlockIndex, i, len(c.blocks))
	}
	return nil
}

// ValidateBlocks rejects unknown kinds. Empty blocks are allowed and simply
// render to nothing.
func ValidateBlocks(blocks []ContentBlock) error {
	for i, b := range blocks {
		if b.Kind != BlockText && b.Kind != BlockImage {
			return fmt.Errorf("%w %q at block %d", ErrUnknownKind, b.Kind, i)
		}
	}
	return nil
}
