package annotation

import (
	"fmt"
	"slices"
)

// Cursor tracks the current image over a fixed, ordered file list. Moves are
// clamped at both ends and never wrap.
type Cursor struct {
	files []string
	index int
}

// NewCursor positions a cursor on the first of files.
func NewCursor(files []string) *Cursor {
	return &Cursor{files: slices.Clone(files)}
}

// Current returns the filename under the cursor. ok is false when the list
// is empty.
func (c *Cursor) Current() (name string, ok bool) {
	if len(c.files) == 0 {
		return "", false
	}
	return c.files[c.index], true
}

// Next advances one image. It reports whether the cursor moved.
func (c *Cursor) Next() bool {
	if c.index >= len(c.files)-1 {
		return false
	}
	c.index++
	return true
}

// Previous steps back one image. It reports whether the cursor moved.
func (c *Cursor) Previous() bool {
	if c.index <= 0 {
		return false
	}
	c.index--
	return true
}

// First moves to the first image.
func (c *Cursor) First() { c.index = 0 }

// Last moves to the last image.
func (c *Cursor) Last() {
	if len(c.files) > 0 {
		c.index = len(c.files) - 1
	}
}

// Seek moves to name.
func (c *Cursor) Seek(name string) error {
	i := slices.Index(c.files, name)
	if i < 0 {
		return &ImageNotFoundError{Name: name}
	}
	c.index = i
	return nil
}

// Index returns the zero-based position, or -1 for an empty list.
func (c *Cursor) Index() int {
	if len(c.files) == 0 {
		return -1
	}
	return c.index
}

// Len returns the number of images.
func (c *Cursor) Len() int { return len(c.files) }

// Position renders the one-based progress, e.g. "Image 2 of 10".
func (c *Cursor) Position() string {
	if len(c.files) == 0 {
		return "No images loaded"
	}
	return fmt.Sprintf("Image %d of %d", c.index+1, len(c.files))
}
