// Package state tracks table navigation for the UI components.
package state

// Cursor is a selection index plus the first visible row. Total is the
// current row count and must be refreshed via SetTotal when the data changes.
type Cursor struct {
	Index          int
	ViewportOffset int
	Total          int
}

// SetTotal updates the row count and clamps the cursor into range.
func (c *Cursor) SetTotal(total int) {
	if total < 0 {
		total = 0
	}
	c.Total = total
	if total == 0 {
		c.Index = 0
		c.ViewportOffset = 0
		return
	}
	if c.Index >= total {
		c.Index = total - 1
	}
	if c.Index < 0 {
		c.Index = 0
	}
}

// MoveCursorHome moves the cursor to the first item.
func (c *Cursor) MoveCursorHome() bool {
	if c.Total == 0 {
		c.Index = 0
		return false
	}
	old := c.Index
	c.Index = 0
	return old != c.Index
}

// MoveCursorEnd moves the cursor to the last item.
func (c *Cursor) MoveCursorEnd() bool {
	if c.Total == 0 {
		c.Index = 0
		return false
	}
	old := c.Index
	c.Index = c.Total - 1
	return old != c.Index
}

// MoveCursorUp moves one row up.
func (c *Cursor) MoveCursorUp() bool { return c.moveCursorBy(-1) }

// MoveCursorDown moves one row down.
func (c *Cursor) MoveCursorDown() bool { return c.moveCursorBy(1) }

// MoveCursorPageUp moves the cursor up by the given page size.
func (c *Cursor) MoveCursorPageUp(maxVisible int) bool {
	return c.moveCursorBy(-c.pageSize(maxVisible))
}

// MoveCursorPageDown moves the cursor down by the given page size.
func (c *Cursor) MoveCursorPageDown(maxVisible int) bool {
	return c.moveCursorBy(c.pageSize(maxVisible))
}

func (c *Cursor) moveCursorBy(delta int) bool {
	if c.Total == 0 {
		c.Index = 0
		return false
	}
	old := c.Index
	if c.Index < 0 {
		c.Index = 0
	}
	c.Index += delta
	if c.Index < 0 {
		c.Index = 0
	}
	if c.Index >= c.Total {
		c.Index = c.Total - 1
	}
	return c.Index != old
}

func (c *Cursor) pageSize(maxVisible int) int {
	if c.Total == 0 {
		return 0
	}
	size := maxVisible
	if size <= 0 || size > c.Total {
		size = c.Total
	}
	if size < 1 {
		size = 1
	}
	return size
}

// EnsureCursorVisible adjusts the viewport offset so the cursor stays visible.
func (c *Cursor) EnsureCursorVisible(maxVisible int) {
	if c.Total == 0 {
		c.Index = 0
		c.ViewportOffset = 0
		return
	}
	if c.Index < 0 {
		c.Index = 0
	}
	if c.Index >= c.Total {
		c.Index = c.Total - 1
	}
	if maxVisible <= 0 {
		c.ViewportOffset = 0
		return
	}
	maxOffset := c.Total - maxVisible
	if maxOffset < 0 {
		maxOffset = 0
	}
	if c.ViewportOffset > maxOffset {
		c.ViewportOffset = maxOffset
	}
	if c.ViewportOffset < 0 {
		c.ViewportOffset = 0
	}
	if c.Index < c.ViewportOffset {
		c.ViewportOffset = c.Index
	}
	upper := c.ViewportOffset + maxVisible - 1
	if c.Index > upper {
		c.ViewportOffset = c.Index - maxVisible + 1
		if c.ViewportOffset > maxOffset {
			c.ViewportOffset = maxOffset
		}
	}
}
