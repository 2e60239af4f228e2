// Package paginate implements index-based pagination over a bounded range.
// Mathematically the reachable range is [0, maxPage), or [0, maxPage] when
// overflow is allowed; the one-past-the-end position is the overflow slot.
package paginate

// Cursor is a bounded page index with clamp-on-boundary transitions.
type Cursor struct {
	page          int
	maxPage       int
	allowOverflow bool
}

// New builds a cursor at initialPage over a collection of maxPage items.
// With allowOverflow the cursor may also rest on the index equal to maxPage.
func New(initialPage, maxPage int, allowOverflow bool) *Cursor {
	c := &Cursor{maxPage: maxPage, allowOverflow: allowOverflow}
	c.SetPage(initialPage)
	return c
}

// Next advances one page and reports whether the cursor moved.
// At the upper bound it is a no-op.
func (c *Cursor) Next() bool {
	next := c.page + 1
	if c.allowOverflow {
		if next > c.maxPage {
			return false
		}
	} else if next >= c.maxPage {
		return false
	}
	c.page = next
	return true
}

// Previous steps one page back and reports whether the cursor moved.
// At page 0 it is a no-op.
func (c *Cursor) Previous() bool {
	if c.page == 0 {
		return false
	}
	c.page--
	return true
}

// SetPage positions the cursor, clamping into the valid range. Callers use it
// to realign after list mutations (e.g. an item removed ahead of the cursor).
func (c *Cursor) SetPage(n int) {
	if n < 0 {
		n = 0
	}
	if max := c.upperBound(); n > max {
		n = max
	}
	c.page = n
}

// SetMaxPage updates the bound after the underlying list changed length and
// clamps the current page back into range.
func (c *Cursor) SetMaxPage(maxPage int) {
	if maxPage < 0 {
		maxPage = 0
	}
	c.maxPage = maxPage
	c.SetPage(c.page)
}

// Page returns the current page index.
func (c *Cursor) Page() int { return c.page }

// MaxPage returns the current upper bound (the collection length).
func (c *Cursor) MaxPage() int { return c.maxPage }

// IsFirstPage reports whether the cursor is at page 0.
func (c *Cursor) IsFirstPage() bool { return c.page == 0 }

// IsLastPage reports whether the cursor is on the last real item.
func (c *Cursor) IsLastPage() bool { return c.page == c.maxPage-1 }

// IsOverflow reports whether the cursor rests on the one-past-the-end slot.
func (c *Cursor) IsOverflow() bool { return c.allowOverflow && c.page == c.maxPage }

func (c *Cursor) upperBound() int {
	if c.allowOverflow {
		return c.maxPage
	}
	if c.maxPage == 0 {
		return 0
	}
	return c.maxPage - 1
}
