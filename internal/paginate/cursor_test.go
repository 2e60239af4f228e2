package paginate

import "testing"

func TestNextStopsAtLastPage(t *testing.T) {
	c := New(0, 3, false)

	if !c.Next() || c.Page() != 1 {
		t.Fatalf("expected move to page 1, got %d", c.Page())
	}
	if !c.Next() || c.Page() != 2 {
		t.Fatalf("expected move to page 2, got %d", c.Page())
	}
	if !c.IsLastPage() {
		t.Fatalf("expected last page at 2")
	}
	if c.Next() {
		t.Fatalf("expected clamp at last page, moved to %d", c.Page())
	}
	if c.Page() != 2 {
		t.Fatalf("page changed on blocked transition: %d", c.Page())
	}
}

func TestNextEntersOverflowSlot(t *testing.T) {
	c := New(2, 3, true)

	if !c.Next() {
		t.Fatalf("expected move into overflow slot")
	}
	if !c.IsOverflow() || c.Page() != 3 {
		t.Fatalf("expected overflow at page 3, got %d overflow=%v", c.Page(), c.IsOverflow())
	}
	if c.Next() {
		t.Fatalf("expected clamp beyond overflow slot")
	}
}

func TestPreviousStopsAtZero(t *testing.T) {
	c := New(1, 3, false)

	if !c.Previous() || c.Page() != 0 {
		t.Fatalf("expected page 0, got %d", c.Page())
	}
	if !c.IsFirstPage() {
		t.Fatalf("expected first page")
	}
	if c.Previous() {
		t.Fatalf("expected clamp at page 0")
	}
	if c.Page() != 0 {
		t.Fatalf("page changed on blocked transition: %d", c.Page())
	}
}

func TestRoundTripWithoutBoundaryCrossing(t *testing.T) {
	c := New(2, 5, false)

	c.Previous()
	c.Next()
	if c.Page() != 2 {
		t.Fatalf("expected round-trip back to 2, got %d", c.Page())
	}
}

func TestSetPageClamps(t *testing.T) {
	c := New(0, 3, false)

	c.SetPage(99)
	if c.Page() != 2 {
		t.Fatalf("expected clamp to 2, got %d", c.Page())
	}
	c.SetPage(-5)
	if c.Page() != 0 {
		t.Fatalf("expected clamp to 0, got %d", c.Page())
	}
}

func TestSetMaxPageRealignsCursor(t *testing.T) {
	c := New(4, 5, false)

	c.SetMaxPage(3)
	if c.Page() != 2 {
		t.Fatalf("expected realign to 2 after shrink, got %d", c.Page())
	}
	if !c.IsLastPage() {
		t.Fatalf("expected last page after realign")
	}
}

func TestEmptyCollection(t *testing.T) {
	c := New(0, 0, false)

	if c.Next() || c.Previous() {
		t.Fatalf("expected no movement on empty collection")
	}
	if !c.IsFirstPage() || c.IsLastPage() {
		t.Fatalf("unexpected derived flags on empty collection")
	}

	o := New(0, 0, true)
	if !o.IsOverflow() {
		t.Fatalf("empty collection with overflow should start in the new-item slot")
	}
}
