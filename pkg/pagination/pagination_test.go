package pagination

import "testing"

func TestNormalize(t *testing.T) {
	p := Params{Page: 0, Limit: 0}.Normalize()
	if p.Page != 1 || p.Limit != DefaultLimit {
		t.Fatalf("unexpected normalized params %+v", p)
	}

	p = Params{Page: -3, Limit: 500}.Normalize()
	if p.Page != 1 || p.Limit != MaxLimit {
		t.Fatalf("unexpected clamped params %+v", p)
	}
}

func TestOffset(t *testing.T) {
	if got := (Params{Page: 1, Limit: 25}).Offset(); got != 0 {
		t.Fatalf("expected offset 0, got %d", got)
	}
	if got := (Params{Page: 3, Limit: 10}).Offset(); got != 20 {
		t.Fatalf("expected offset 20, got %d", got)
	}
}

func TestPages(t *testing.T) {
	if got := Pages(0, 25); got != 0 {
		t.Fatalf("expected 0 pages, got %d", got)
	}
	if got := Pages(25, 25); got != 1 {
		t.Fatalf("expected 1 page, got %d", got)
	}
	if got := Pages(26, 25); got != 2 {
		t.Fatalf("expected 2 pages, got %d", got)
	}
}
