package paging

import (
	"net/http/httptest"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		target string
		want   int
	}{
		{"/x", 1},
		{"/x?page=3", 3},
		{"/x?page=0", 1},
		{"/x?page=-2", 1},
		{"/x?page=abc", 1},
	}
	for _, tt := range tests {
		p := Parse(httptest.NewRequest("GET", tt.target, nil))
		if p.Number != tt.want || p.Size != PageSize {
			t.Errorf("%s: got %+v, want page %d", tt.target, p, tt.want)
		}
	}
}

func TestOffsetLimit(t *testing.T) {
	p := Page{Number: 3, Size: 50}
	if p.Offset() != 100 {
		t.Errorf("Offset = %d, want 100", p.Offset())
	}
	if p.Limit() != 50 {
		t.Errorf("Limit = %d, want 50", p.Limit())
	}
}

func TestTotalPages(t *testing.T) {
	p := Page{Number: 1, Size: 50}
	for total, want := range map[int64]int{0: 1, 1: 1, 50: 1, 51: 2, 101: 3} {
		if got := p.TotalPages(total); got != want {
			t.Errorf("TotalPages(%d) = %d, want %d", total, got, want)
		}
	}
}
