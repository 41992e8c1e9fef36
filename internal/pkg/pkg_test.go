package pkg

import "testing"

func TestParseID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    uint64
		wantErr bool
	}{
		{in: "0", want: 0},
		{in: " 42 ", want: 42},
		{in: "18446744073709551615", want: 18446744073709551615},
		{in: "", wantErr: true},
		{in: "-1", wantErr: true},
		{in: "+1", wantErr: true},
		{in: "abc", wantErr: true},
		{in: "18446744073709551616", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseID(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Fatalf("%q: expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%q: unexpected error: %v", tt.in, err)
		}
		if got != tt.want {
			t.Fatalf("%q: expected %d, got %d", tt.in, tt.want, got)
		}
	}
}

func TestPaginationNormalize(t *testing.T) {
	t.Parallel()

	p := NormalizePagination(&PaginationParams{Page: 0, Limit: 1000})
	if p.Page != 1 || p.Limit != 100 {
		t.Fatalf("expected page 1 limit 100, got %+v", p)
	}
	if p.Offset() != 0 {
		t.Fatalf("expected offset 0, got %d", p.Offset())
	}

	p = NormalizePagination(nil)
	if p.Page != 1 || p.Limit != 10 {
		t.Fatalf("expected defaults, got %+v", p)
	}

	resp := NewPaginatedResponse([]int{1, 2, 3}, 2, 2, 5)
	if resp.TotalPages != 3 {
		t.Fatalf("expected 3 pages, got %d", resp.TotalPages)
	}
}

func TestWindow(t *testing.T) {
	t.Parallel()

	p := &PaginationParams{Page: 2, Limit: 3}
	start, end := p.Window(7)
	if start != 3 || end != 6 {
		t.Fatalf("expected [3,6), got [%d,%d)", start, end)
	}

	p = &PaginationParams{Page: 4, Limit: 3}
	start, end = p.Window(7)
	if start != 7 || end != 7 {
		t.Fatalf("expected empty window at end, got [%d,%d)", start, end)
	}
}
