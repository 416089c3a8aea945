package queryparams

import "testing"

func TestValidate(t *testing.T) {
	tests := []struct {
		name        string
		in          ListParams
		wantPage    int
		wantPerPage int
		wantOrderBy string
	}{
		{"zero values fall back to defaults", ListParams{}, DefaultPage, DefaultPerPage, DefaultOrderBy},
		{"negative page is clamped", ListParams{Page: -3, PerPage: 10, OrderBy: "asc"}, DefaultPage, 10, "asc"},
		{"per-page is capped", ListParams{Page: 2, PerPage: 500, OrderBy: "desc"}, 2, MaxPerPage, "desc"},
		{"unknown ordering falls back", ListParams{Page: 1, PerPage: 5, OrderBy: "sideways"}, 1, 5, DefaultOrderBy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.in.Validate()
			if tt.in.Page != tt.wantPage || tt.in.PerPage != tt.wantPerPage || tt.in.OrderBy != tt.wantOrderBy {
				t.Errorf("got page=%d perPage=%d orderBy=%q, want %d/%d/%q",
					tt.in.Page, tt.in.PerPage, tt.in.OrderBy, tt.wantPage, tt.wantPerPage, tt.wantOrderBy)
			}
		})
	}
}

func TestCalculateOffset(t *testing.T) {
	p := ListParams{Page: 3, PerPage: 20}
	if got := p.CalculateOffset(); got != 40 {
		t.Errorf("offset = %d, want 40", got)
	}
}

func TestCalculateTotalPages(t *testing.T) {
	tests := []struct {
		totalItems int64
		perPage    int
		want       int
	}{
		{0, 20, 0},
		{1, 20, 1},
		{20, 20, 1},
		{21, 20, 2},
		{100, 0, 0},
	}
	for _, tt := range tests {
		if got := CalculateTotalPages(tt.totalItems, tt.perPage); got != tt.want {
			t.Errorf("CalculateTotalPages(%d, %d) = %d, want %d", tt.totalItems, tt.perPage, got, tt.want)
		}
	}
}

func TestNewPaginatedResult(t *testing.T) {
	params := ListParams{Page: 2, PerPage: 10}
	result := NewPaginatedResult([]int{1, 2, 3}, 23, params)
	if result.Meta.CurrentPage != 2 || result.Meta.TotalItems != 23 || result.Meta.TotalPages != 3 {
		t.Errorf("meta = %+v", result.Meta)
	}
}
