package response

import "testing"

func TestNewPagination(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		page, size int
		total      int64
		want       Pagination
	}{
		{name: "first page", page: 1, size: 2, total: 5, want: Pagination{Page: 1, PageSize: 2, TotalPages: 3, TotalItems: 5, HasMore: true, From: 1, To: 2}},
		{name: "last page", page: 3, size: 2, total: 5, want: Pagination{Page: 3, PageSize: 2, TotalPages: 3, TotalItems: 5, From: 5, To: 5}},
		{name: "past the end", page: 4, size: 2, total: 5, want: Pagination{Page: 4, PageSize: 2, TotalPages: 3, TotalItems: 5}},
		{name: "defaults", page: 0, size: 0, total: 0, want: Pagination{Page: 1, PageSize: 10}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := NewPagination(tt.page, tt.size, tt.total); *got != tt.want {
				t.Fatalf("expected %+v, got %+v", tt.want, *got)
			}
		})
	}
}
