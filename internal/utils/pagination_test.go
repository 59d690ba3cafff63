package utils

import "testing"

func TestPagination(t *testing.T) {
	tests := []struct {
		limitRaw, offsetRaw string
		limit, offset       int
	}{
		{"", "", 50, 0},
		{"20", "40", 20, 40},
		{"500", "", 100, 0},
		{"-5", "-10", 50, 0},
		{"abc", "xyz", 50, 0},
		{"0", "0", 50, 0},
	}

	for _, tt := range tests {
		limit, offset := Pagination(tt.limitRaw, tt.offsetRaw)
		if limit != tt.limit || offset != tt.offset {
			t.Errorf("Pagination(%q, %q) = (%d, %d), ожидалось (%d, %d)",
				tt.limitRaw, tt.offsetRaw, limit, offset, tt.limit, tt.offset)
		}
	}
}
