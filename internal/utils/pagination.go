package utils

import "strconv"

const (
	defaultPageSize = 50
	maxPageSize     = 100
)

// Pagination разбирает параметры limit и offset из строки запроса
func Pagination(limitRaw, offsetRaw string) (limit, offset int) {
	limit = defaultPageSize
	if n, err := strconv.Atoi(limitRaw); err == nil && n > 0 {
		limit = n
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if n, err := strconv.Atoi(offsetRaw); err == nil && n > 0 {
		offset = n
	}
	return limit, offset
}
