package utils

import "strconv"

// UintToString converts a database ID for cache keys and log fields
func UintToString(v uint) string {
	return strconv.FormatUint(uint64(v), 10)
}

// Paginate returns sanitized page/limit and the SQL offset
func Paginate(page, limit int) (int, int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	return page, limit, (page - 1) * limit
}
