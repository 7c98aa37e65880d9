package repository

// MaxPageSize caps client-driven list queries.
const MaxPageSize = 100

// PageLimit is the limit a list query actually applies: non-positive values
// fall back to a full page and larger ones are capped.
func PageLimit(limit int) int {
	if limit <= 0 || limit > MaxPageSize {
		return MaxPageSize
	}
	return limit
}

// PageOffset rejects negative offsets.
func PageOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	return offset
}
