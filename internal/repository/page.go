package repository

// Page is one window of a List call.
type Page[T any] struct {
	Items   []T
	Total   int64 // rows matching, ignoring limit/offset
	Limit   int
	Offset  int
	HasNext bool
	HasPrev bool
}

const defaultPageSize = 50

func normalizePaging(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func newPage[T any](items []T, total int64, limit, offset int) Page[T] {
	return Page[T]{
		Items:   items,
		Total:   total,
		Limit:   limit,
		Offset:  offset,
		HasNext: int64(offset+len(items)) < total,
		HasPrev: offset > 0,
	}
}
