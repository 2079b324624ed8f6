package dto

// ListResponse is the paging envelope shared by every list endpoint.
type ListResponse[T any] struct {
	Items      []T `json:"items"`
	Total      int `json:"total"`
	PageSize   int `json:"page_size"`
	NextOffset int `json:"next_offset"`
}

func NewListResponse[T any](items []T, total, limit, offset int) ListResponse[T] {
	if items == nil {
		items = []T{}
	}
	return ListResponse[T]{
		Items:      items,
		Total:      total,
		PageSize:   limit,
		NextOffset: offset + len(items),
	}
}

// MapList converts domain values with fn.
func MapList[S any, T any](in []S, fn func(S) T) []T {
	out := make([]T, 0, len(in))
	for _, v := range in {
		out = append(out, fn(v))
	}
	return out
}
