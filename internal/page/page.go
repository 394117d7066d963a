package page

// Page is one page of a listing with its navigation metadata.
type Page[T any] struct {
	Items    []T   `json:"items"`
	Page     int   `json:"page"`
	PageSize int   `json:"pageSize"`
	HasNext  bool  `json:"hasNext"`
	HasPrev  bool  `json:"hasPrev"`
	Total    int64 `json:"total"`
}

const defaultPageSize = 20

// Clamp normalizes page/pageSize to usable values. Pages are 1-based.
func Clamp(pageNum, pageSize int) (int, int) {
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if pageNum <= 0 {
		pageNum = 1
	}
	return pageNum, pageSize
}

// Offset is the SQL offset for a 1-based page number.
func Offset(pageNum, pageSize int) int {
	return (pageNum - 1) * pageSize
}

// FromTotal wraps items already limited by the repository query, using the
// repository's total count for navigation metadata.
func FromTotal[T any](items []T, pageNum, pageSize int, total int64) Page[T] {
	pageNum, pageSize = Clamp(pageNum, pageSize)
	end := int64(Offset(pageNum, pageSize) + len(items))
	return Page[T]{
		Items:    items,
		Page:     pageNum,
		PageSize: pageSize,
		HasNext:  end < total,
		HasPrev:  pageNum > 1,
		Total:    total,
	}
}
