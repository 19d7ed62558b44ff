package pagination

const (
	PageDefaultSize = 50
	PageMaxSize     = 1_000
)

// OffsetRequest is a page/size pair as sent in query parameters. Page is 1-based.
type OffsetRequest struct {
	Page int `json:"page" query:"page"`
	Size int `json:"size" query:"size"`
}

// Normalize replaces out of range values with defaults instead of rejecting them.
func (r *OffsetRequest) Normalize() {
	if r.Page <= 0 {
		r.Page = 1
	}
	if r.Size <= 0 {
		r.Size = PageDefaultSize
	}
	if r.Size > PageMaxSize {
		r.Size = PageMaxSize
	}
}

// Offset is the number of items before the requested page.
func (r *OffsetRequest) Offset() int {
	if r.Page <= 1 {
		return 0
	}
	return (r.Page - 1) * r.Size
}

type OffsetResult[T any] struct {
	Items   []T   `json:"items"`
	Total   int64 `json:"total"`
	Page    int   `json:"page"`
	Size    int   `json:"size"`
	HasMore bool  `json:"has_more"`
}

// NewOffsetResult wraps one page of items. req must already be normalized.
func NewOffsetResult[T any](items []T, total int64, req OffsetRequest) *OffsetResult[T] {
	if items == nil {
		items = make([]T, 0)
	}
	return &OffsetResult[T]{
		Items:   items,
		Total:   total,
		Page:    req.Page,
		Size:    req.Size,
		HasMore: int64(req.Offset()+len(items)) < total,
	}
}
