package pagination

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Params carries the limit/offset pair used by list queries.
type Params struct {
	Limit  int
	Offset int
}

// Normalize clamps the params into the supported range.
func (p Params) Normalize() Params {
	if p.Limit <= 0 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

// Page wraps a result list with total count metadata.
type Page[T any] struct {
	Items  []T   `json:"items"`
	Total  int64 `json:"total"`
	Limit  int   `json:"limit"`
	Offset int   `json:"offset"`
}
