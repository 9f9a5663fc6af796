// internal/api/types/response.go
package types

// PaginatedResponse defines a generic structure for paginated API responses.
// T represents the type of data contained in the 'Data' slice.
type PaginatedResponse[T any] struct {
	Data       []T   `json:"data"`
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
	TotalCount int64 `json:"total_count"`
}

// TradeResponse is the envelope for buy/sell requests. Business rule
// violations come back with Success=false and an Error message rather than a
// non-2xx status; validation and infrastructure failures still use HTTP
// status codes.
type TradeResponse[T any] struct {
	Success     bool   `json:"success"`
	Transaction *T     `json:"transaction,omitempty"`
	Error       string `json:"error,omitempty"`
}
