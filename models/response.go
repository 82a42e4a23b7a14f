package models

// ErrorResponse is a generic error response structure for API
type ErrorResponse struct {
	Message string `json:"message" example:"Error message describing the issue"`
}

// Page is the pagination envelope returned by list endpoints.
type Page[T any] struct {
	Items  []T   `json:"items"`
	Total  int64 `json:"total"`
	Limit  int   `json:"limit"`
	Offset int   `json:"offset"`
}

// NotePage and TagPage exist so the API docs can name the concrete envelopes.
type (
	NotePage = Page[Note]
	TagPage  = Page[Tag]
)
