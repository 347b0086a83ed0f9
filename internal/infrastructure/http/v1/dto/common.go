// Package dto defines request and response shapes for the HTTP API.
package dto

// IDResponse returns the identifier of a created resource.
type IDResponse struct {
	ID string `json:"id"`
}

// SuccessResponse confirms an operation with a message.
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// CreatedYearResponse reports whether a new year was actually created.
type CreatedYearResponse struct {
	Created bool   `json:"created"`
	Year    string `json:"year"`
}
