package utils

import "time"

type SuccessResponse struct {
	Success bool  `json:"success"`
	Data    any   `json:"data"`
	Meta    *Meta `json:"meta,omitempty"`
}

type ErrorResponse struct {
	Success bool     `json:"success"`
	Error   APIError `json:"error"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Meta carries the response time and, for dashboard payloads, the refresh
// cycle that produced the data.
type Meta struct {
	Timestamp   time.Time  `json:"timestamp"`
	CycleID     string     `json:"cycle_id,omitempty"`
	GeneratedAt *time.Time `json:"generated_at,omitempty"`
}

func CreateErrorResponse(code, message string) ErrorResponse {
	return ErrorResponse{
		Success: false,
		Error: APIError{
			Code:    code,
			Message: message,
		},
	}
}

func CreateSuccessResponse(data any) SuccessResponse {
	return SuccessResponse{
		Success: true,
		Data:    data,
		Meta: &Meta{
			Timestamp: time.Now(),
		},
	}
}

// CreateCycleResponse wraps data taken from a refresh cycle snapshot.
func CreateCycleResponse(data any, cycleID string, generatedAt time.Time) SuccessResponse {
	resp := CreateSuccessResponse(data)
	resp.Meta.CycleID = cycleID
	resp.Meta.GeneratedAt = &generatedAt
	return resp
}
