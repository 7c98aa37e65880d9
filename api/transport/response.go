package transport

import "encoding/json"

// Envelope is the standard API response wrapper used for both success and error payloads.
type Envelope struct {
	Status string       `json:"status"`
	Code   string       `json:"code,omitempty"`
	Data   interface{}  `json:"data,omitempty"`
	Error  *ErrorDetail `json:"error,omitempty"`
	Meta   interface{}  `json:"meta,omitempty"`
}

// ErrorDetail carries a human-readable message and, for validation
// failures, the offending fields.
type ErrorDetail struct {
	Message string       `json:"message"`
	Fields  []FieldError `json:"fields,omitempty"`
}

// ListMeta describes the page returned by list endpoints.
type ListMeta struct {
	Count  int `json:"count"`
	Limit  int `json:"limit,omitempty"`
	Offset int `json:"offset,omitempty"`
}

func NewSuccess(data interface{}, meta interface{}) Envelope {
	return Envelope{
		Status: "success",
		Data:   data,
		Meta:   meta,
	}
}

// NewList wraps a page of results. A nil slice is never encoded as null.
func NewList[T any](items []T, limit, offset int) Envelope {
	if items == nil {
		items = []T{}
	}
	return NewSuccess(items, ListMeta{Count: len(items), Limit: limit, Offset: offset})
}

func NewError(code string, message string, meta interface{}) Envelope {
	return Envelope{
		Status: "error",
		Code:   code,
		Error:  &ErrorDetail{Message: message},
		Meta:   meta,
	}
}

// NewValidationError reports rejected request fields.
func NewValidationError(code string, fields []FieldError) Envelope {
	return Envelope{
		Status: "error",
		Code:   code,
		Error:  &ErrorDetail{Message: Summary(fields), Fields: fields},
	}
}

// String returns the JSON representation (best-effort) for logging purposes.
func (e Envelope) String() string {
	out, err := json.Marshal(e)
	if err != nil {
		return "{}"
	}
	return string(out)
}
