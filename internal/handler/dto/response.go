// Package dto provides Data Transfer Objects for API requests and responses.
package dto

// Response is the envelope every endpoint answers with.
type Response struct {
	Success bool       `json:"success"`
	Message string     `json:"message,omitempty"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorBody `json:"error,omitempty"`
}

// ErrorBody describes a failed request.
type ErrorBody struct {
	Code    string       `json:"code"`
	Message string       `json:"message"`
	Fields  []FieldError `json:"fields,omitempty"`
}

// FieldError is a single validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// OK wraps data in a success envelope.
func OK(data any) Response {
	return Response{Success: true, Data: data}
}

// Message builds a success envelope with only a message.
func Message(msg string) Response {
	return Response{Success: true, Message: msg}
}

// Fail builds an error envelope.
func Fail(code, message string, fields ...FieldError) Response {
	return Response{
		Success: false,
		Error: &ErrorBody{
			Code:    code,
			Message: message,
			Fields:  fields,
		},
	}
}
