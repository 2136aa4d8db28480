// Package handler holds the uniform response envelope and cross-resource
// HTTP helpers.
package handler

import (
	"github.com/medrex/clinical-api/pkg/errors"
)

const (
	StatusSuccess = "success"
	StatusFail    = "fail"
	StatusError   = "error"
)

// Response is the envelope every endpoint returns. Results is only present
// on list responses.
type Response struct {
	Status  string              `json:"status"`
	Results *int                `json:"results,omitempty"`
	Data    interface{}         `json:"data,omitempty"`
	Message string              `json:"message,omitempty"`
	Errors  []errors.FieldError `json:"errors,omitempty"`
}

func NewSuccessResponse(data interface{}) *Response {
	return &Response{
		Status: StatusSuccess,
		Data:   data,
	}
}

// NewListResponse includes the page's result count alongside the data.
func NewListResponse(data interface{}, count int) *Response {
	return &Response{
		Status:  StatusSuccess,
		Results: &count,
		Data:    data,
	}
}

// NewFailResponse reports a client fault (4xx).
func NewFailResponse(message string) *Response {
	return &Response{
		Status:  StatusFail,
		Message: message,
	}
}

// NewErrorResponse reports a server fault (5xx).
func NewErrorResponse(message string) *Response {
	return &Response{
		Status:  StatusError,
		Message: message,
	}
}
