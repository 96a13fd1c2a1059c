package service

import "net/http"

// Error is a service failure that knows its HTTP status.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) StatusCode() int {
	return e.Status
}

var (
	ErrAccountNotFound     = &Error{Status: http.StatusUnauthorized, Message: "account not found"}
	ErrQuotaExceeded       = &Error{Status: http.StatusTooManyRequests, Message: "daily query quota exceeded"}
	ErrInvalidSignature    = &Error{Status: http.StatusForbidden, Message: "invalid signature"}
	ErrChargeNotFound      = &Error{Status: http.StatusNotFound, Message: "charge not found"}
	ErrUnsupportedFileType = &Error{Status: http.StatusBadRequest, Message: "unsupported file type, allowed: pdf, txt, md"}
	ErrFileTooLarge        = &Error{Status: http.StatusRequestEntityTooLarge, Message: "file exceeds the maximum upload size"}
	ErrNoFile              = &Error{Status: http.StatusBadRequest, Message: "no file part in the request"}
)
