package apperrors

import "net/http"

var (
	ErrInvalidInput         = New("invalid input").SetStatusCode(http.StatusBadRequest)
	ErrConflict             = New("conflict").SetStatusCode(http.StatusConflict)
	ErrNotFound             = New("not found").SetStatusCode(http.StatusNotFound)
	ErrInvalidOperation     = New("invalid operation").SetStatusCode(http.StatusBadRequest)
	ErrStorageUnavailable   = New("storage unavailable").SetStatusCode(http.StatusServiceUnavailable)
	ErrNoWorkspaceAvailable = New("no workspace available").SetStatusCode(http.StatusInternalServerError)
)
