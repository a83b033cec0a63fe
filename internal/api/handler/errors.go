package handler

import (
	"net/http"

	"github.com/guessparty/guessparty-go/internal/api/apierr"
)

// Re-export from apierr for convenience
type APIError = apierr.APIError
type ErrorResponse = apierr.ErrorResponse

// Re-export error codes
const (
	CodeInvalidRequest      = apierr.CodeInvalidRequest
	CodeInvalidNickname     = apierr.CodeInvalidNickname
	CodeNotHost             = apierr.CodeNotHost
	CodePlayerNotFound      = apierr.CodePlayerNotFound
	CodeLobbyNotFound       = apierr.CodeLobbyNotFound
	CodeGameNotFound        = apierr.CodeGameNotFound
	CodeNotInLobby          = apierr.CodeNotInLobby
	CodeGameInProgress      = apierr.CodeGameInProgress
	CodeNoGameInProgress    = apierr.CodeNoGameInProgress
	CodeInsufficientPlayers = apierr.CodeInsufficientPlayers
	CodeWrongRound          = apierr.CodeWrongRound
	CodeWrongPhase          = apierr.CodeWrongPhase
	CodeNotHotseat          = apierr.CodeNotHotseat
	CodeInvalidTarget       = apierr.CodeInvalidTarget
	CodeInternalError       = apierr.CodeInternalError
)

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	apierr.WriteError(w, err)
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return apierr.NewInvalidRequestError(message)
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return apierr.NewInternalError()
}
