package web

// errors.go provides unified error response handling for the web layer.
//
// All errors pass through respondError, which logs the technical error with
// the request ID for correlation and returns a user-friendly JSON body.
// Structural parse failures get stable codes so clients can tell "fix the
// file" apart from "try again later".

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/asetfilter/asetfilter/internal/parser"
)

// ErrorResponse is the JSON structure for API error responses.
// Includes both machine-readable (Code) and human-readable (Message, Action)
// fields.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// userMessage is a client-safe rendering of an error.
type userMessage struct {
	Message string
	Action  string
	Code    string
}

// mapError converts a technical error to a user-friendly message.
// Unrecognized errors get a generic message so internals never leak.
func mapError(err error, statusCode int) userMessage {
	switch {
	case errors.Is(err, parser.ErrHeaderNotFound):
		return userMessage{
			Message: "File layout not recognized",
			Action:  "Check that the spreadsheet contains a header row with the expected column labels.",
			Code:    "HEADER_NOT_FOUND",
		}
	case errors.Is(err, parser.ErrNameColumnMissing):
		return userMessage{
			Message: "Required column missing",
			Action:  "The file must contain a 'Jenis Barang' or 'Nama Barang' column.",
			Code:    "NAME_COLUMN_MISSING",
		}
	}

	switch statusCode {
	case http.StatusBadRequest:
		return userMessage{
			Message: "Invalid request",
			Action:  "Check the request parameters and uploaded file, then try again.",
			Code:    "BAD_REQUEST",
		}
	case http.StatusRequestEntityTooLarge:
		return userMessage{
			Message: "File too large",
			Action:  "Upload a smaller file.",
			Code:    "FILE_TOO_LARGE",
		}
	default:
		return userMessage{
			Message: "Something went wrong",
			Action:  "Try again in a moment.",
			Code:    "INTERNAL_ERROR",
		}
	}
}

// respondError logs the technical error server-side and returns a
// user-friendly JSON response.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error, statusCode int) {
	userMsg := mapError(err, statusCode)

	slog.Error("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", statusCode,
		"error", err.Error(),
		"code", userMsg.Code,
		"request_id", middleware.GetReqID(r.Context()),
	)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error:   userMsg.Message,
		Message: userMsg.Message,
		Action:  userMsg.Action,
		Code:    userMsg.Code,
	})
}
