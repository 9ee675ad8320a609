package server

import (
	"encoding/json"
	"errors"
	"net/http"

	werrors "github.com/matzehuels/wiring/pkg/errors"
	"github.com/matzehuels/wiring/pkg/wiring"
)

// Error is the JSON error body.
type Error struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
	// Diagnostic is set when a strict build aborted.
	Diagnostic *wiring.Diagnostic `json:"diagnostic,omitempty"`
	// Prior lists the advisory findings recorded before the abort.
	Prior wiring.Diagnostics `json:"prior,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		//nolint:errcheck // connection may be gone
		json.NewEncoder(w).Encode(v)
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, Error{Status: status, Code: code, Message: message})
}

// writeErr maps err to a status through its error code.
func writeErr(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeError(w, http.StatusRequestEntityTooLarge, "BODY_TOO_LARGE", "request body too large")
		return
	}

	status := werrors.HTTPStatus(err)
	body := Error{
		Status:  status,
		Code:    string(werrors.GetCode(err)),
		Message: werrors.UserMessage(err),
	}
	if body.Code == "" {
		body.Code = string(werrors.ErrCodeInternal)
	}
	var fatal *wiring.FatalError
	if errors.As(err, &fatal) {
		body.Message = fatal.Diagnostic.String()
		body.Diagnostic = &fatal.Diagnostic
		body.Prior = fatal.Prior
	}
	writeJSON(w, status, body)
}
