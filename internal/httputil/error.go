package httputil

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/AdamBeresnev/op-shuffle/internal/bracket"
	"github.com/AdamBeresnev/op-shuffle/internal/event"
	"github.com/AdamBeresnev/op-shuffle/internal/service"
	"github.com/AdamBeresnev/op-shuffle/internal/team"
)

type errorBody struct {
	Error string `json:"error"`
}

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func InternalServerError(w http.ResponseWriter, msg string, err error) {
	slog.Error(msg, "error", err)
	JSON(w, http.StatusInternalServerError, errorBody{Error: "Internal Server Error"})
}

func BadRequest(w http.ResponseWriter, msg string, err error) {
	if err != nil {
		slog.Warn("bad request", "message", msg, "error", err)
	} else {
		slog.Warn("bad request", "message", msg)
	}
	JSON(w, http.StatusBadRequest, errorBody{Error: msg})
}

func NotFound(w http.ResponseWriter, msg string, err error) {
	if err != nil {
		slog.Warn("not found", "message", msg, "error", err)
	} else {
		slog.Warn("not found", "message", msg)
	}
	JSON(w, http.StatusNotFound, errorBody{Error: msg})
}

func Conflict(w http.ResponseWriter, msg string, err error) {
	if err != nil {
		slog.Warn("conflict", "message", msg, "error", err)
	} else {
		slog.Warn("conflict", "message", msg)
	}
	JSON(w, http.StatusConflict, errorBody{Error: msg})
}

func Forbidden(w http.ResponseWriter, msg string, err error) {
	slog.Warn("forbidden", "message", msg, "error", err)
	JSON(w, http.StatusForbidden, errorBody{Error: msg})
}

var (
	badRequest = []error{
		event.ErrInvalid,
		event.ErrNoRoles,
		team.ErrInsufficientPlayers,
		bracket.ErrMinimumTeamsNotMet,
		bracket.ErrInvalidWinner,
		bracket.ErrAlreadyInProgress,
	}
	conflict = []error{
		event.ErrAlreadyRegistered,
		bracket.ErrBracketExists,
		service.ErrConflict,
	}
	forbidden = []error{
		event.ErrEventClosed,
		event.ErrEventFull,
		event.ErrPlayerBanned,
	}
)

// Error writes the response matching err's sentinel, falling back to 500.
func Error(w http.ResponseWriter, msg string, err error) {
	switch {
	case errors.Is(err, sql.ErrNoRows):
		NotFound(w, msg+": not found", err)
	case errors.Is(err, bracket.ErrChampionNotFound):
		slog.Error("data integrity violation", "message", msg, "error", err)
		JSON(w, http.StatusNotFound, errorBody{Error: err.Error()})
	case isAny(err, badRequest):
		BadRequest(w, err.Error(), err)
	case isAny(err, conflict):
		Conflict(w, err.Error(), err)
	case isAny(err, forbidden):
		Forbidden(w, err.Error(), err)
	default:
		InternalServerError(w, msg, err)
	}
}

func isAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
