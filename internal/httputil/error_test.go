package httputil

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/AdamBeresnev/op-shuffle/internal/bracket"
	"github.com/AdamBeresnev/op-shuffle/internal/event"
	"github.com/AdamBeresnev/op-shuffle/internal/team"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_StatusMapping(t *testing.T) {
	testCases := []struct {
		name     string
		err      error
		expected int
	}{
		{name: "not found", err: fmt.Errorf("event %q: %w", "x", sql.ErrNoRows), expected: http.StatusNotFound},
		{name: "champion missing", err: bracket.ErrChampionNotFound, expected: http.StatusNotFound},
		{name: "insufficient", err: fmt.Errorf("form: %w", team.ErrInsufficientPlayers), expected: http.StatusBadRequest},
		{name: "invalid winner", err: bracket.ErrInvalidWinner, expected: http.StatusBadRequest},
		{name: "in progress", err: bracket.ErrAlreadyInProgress, expected: http.StatusBadRequest},
		{name: "duplicate", err: event.ErrAlreadyRegistered, expected: http.StatusConflict},
		{name: "bracket exists", err: bracket.ErrBracketExists, expected: http.StatusConflict},
		{name: "banned", err: event.ErrPlayerBanned, expected: http.StatusForbidden},
		{name: "closed", err: event.ErrEventClosed, expected: http.StatusForbidden},
		{name: "unknown", err: errors.New("disk on fire"), expected: http.StatusInternalServerError},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			Error(rec, "request failed", tc.err)

			assert.Equal(t, tc.expected, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var body errorBody
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.NotEmpty(t, body.Error)
		})
	}
}

func TestInternalServerError_HidesDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	InternalServerError(rec, "failed", errors.New("secret dsn"))

	assert.NotContains(t, rec.Body.String(), "secret")
}
