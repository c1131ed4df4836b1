package util

import (
	"errors"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToDomainErrorPassthrough(t *testing.T) {
	original := NewConflict("request already rated", map[string]any{"request_id": "req-1"})
	converted := ToDomainError(original)
	assert.Equal(t, "CONFLICT", converted.Code)
	assert.Equal(t, http.StatusConflict, converted.HTTPStatus)
	assert.Equal(t, "req-1", converted.Details["request_id"])
}

func TestToDomainErrorMapsNoRows(t *testing.T) {
	converted := ToDomainError(pgx.ErrNoRows)
	assert.Equal(t, "NOT_FOUND", converted.Code)
	assert.Equal(t, http.StatusNotFound, converted.HTTPStatus)
}

func TestToDomainErrorWrapsUnknown(t *testing.T) {
	cause := errors.New("connection reset")
	converted := ToDomainError(cause)
	assert.Equal(t, "INTERNAL_ERROR", converted.Code)
	assert.Equal(t, http.StatusInternalServerError, converted.HTTPStatus)
	assert.ErrorIs(t, converted, cause)
}

func TestMapErrorNil(t *testing.T) {
	// A nil input must yield a nil interface, not a typed nil.
	require.NoError(t, MapError(nil))
	assert.Error(t, MapError(errors.New("boom")))
}

func TestDomainErrorUnwrap(t *testing.T) {
	cause := errors.New("boom")
	wrapped := NewInternalError(cause)
	assert.ErrorIs(t, wrapped, cause)
}
