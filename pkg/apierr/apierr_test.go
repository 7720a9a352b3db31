package apierr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConstructorsCarryStatus(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, Validation("bad").Status)
	assert.Equal(t, http.StatusNotFound, NotFound("missing").Status)
	assert.Equal(t, http.StatusBadRequest, AuthenticationFailed("nope").Status)
	assert.Equal(t, http.StatusUnauthorized, InvalidCredential("nope").Status)
	assert.Equal(t, http.StatusUnauthorized, AccountBlocked("blocked").Status)
	assert.Equal(t, http.StatusBadRequest, EmailNotVerified("unverified").Status)
}

func TestFromUnwrapsAPIErrors(t *testing.T) {
	wrapped := fmt.Errorf("handling request: %w", NotFound("category not found"))
	got := From(wrapped)
	assert.Equal(t, http.StatusNotFound, got.Status)
	assert.Equal(t, "category not found", got.Message)
}

func TestFromMasksInternalErrors(t *testing.T) {
	got := From(errors.New("pq: connection refused"))
	assert.Equal(t, http.StatusInternalServerError, got.Status)
	assert.Equal(t, "internal server error", got.Message)
}
