package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	wrapped := fmt.Errorf("accept proposal: %w", Conflict("proposal already accepted"))
	assert.Equal(t, KindConflict, KindOf(wrapped))
	assert.True(t, Is(wrapped, KindConflict))

	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
	assert.False(t, Is(nil, KindInternal))
}

func TestHTTPStatus(t *testing.T) {
	cases := map[Kind]int{
		KindValidation:   http.StatusBadRequest,
		KindInvalidState: http.StatusBadRequest,
		KindUnauthorized: http.StatusUnauthorized,
		KindForbidden:    http.StatusForbidden,
		KindNotFound:     http.StatusNotFound,
		KindConflict:     http.StatusConflict,
		KindInternal:     http.StatusInternalServerError,
	}
	for kind, status := range cases {
		assert.Equal(t, status, kind.HTTPStatus(), kind.String())
	}
}

func TestWrapUnwrap(t *testing.T) {
	cause := errors.New("connection reset")
	err := Internal("failed to load solicitation", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "failed to load solicitation: connection reset", err.Error())
}

func TestValidationFields(t *testing.T) {
	err := Validation("missing fields", "title", "category_id")
	assert.Equal(t, []string{"title", "category_id"}, err.Fields)
	assert.Equal(t, KindValidation, err.Kind)
}
