package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatusMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{NotFound("x"), http.StatusNotFound},
		{Validation("x"), http.StatusBadRequest},
		{Unauthorized("x"), http.StatusUnauthorized},
		{AccessDenied("x"), http.StatusForbidden},
		{Conflict("x"), http.StatusConflict},
		{errors.New("boom"), http.StatusInternalServerError},
		{nil, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, HTTPStatus(tc.err))
	}
}

func TestWrappedErrorsKeepTheirKind(t *testing.T) {
	inner := Wrap(KindConflict, "slot taken", errors.New("1062"))
	outer := fmt.Errorf("booking: %w", inner)

	assert.Equal(t, KindConflict, KindOf(outer))
	assert.Equal(t, http.StatusConflict, HTTPStatus(outer))
	assert.Equal(t, "slot taken", Message(outer))
}

func TestMessageHidesUnknownErrors(t *testing.T) {
	assert.Equal(t, "internal server error", Message(errors.New("sql: table missing")))
	assert.Equal(t, "theme not found", Message(NotFound("theme not found")))
}
