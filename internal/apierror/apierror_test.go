package apierror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPStatusByKind(t *testing.T) {
	cases := []struct {
		err  *Error
		want int
	}{
		{NotFound("SkuNotFound", "missing"), http.StatusNotFound},
		{Validation("InvalidSkuCode", "bad"), http.StatusUnprocessableEntity},
		{Conflict("DuplicateSkuCode", "dup"), http.StatusConflict},
		{Invariant("LotCompleted", "frozen"), http.StatusConflict},
		{Dependency("HasDescendants", "blocked"), http.StatusConflict},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, tc.err.HTTPStatus(), tc.err.Code)
	}
}

func TestCodeOfUnwraps(t *testing.T) {
	err := fmt.Errorf("saving lot: %w", Conflict("DuplicateLotNumber", "lot %q exists", "L-1"))
	assert.Equal(t, "DuplicateLotNumber", CodeOf(err))
	assert.Equal(t, "", CodeOf(errors.New("plain")))

	e, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, KindConflict, e.Kind)
	assert.Equal(t, `lot "L-1" exists`, e.Error())
}
