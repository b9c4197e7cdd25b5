package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{Validation("missing userId"), http.StatusBadRequest},
		{NotFound("Post not found"), http.StatusNotFound},
		{Forbidden("Unauthorized to delete this post"), http.StatusForbidden},
		{Upstream("AI request failed", errors.New("502")), http.StatusInternalServerError},
		{Internal("find post", errors.New("socket closed")), http.StatusInternalServerError},
		{errors.New("plain"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.status, Status(tc.err), tc.err.Error())
	}
}

func TestKindSurvivesWrapping(t *testing.T) {
	err := fmt.Errorf("toggle like: %w", NotFound("Post not found"))
	assert.True(t, Is(err, KindNotFound))
	assert.Equal(t, "Post not found", Message(err))
}

func TestInternalMessageIsGeneric(t *testing.T) {
	err := Internal("decode posts", errors.New("cursor failure"))
	assert.Equal(t, "Server error", Message(err))
	assert.Contains(t, err.Error(), "cursor failure")
}
