package util

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apperrors "github.com/zfogg/blogicum/internal/errors"
	"github.com/zfogg/blogicum/internal/repository"
)

func TestParseID(t *testing.T) {
	id, err := ParseID("42")
	require.NoError(t, err)
	assert.Equal(t, uint(42), id)

	for _, bad := range []string{"", "0", "-1", "abc", "1.5"} {
		_, err := ParseID(bad)
		assert.ErrorIs(t, err, ErrInvalidID, bad)
	}
}

func TestParsePage(t *testing.T) {
	req, err := ParsePage("", 10)
	require.NoError(t, err)
	assert.Equal(t, 1, req.Number)

	req, err = ParsePage("3", 10)
	require.NoError(t, err)
	assert.Equal(t, 3, req.Number)
	assert.Equal(t, 10, req.Size)

	req, err = ParsePage("last", 10)
	require.NoError(t, err)
	assert.True(t, req.Last)

	for _, bad := range []string{"0", "-2", "two", "1e3"} {
		_, err := ParsePage(bad, 10)
		assert.ErrorIs(t, err, repository.ErrPageOutOfRange, bad)
	}
}

func TestParseDateTimeLocal(t *testing.T) {
	got, err := ParseDateTimeLocal("2024-05-01T13:45", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 5, 1, 13, 45, 0, 0, time.UTC), got)

	_, err = ParseDateTimeLocal("01/05/2024", time.UTC)
	assert.Error(t, err)
}

func TestSafeNextURL(t *testing.T) {
	testCases := []struct {
		next     string
		expected string
	}{
		{"/posts/create/", "/posts/create/"},
		{"/posts/1/edit/?x=1", "/posts/1/edit/?x=1"},
		{"", "/"},
		{"https://evil.example.com/", "/"},
		{"//evil.example.com/", "/"},
		{"/\\evil.example.com", "/"},
		{"javascript:alert(1)", "/"},
	}

	for _, tc := range testCases {
		t.Run(tc.next, func(t *testing.T) {
			assert.Equal(t, tc.expected, SafeNextURL(tc.next, "/"))
		})
	}
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, IsNotFound(repository.ErrPostNotFound))
	assert.True(t, IsNotFound(fmt.Errorf("wrapped: %w", repository.ErrCategoryNotFound)))
	assert.False(t, IsNotFound(fmt.Errorf("boom")))
	assert.False(t, IsNotFound(nil))
}

func TestTemplateFor(t *testing.T) {
	assert.Equal(t, NotFoundTemplate, templateFor(apperrors.NotFound("post")))
	assert.Equal(t, CSRFTemplate, templateFor(apperrors.CSRFFailure("missing")))
	assert.Equal(t, ServerTemplate, templateFor(apperrors.InternalError("x")))
	assert.Equal(t, GenericTemplate, templateFor(apperrors.RateLimited("")))
}

func TestTextHelpers(t *testing.T) {
	assert.Equal(t, "one two …", TruncateWords("one two three", 2))
	assert.Equal(t, "one two", TruncateWords("one  two", 5))
	assert.Equal(t, "При…", TruncateChars("Привет", 3))
	assert.Equal(t, []string{"first", "second\nline"}, Paragraphs("first\r\n\r\nsecond\nline\n\n\n"))
}
