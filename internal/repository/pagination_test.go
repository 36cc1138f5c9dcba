package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolvePage(t *testing.T) {
	testCases := []struct {
		name     string
		req      PageRequest
		total    int64
		number   int
		numPages int
		err      error
	}{
		{"empty listing has a first page", PageRequest{Number: 1, Size: 10}, 0, 1, 1, nil},
		{"exact multiple", PageRequest{Number: 2, Size: 10}, 20, 2, 2, nil},
		{"partial last page", PageRequest{Number: 3, Size: 10}, 21, 3, 3, nil},
		{"last keyword", PageRequest{Last: true, Size: 10}, 21, 3, 3, nil},
		{"last of empty", PageRequest{Last: true, Size: 10}, 0, 1, 1, nil},
		{"beyond the end", PageRequest{Number: 4, Size: 10}, 21, 0, 0, ErrPageOutOfRange},
		{"second page of empty", PageRequest{Number: 2, Size: 10}, 0, 0, 0, ErrPageOutOfRange},
		{"zero page", PageRequest{Number: 0, Size: 10}, 5, 0, 0, ErrPageOutOfRange},
		{"bad size", PageRequest{Number: 1, Size: 0}, 5, 0, 0, ErrInvalidInput},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			page, err := resolvePage(tc.req, tc.total)
			if tc.err != nil {
				assert.ErrorIs(t, err, tc.err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tc.number, page.Number)
			assert.Equal(t, tc.numPages, page.NumPages)
		})
	}
}

func TestPageNavigation(t *testing.T) {
	page := Page{Number: 2, NumPages: 3, Size: 10, Total: 25}

	assert.True(t, page.HasPrevious())
	assert.True(t, page.HasNext())
	assert.Equal(t, 1, page.PreviousNumber())
	assert.Equal(t, 3, page.NextNumber())
	assert.Equal(t, 10, page.Offset())

	last := Page{Number: 3, NumPages: 3, Size: 10}
	assert.False(t, last.HasNext())
}
