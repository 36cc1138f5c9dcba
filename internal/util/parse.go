package util

import (
	"errors"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/zfogg/blogicum/internal/repository"
)

// DateTimeLocalLayout is the format of an HTML datetime-local input
const DateTimeLocalLayout = "2006-01-02T15:04"

var ErrInvalidID = errors.New("invalid id")

// ParseID parses a positive integer path parameter
func ParseID(s string) (uint, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil || id == 0 {
		return 0, ErrInvalidID
	}
	return uint(id), nil
}

// ParsePage parses the ?page= query value. Empty means page 1; "last" asks
// for the final page. Anything else that is not a positive integer is out of range.
func ParsePage(s string, size int) (repository.PageRequest, error) {
	s = strings.TrimSpace(s)
	switch s {
	case "":
		return repository.FirstPage(size), nil
	case "last":
		return repository.PageRequest{Last: true, Size: size}, nil
	}

	number, err := strconv.Atoi(s)
	if err != nil || number < 1 {
		return repository.PageRequest{}, repository.ErrPageOutOfRange
	}
	return repository.PageRequest{Number: number, Size: size}, nil
}

// ParseDateTimeLocal parses a datetime-local form value in loc
func ParseDateTimeLocal(s string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(DateTimeLocalLayout, strings.TrimSpace(s), loc)
}

// SafeNextURL returns next if it is a local path, otherwise fallback
func SafeNextURL(next, fallback string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return fallback
	}
	u, err := url.Parse(next)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return fallback
	}
	return next
}
