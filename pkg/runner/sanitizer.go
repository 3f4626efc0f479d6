package runner

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// DefaultMaxResponseSize bounds a single response, in bytes.
	DefaultMaxResponseSize = 4096
	// EnvMaxResponseSize overrides DefaultMaxResponseSize.
	EnvMaxResponseSize = "GIVEAIBREAK_MAX_RESPONSE_SIZE"
)

var (
	ErrResponseTooLarge = errors.New("response exceeds maximum allowed size")
	ErrInvalidUTF8      = errors.New("response contains invalid UTF-8 sequences")
)

// SanitizeInput cleans a user response before it is scored or stored.
// Oversized or invalid input is rejected rather than truncated; terminal
// control characters other than newline, tab and carriage return are removed.
func SanitizeInput(input string) (string, error) {
	return SanitizeWithLimit(input, maxResponseSize())
}

// SanitizeWithLimit is SanitizeInput with an explicit byte limit.
func SanitizeWithLimit(input string, limit int) (string, error) {
	if len(input) > limit {
		return "", fmt.Errorf("%w: size=%d limit=%d", ErrResponseTooLarge, len(input), limit)
	}
	if !utf8.ValidString(input) {
		return "", ErrInvalidUTF8
	}
	if strings.IndexFunc(input, unsafeControl) < 0 {
		return input, nil
	}

	var b strings.Builder
	b.Grow(len(input))
	for _, r := range input {
		if !unsafeControl(r) {
			b.WriteRune(r)
		}
	}
	return b.String(), nil
}

func unsafeControl(r rune) bool {
	return unicode.IsControl(r) && r != '\n' && r != '\t' && r != '\r'
}

func maxResponseSize() int {
	if val := os.Getenv(EnvMaxResponseSize); val != "" {
		if size, err := strconv.Atoi(val); err == nil && size > 0 {
			return size
		}
	}
	return DefaultMaxResponseSize
}
