package utils

import (
	"errors"
	"strings"
	"unicode/utf8"
)

// Sentinel errors for common conditions.
// Use errors.Is() to check for these rather than string matching.
var (
	// ErrConfigNotFound indicates the configuration file does not exist
	ErrConfigNotFound = errors.New("config file not found")

	// ErrSectionNotFound indicates the requested config section does not exist
	ErrSectionNotFound = errors.New("section not found")

	// ErrSectionNotReady indicates a section is missing required fields
	ErrSectionNotReady = errors.New("section not configured")

	// ErrInvalidParameter indicates an invalid parameter was provided
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrMountFailed indicates a mount operation failed
	ErrMountFailed = errors.New("mount failed")

	// ErrUnmountFailed indicates an unmount operation failed
	ErrUnmountFailed = errors.New("unmount failed")

	// ErrNoFreeLetter indicates every drive letter from C to Z is in use
	ErrNoFreeLetter = errors.New("no free drive letter")

	// ErrUnsupportedPlatform indicates the operation needs Windows
	ErrUnsupportedPlatform = errors.New("unsupported platform")
)

// Redacted replaces secrets in log lines and user-facing messages.
const Redacted = "[REDACTED]"

// MinRedactLength is the shortest secret RedactSecret searches for inside
// free text. Shorter secrets would match ordinary words.
const MinRedactLength = 4

// RedactSecret removes every occurrence of secret from msg.
// An empty secret, or one shorter than MinRedactLength, leaves msg untouched.
func RedactSecret(msg, secret string) string {
	if utf8.RuneCountInString(secret) < MinRedactLength {
		return msg
	}
	return strings.ReplaceAll(msg, secret, Redacted)
}

// RedactArgs returns a copy of args for logging a command line. An argument
// equal to secret is replaced whatever its length; longer secrets are also
// redacted inside other arguments.
func RedactArgs(args []string, secret string) []string {
	out := make([]string, len(args))
	for i, arg := range args {
		if secret != "" && arg == secret {
			out[i] = Redacted
			continue
		}
		out[i] = RedactSecret(arg, secret)
	}
	return out
}
