package utils

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRedactSecret(t *testing.T) {
	tests := []struct {
		name   string
		msg    string
		secret string
		want   string
	}{
		{
			name:   "secret in command line",
			msg:    `net use K: \\192.168.1.10\media /user:bob pw123`,
			secret: "pw123",
			want:   `net use K: \\192.168.1.10\media /user:bob [REDACTED]`,
		},
		{
			name:   "multiple occurrences",
			msg:    "s3cr s3cr",
			secret: "s3cr",
			want:   "[REDACTED] [REDACTED]",
		},
		{
			name:   "short secret leaves ordinary text untouched",
			msg:    "The command completed successfully.",
			secret: "e",
			want:   "The command completed successfully.",
		},
		{
			name:   "empty secret leaves message untouched",
			msg:    "System error 53 has occurred.",
			secret: "",
			want:   "System error 53 has occurred.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RedactSecret(tt.msg, tt.secret))
		})
	}
}

func TestRedactArgs(t *testing.T) {
	args := []string{"use", "K:", `\\nas\media`, "/user:bob", "hunter2"}
	redacted := RedactArgs(args, "hunter2")

	assert.Equal(t, []string{"use", "K:", `\\nas\media`, "/user:bob", Redacted}, redacted)
	assert.Equal(t, "hunter2", args[4], "input slice must not be modified")
}

func TestSentinelErrorsWrap(t *testing.T) {
	err := fmt.Errorf("section NAS: %w", ErrSectionNotReady)
	assert.True(t, errors.Is(err, ErrSectionNotReady))
	assert.False(t, errors.Is(err, ErrSectionNotFound))
}

func TestRedactArgs_ShortSecret(t *testing.T) {
	args := []string{"use", "K:", `\nas\media`, "/user:e", "e"}

	redacted := RedactArgs(args, "e")

	assert.Equal(t, []string{"use", "K:", `\nas\media`, "/user:e", Redacted}, redacted)
}
