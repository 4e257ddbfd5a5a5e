package utils

import (
	"fmt"
	"net"
	"regexp"
	"strings"
)

// Characters that net use would reinterpret or that never appear in a valid
// share or host name.
var dangerousCharacters = []string{
	"/",    // Switch prefix (/user:, /delete)
	"\\",   // UNC separator
	"\"",   // Quoting
	"*",    // Wildcard (net use * means "next free letter")
	"?",    // Wildcard
	"<",    // Redirection
	">",    // Redirection
	"|",    // Pipe
	"\n",   // Newline
	"\r",   // Carriage return
	"\t",   // Tab
	"\x00", // Null byte
}

// hostnamePattern matches a single label or dotted FQDN. Labels may carry
// underscores since NetBIOS names such as MY_NAS allow them.
var hostnamePattern = regexp.MustCompile(`^[A-Za-z0-9_]([A-Za-z0-9_\-]{0,61}[A-Za-z0-9_])?(\.[A-Za-z0-9_]([A-Za-z0-9_\-]{0,61}[A-Za-z0-9_])?)*$`)

// ValidateShareName validates that a share name is safe to embed in a UNC path
func ValidateShareName(share string) error {
	if share == "" {
		return fmt.Errorf("%w: share name cannot be empty", ErrInvalidParameter)
	}
	for _, char := range dangerousCharacters {
		if strings.Contains(share, char) {
			return fmt.Errorf("%w: share name contains dangerous character %q: %s", ErrInvalidParameter, char, share)
		}
	}
	return nil
}

// ValidateHost validates that host is an IP address or a hostname
func ValidateHost(host string) error {
	if host == "" {
		return fmt.Errorf("%w: host cannot be empty", ErrInvalidParameter)
	}
	if net.ParseIP(host) != nil {
		return nil
	}
	if !hostnamePattern.MatchString(host) {
		return fmt.Errorf("%w: invalid host %q: must be an IP address or hostname", ErrInvalidParameter, host)
	}
	return nil
}

// NormalizeDriveLetter upper-cases a letter and strips a trailing colon,
// so "k", "K:" and " K " all become "K".
func NormalizeDriveLetter(letter string) string {
	letter = strings.TrimSpace(letter)
	letter = strings.TrimSuffix(letter, ":")
	return strings.ToUpper(letter)
}

// ValidateDriveLetter validates a normalized drive letter.
// A and B are reserved for floppy drives and are rejected.
func ValidateDriveLetter(letter string) error {
	if len(letter) != 1 || letter[0] < 'A' || letter[0] > 'Z' {
		return fmt.Errorf("%w: invalid drive letter %q", ErrInvalidParameter, letter)
	}
	if letter == "A" || letter == "B" {
		return fmt.Errorf("%w: drive letter %s is reserved", ErrInvalidParameter, letter)
	}
	return nil
}

// ValidateCommandArg rejects values that net use would parse as a switch
// when passed as a positional argument (usernames and passwords).
func ValidateCommandArg(name, value string) error {
	if strings.HasPrefix(value, "/") {
		return fmt.Errorf("%w: %s must not start with '/'", ErrInvalidParameter, name)
	}
	if strings.ContainsAny(value, "\r\n\x00") {
		return fmt.Errorf("%w: %s contains control characters", ErrInvalidParameter, name)
	}
	return nil
}
