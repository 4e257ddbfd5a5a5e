package config

import (
	"fmt"
	"strings"
)

// Section describes one remote host, its credentials and its shares.
type Section struct {
	// Name is the INI section name, unique within a file
	Name string

	IP       string
	Username string
	Password string

	// Shares in file order
	Shares []string

	// Letters holds preferred drive letters aligned with Shares.
	// An empty entry, or a missing one, means no preference.
	Letters []string

	// missing lists required fields that are empty
	missing []string

	// problems lists values that are set but unusable
	problems []string
}

// IsMountReady reports whether ip, username, password and shares are all set.
func (s Section) IsMountReady() bool {
	return len(s.missing) == 0
}

// MissingFields returns the names of required keys that are empty.
func (s Section) MissingFields() []string {
	return append([]string(nil), s.missing...)
}

// Problems returns validation messages for values that are set but unusable,
// such as an invalid preferred letter.
func (s Section) Problems() []string {
	return append([]string(nil), s.problems...)
}

// Share returns the share name at index i.
func (s Section) Share(i int) (string, error) {
	if i < 0 || i >= len(s.Shares) {
		return "", fmt.Errorf("share index %d out of range for section %s (%d shares)", i, s.Name, len(s.Shares))
	}
	return s.Shares[i], nil
}

// ShareIndex returns the index of the named share, or -1.
func (s Section) ShareIndex(share string) int {
	for i, name := range s.Shares {
		if strings.EqualFold(name, share) {
			return i
		}
	}
	return -1
}

// PreferredLetter returns the preferred drive letter for share index i, or
// "" when none is configured.
func (s Section) PreferredLetter(i int) string {
	if i < 0 || i >= len(s.Letters) {
		return ""
	}
	return s.Letters[i]
}

// Summary formats the section for a notification:
//
//	IP: 192.168.1.10 - [NAS]
//	Username: bob
//	Shares: [J]: docs, [None]: media
func (s Section) Summary() string {
	pairs := make([]string, 0, len(s.Shares))
	for i, share := range s.Shares {
		letter := s.PreferredLetter(i)
		if letter == "" {
			letter = "None"
		}
		pairs = append(pairs, fmt.Sprintf("[%s]: %s", letter, share))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "IP: %s - [%s]\n", s.IP, s.Name)
	fmt.Fprintf(&b, "Username: %s\n", s.Username)
	fmt.Fprintf(&b, "Shares: %s\n", strings.Join(pairs, ", "))
	return b.String()
}
