package mount

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"k8s.io/klog/v2"
)

// Connection is one row of the net use table
type Connection struct {
	// Status is the first column (OK, Unavailable, Disconnected, ...), may be empty
	Status string

	// Letter is the local drive letter without colon, empty for deviceless connections
	Letter string

	// Remote is the UNC path as printed, e.g. \\192.168.1.10\media
	Remote string

	// Host and Share are the first two components of Remote
	Host  string
	Share string
}

// Table queries the current network connections.
// Results are snapshots; other processes may change the table at any time.
type Table interface {
	Connections(ctx context.Context) ([]Connection, error)
}

// NetUseTable reads connections by parsing net use output
type NetUseTable struct {
	runner Runner
	logger klog.Logger
}

// NewNetUseTable creates a Table that lists connections through runner
func NewNetUseTable(logger klog.Logger, runner Runner) *NetUseTable {
	return &NetUseTable{
		runner: runner,
		logger: klog.LoggerWithName(logger, "table"),
	}
}

// Connections runs net use and parses its output
func (t *NetUseTable) Connections(ctx context.Context) ([]Connection, error) {
	out := t.runner.List(ctx)
	if out.Classify() == StatusFailure {
		return nil, fmt.Errorf("failed to list network connections: %s", strings.TrimSpace(out.Stderr))
	}

	conns := ParseNetUse(out.Stdout)
	t.logger.V(4).Info("Listed network connections", "count", len(conns))
	return conns, nil
}

// Header and footer lines of net use output
var ignoredPrefixes = []string{
	"New connections",
	"Status",
	"-------",
	"The command",
	"There are no entries",
}

// ParseNetUse parses the output of net use.
//
// Example:
//
//	New connections will be remembered.
//
//	Status       Local     Remote                    Network
//	-------------------------------------------------------------------------------
//	OK           Z:        \\192.168.1.6\downloads   Microsoft Windows Network
//	OK                     \\192.168.1.6\IPC$        Microsoft Windows Network
//	The command completed successfully.
//
// Rows without a \\host\share token (including the continuation line net use
// prints when a long remote path wraps) are skipped. The remote column runs to
// the next run of two spaces or to the network provider name, so share names
// may contain single spaces.
func ParseNetUse(output string) []Connection {
	var conns []Connection

	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" || hasIgnoredPrefix(line) {
			continue
		}

		conn, ok := parseNetUseLine(line)
		if !ok {
			continue
		}
		conns = append(conns, conn)
	}

	return conns
}

func hasIgnoredPrefix(line string) bool {
	for _, prefix := range ignoredPrefixes {
		if strings.HasPrefix(line, prefix) {
			return true
		}
	}
	return false
}

// Network provider names net use prints after the remote column
var networkProviders = []string{
	"Microsoft Windows Network",
	"Web Client Network",
}

// parseNetUseLine extracts status, letter and UNC path from one row
func parseNetUseLine(line string) (Connection, bool) {
	uncStart := strings.Index(line, `\\`)
	if uncStart == -1 {
		return Connection{}, false
	}

	remote := remoteColumn(line[uncStart:])
	host, share, ok := splitUNC(remote)
	if !ok {
		return Connection{}, false
	}

	conn := Connection{
		Remote: remote,
		Host:   host,
		Share:  share,
	}
	for _, field := range strings.Fields(line[:uncStart]) {
		if isDriveToken(field) {
			conn.Letter = strings.ToUpper(field[:1])
		} else if conn.Letter == "" && conn.Status == "" {
			conn.Status = field
		}
	}

	return conn, true
}

// remoteColumn cuts the UNC path off the rest of the row. A remote wider than
// its column is followed by a single space and the provider name.
func remoteColumn(rest string) string {
	if end := strings.Index(rest, "  "); end != -1 {
		rest = rest[:end]
	}
	rest = strings.TrimSpace(rest)
	for _, provider := range networkProviders {
		if trimmed, found := strings.CutSuffix(rest, " "+provider); found {
			return strings.TrimSpace(trimmed)
		}
	}
	return rest
}

// splitUNC splits \\host\share[\more] into host and share
func splitUNC(path string) (string, string, bool) {
	parts := strings.Split(strings.TrimPrefix(path, `\\`), `\`)
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}

// isDriveToken matches "K:"
func isDriveToken(field string) bool {
	if len(field) != 2 || field[1] != ':' {
		return false
	}
	c := field[0]
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}

// FindShare returns the lettered connection to \\host\share, if any.
// UNC names are case-insensitive.
func FindShare(conns []Connection, host, share string) (Connection, bool) {
	for _, c := range conns {
		if c.Letter != "" && strings.EqualFold(c.Host, host) && strings.EqualFold(c.Share, share) {
			return c, true
		}
	}
	return Connection{}, false
}

// FindLetter returns the connection mapped to letter, if any
func FindLetter(conns []Connection, letter string) (Connection, bool) {
	for _, c := range conns {
		if c.Letter != "" && strings.EqualFold(c.Letter, letter) {
			return c, true
		}
	}
	return Connection{}, false
}

// LettersForHost returns the letters mapped to host in table order
func LettersForHost(conns []Connection, host string) []string {
	var letters []string
	for _, c := range conns {
		if c.Letter != "" && strings.EqualFold(c.Host, host) {
			letters = append(letters, c.Letter)
		}
	}
	return letters
}

// MappedLetters returns every letter present in the table
func MappedLetters(conns []Connection) []string {
	var letters []string
	for _, c := range conns {
		if c.Letter != "" {
			letters = append(letters, c.Letter)
		}
	}
	return letters
}
