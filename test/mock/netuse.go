package mock

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"git.srvlab.io/whiskey/attach-nas/pkg/mount"
)

// NetUse is an in-memory stand-in for the net command, the connection table
// and the logical drive query. It implements mount.Runner, mount.Table and
// mount.Drives over one shared state so mounts show up in later listings.
type NetUse struct {
	mu sync.RWMutex

	// Network connections in table order
	conns []mount.Connection

	// Letters used by local disks (C:, D:, ...)
	local []string

	// Output injection: a set entry replaces the simulated result
	mountOutput     map[string]*mount.CommandOutput
	unmountOutput   map[string]*mount.CommandOutput
	deleteAllOutput *mount.CommandOutput
	tableErr        error
	drivesErr       error

	// Call tracking
	mountCalls     []MountCall
	unmountCalls   []string
	listCalls      int
	deleteAllCalls int
}

// MountCall tracks a Mount invocation. Passwords are recorded so tests can
// check what would have reached net use.
type MountCall struct {
	Letter   string
	Host     string
	Share    string
	Username string
	Password string
}

var (
	_ mount.Runner = (*NetUse)(nil)
	_ mount.Table  = (*NetUse)(nil)
	_ mount.Drives = (*NetUse)(nil)
)

// NewNetUse creates a fake with the given local disk letters in use
func NewNetUse(localLetters ...string) *NetUse {
	return &NetUse{
		local:         append([]string(nil), localLetters...),
		mountOutput:   make(map[string]*mount.CommandOutput),
		unmountOutput: make(map[string]*mount.CommandOutput),
	}
}

// AddConnection seeds an existing connection. An empty letter adds a
// deviceless connection.
func (n *NetUse) AddConnection(letter, host, share string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.conns = append(n.conns, mount.Connection{
		Status: "OK",
		Letter: letter,
		Remote: mount.UNCPath(host, share),
		Host:   host,
		Share:  share,
	})
}

// SetMountOutput makes Mount on letter return out without mapping anything
func (n *NetUse) SetMountOutput(letter string, out mount.CommandOutput) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.mountOutput[letter] = &out
}

// SetUnmountOutput makes Unmount on letter return out without unmapping
func (n *NetUse) SetUnmountOutput(letter string, out mount.CommandOutput) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.unmountOutput[letter] = &out
}

// SetDeleteAllOutput makes DeleteAll return out without dropping anything
func (n *NetUse) SetDeleteAllOutput(out mount.CommandOutput) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.deleteAllOutput = &out
}

// SetTableError makes Connections fail
func (n *NetUse) SetTableError(err error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.tableErr = err
}

// SetDrivesError makes UsedLetters fail
func (n *NetUse) SetDrivesError(err error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.drivesErr = err
}

// Mount implements mount.Runner
func (n *NetUse) Mount(_ context.Context, letter, host, share, username, password string) mount.CommandOutput {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.mountCalls = append(n.mountCalls, MountCall{
		Letter:   letter,
		Host:     host,
		Share:    share,
		Username: username,
		Password: password,
	})

	if out, ok := n.mountOutput[letter]; ok {
		return *out
	}
	if n.letterInUseLocked(letter) {
		return mount.CommandOutput{Stderr: "System error 85 has occurred.\r\n\r\nThe local device name is already in use.\r\n"}
	}

	n.conns = append(n.conns, mount.Connection{
		Status: "OK",
		Letter: letter,
		Remote: mount.UNCPath(host, share),
		Host:   host,
		Share:  share,
	})
	return mount.CommandOutput{Stdout: "The command completed successfully.\r\n"}
}

// Unmount implements mount.Runner
func (n *NetUse) Unmount(_ context.Context, letter string) mount.CommandOutput {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.unmountCalls = append(n.unmountCalls, letter)

	if out, ok := n.unmountOutput[letter]; ok {
		return *out
	}
	for i, c := range n.conns {
		if c.Letter == letter {
			n.conns = append(n.conns[:i], n.conns[i+1:]...)
			return mount.CommandOutput{Stdout: letter + ": was deleted successfully.\r\n"}
		}
	}
	return mount.CommandOutput{Stderr: "The network connection could not be found.\r\n"}
}

// List implements mount.Runner by rendering the table the way net use prints it
func (n *NetUse) List(_ context.Context) mount.CommandOutput {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.listCalls++

	var b strings.Builder
	b.WriteString("New connections will be remembered.\r\n\r\n")
	if len(n.conns) == 0 {
		b.WriteString("There are no entries in the list.\r\n\r\n")
		return mount.CommandOutput{Stdout: b.String()}
	}

	b.WriteString("\r\nStatus       Local     Remote                    Network\r\n\r\n")
	b.WriteString(strings.Repeat("-", 79) + "\r\n")
	for _, c := range n.conns {
		local := ""
		if c.Letter != "" {
			local = c.Letter + ":"
		}
		fmt.Fprintf(&b, "%-12s %-9s %-25s Microsoft Windows Network\r\n", c.Status, local, c.Remote)
	}
	b.WriteString("The command completed successfully.\r\n\r\n")
	return mount.CommandOutput{Stdout: b.String()}
}

// DeleteAll implements mount.Runner
func (n *NetUse) DeleteAll(_ context.Context) mount.CommandOutput {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.deleteAllCalls++
	if n.deleteAllOutput != nil {
		return *n.deleteAllOutput
	}
	if len(n.conns) == 0 {
		return mount.CommandOutput{Stdout: "There are no entries in the list.\r\n"}
	}

	n.conns = nil
	return mount.CommandOutput{Stdout: "You have these remote connections:\r\n\r\nThe command completed successfully.\r\n"}
}

// Connections implements mount.Table
func (n *NetUse) Connections(_ context.Context) ([]mount.Connection, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	if n.tableErr != nil {
		return nil, n.tableErr
	}
	return append([]mount.Connection(nil), n.conns...), nil
}

// UsedLetters implements mount.Drives: local disks plus lettered connections
func (n *NetUse) UsedLetters() ([]string, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	if n.drivesErr != nil {
		return nil, n.drivesErr
	}
	letters := append([]string(nil), n.local...)
	letters = append(letters, mount.MappedLetters(n.conns)...)
	return letters, nil
}

func (n *NetUse) letterInUseLocked(letter string) bool {
	if mount.Contains(n.local, letter) {
		return true
	}
	_, ok := mount.FindLetter(n.conns, letter)
	return ok
}

// GetMountCalls returns all Mount invocations
func (n *NetUse) GetMountCalls() []MountCall {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return append([]MountCall(nil), n.mountCalls...)
}

// GetUnmountCalls returns the letters passed to Unmount
func (n *NetUse) GetUnmountCalls() []string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return append([]string(nil), n.unmountCalls...)
}

// GetDeleteAllCalls returns how many times DeleteAll ran
func (n *NetUse) GetDeleteAllCalls() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.deleteAllCalls
}

// GetListCalls returns how many times List ran
func (n *NetUse) GetListCalls() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.listCalls
}

// MappedLetters returns the letters currently mapped, in table order
func (n *NetUse) MappedLetters() []string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return mount.MappedLetters(n.conns)
}

// Reset clears connections, injected outputs and call history
func (n *NetUse) Reset() {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.conns = nil
	n.mountOutput = make(map[string]*mount.CommandOutput)
	n.unmountOutput = make(map[string]*mount.CommandOutput)
	n.deleteAllOutput = nil
	n.tableErr = nil
	n.drivesErr = nil
	n.mountCalls = nil
	n.unmountCalls = nil
	n.listCalls = 0
	n.deleteAllCalls = 0
}
