package mount

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"k8s.io/klog/v2"

	"git.srvlab.io/whiskey/attach-nas/pkg/utils"
)

// NetCommand is the executable used for every operation
const NetCommand = "net"

// Status classifies the captured output of a net use invocation
type Status int

const (
	// StatusAmbiguous means the command wrote nothing at all
	StatusAmbiguous Status = iota

	// StatusSuccess means the command wrote to stdout only
	StatusSuccess

	// StatusFailure means the command wrote to stderr
	StatusFailure
)

// String returns the status name used in logs and metrics
func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusFailure:
		return "failure"
	default:
		return "ambiguous"
	}
}

// CommandOutput is the captured output of one net invocation
type CommandOutput struct {
	Stdout string
	Stderr string
}

// Classify applies the net use result rules: any error output means failure,
// otherwise any standard output means success. Whitespace does not count.
func (o CommandOutput) Classify() Status {
	switch {
	case strings.TrimSpace(o.Stderr) != "":
		return StatusFailure
	case strings.TrimSpace(o.Stdout) != "":
		return StatusSuccess
	default:
		return StatusAmbiguous
	}
}

// Runner issues net use commands. Implementations never return Go errors:
// failures are reported through CommandOutput.Stderr.
type Runner interface {
	// Mount maps \\host\share to letter with the given credentials
	Mount(ctx context.Context, letter, host, share, username, password string) CommandOutput

	// Unmount drops the connection on letter
	Unmount(ctx context.Context, letter string) CommandOutput

	// List returns the raw connection table
	List(ctx context.Context) CommandOutput

	// DeleteAll drops every network connection without confirmation
	DeleteAll(ctx context.Context) CommandOutput
}

// netUse implements Runner using the system net command
type netUse struct {
	logger      klog.Logger
	execCommand func(ctx context.Context, name string, args ...string) *exec.Cmd
}

// NewRunner creates a Runner backed by the system net command
func NewRunner(logger klog.Logger) Runner {
	return &netUse{
		logger:      klog.LoggerWithName(logger, "netuse"),
		execCommand: exec.CommandContext,
	}
}

// Mount maps a share: net use K: \\host\share /user:username password
func (n *netUse) Mount(ctx context.Context, letter, host, share, username, password string) CommandOutput {
	n.logger.V(2).Info("Mapping drive", "letter", letter, "host", host, "share", share, "user", username)
	return n.run(ctx, password,
		"use", letter+":", UNCPath(host, share), "/user:"+username, password)
}

// Unmount drops a mapping: net use K: /delete
func (n *netUse) Unmount(ctx context.Context, letter string) CommandOutput {
	n.logger.V(2).Info("Dropping drive", "letter", letter)
	return n.run(ctx, "", "use", letter+":", "/delete")
}

// List runs net use with no arguments
func (n *netUse) List(ctx context.Context) CommandOutput {
	return n.run(ctx, "", "use")
}

// DeleteAll drops every connection: net use * /delete /yes
func (n *netUse) DeleteAll(ctx context.Context) CommandOutput {
	n.logger.V(2).Info("Dropping all network connections")
	return n.run(ctx, "", "use", "*", "/delete", "/yes")
}

// run executes net with args, capturing stdout and stderr separately.
// secret is redacted from the logged command line. The captured output is
// returned as net printed it.
func (n *netUse) run(ctx context.Context, secret string, args ...string) CommandOutput {
	n.logger.V(4).Info("Executing", "command", NetCommand+" "+strings.Join(utils.RedactArgs(args, secret), " "))

	var stdout, stderr bytes.Buffer
	cmd := n.execCommand(ctx, NetCommand, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	out := CommandOutput{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	if err != nil && strings.TrimSpace(out.Stderr) == "" {
		// Start failures and silent non-zero exits still need to read as errors
		if _, ok := err.(*exec.ExitError); !ok {
			n.logger.Error(err, "Failed to start command", "command", NetCommand)
		}
		out.Stderr = utils.RedactSecret(fmt.Sprintf("%s %s: %v", NetCommand, args[0], err), secret)
	}

	n.logger.V(5).Info("Command output", "stdout", utils.RedactSecret(out.Stdout, secret), "stderr", utils.RedactSecret(out.Stderr, secret))
	return out
}

// UNCPath formats \\host\share
func UNCPath(host, share string) string {
	return `\\` + host + `\` + share
}
