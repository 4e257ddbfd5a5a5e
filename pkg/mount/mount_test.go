package mount

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"k8s.io/klog/v2"
)

// recordedArgs collects the net arguments passed to the mock
type recordedArgs struct {
	calls [][]string
}

// mockExecCommand creates a mock exec.Cmd for testing
func mockExecCommand(rec *recordedArgs, stdout, stderr string, exitCode int) func(context.Context, string, ...string) *exec.Cmd {
	return func(ctx context.Context, command string, args ...string) *exec.Cmd {
		if rec != nil {
			rec.calls = append(rec.calls, append([]string{command}, args...))
		}
		cs := []string{"-test.run=TestHelperProcess", "--", command}
		cs = append(cs, args...)
		cmd := exec.CommandContext(ctx, os.Args[0], cs...)
		cmd.Env = []string{
			"GO_WANT_HELPER_PROCESS=1",
			"STDOUT=" + stdout,
			"STDERR=" + stderr,
			"EXIT_CODE=" + fmt.Sprintf("%d", exitCode),
		}
		return cmd
	}
}

// TestHelperProcess is used by mockExecCommand to simulate command execution
func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}

	// Output mock data
	_, _ = os.Stdout.WriteString(os.Getenv("STDOUT"))
	_, _ = os.Stderr.WriteString(os.Getenv("STDERR"))

	// Exit with specified code
	exitCode, _ := strconv.Atoi(os.Getenv("EXIT_CODE"))
	os.Exit(exitCode)
}

func newTestRunner(rec *recordedArgs, stdout, stderr string, exitCode int) *netUse {
	return &netUse{
		logger:      klog.Background(),
		execCommand: mockExecCommand(rec, stdout, stderr, exitCode),
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		output CommandOutput
		want   Status
	}{
		{name: "stdout only", output: CommandOutput{Stdout: "The command completed successfully."}, want: StatusSuccess},
		{name: "stderr only", output: CommandOutput{Stderr: "System error 53 has occurred."}, want: StatusFailure},
		{name: "stderr wins over stdout", output: CommandOutput{Stdout: "x", Stderr: "y"}, want: StatusFailure},
		{name: "nothing", output: CommandOutput{}, want: StatusAmbiguous},
		{name: "whitespace only", output: CommandOutput{Stdout: "\r\n", Stderr: " "}, want: StatusAmbiguous},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.output.Classify())
		})
	}
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "success", StatusSuccess.String())
	assert.Equal(t, "failure", StatusFailure.String())
	assert.Equal(t, "ambiguous", StatusAmbiguous.String())
}

func TestRunner_MountArguments(t *testing.T) {
	rec := &recordedArgs{}
	r := newTestRunner(rec, "The command completed successfully.", "", 0)

	out := r.Mount(context.Background(), "K", "192.168.1.10", "media", "bob", "pw")

	assert.Equal(t, StatusSuccess, out.Classify())
	assert.Equal(t, [][]string{
		{"net", "use", "K:", `\\192.168.1.10\media`, "/user:bob", "pw"},
	}, rec.calls)
}

func TestRunner_UnmountArguments(t *testing.T) {
	rec := &recordedArgs{}
	r := newTestRunner(rec, "K: was deleted successfully.", "", 0)

	out := r.Unmount(context.Background(), "K")

	assert.Equal(t, StatusSuccess, out.Classify())
	assert.Equal(t, [][]string{{"net", "use", "K:", "/delete"}}, rec.calls)
}

func TestRunner_DeleteAllArguments(t *testing.T) {
	rec := &recordedArgs{}
	r := newTestRunner(rec, "You have these remote connections...", "", 0)

	r.DeleteAll(context.Background())
	r.List(context.Background())

	assert.Equal(t, [][]string{
		{"net", "use", "*", "/delete", "/yes"},
		{"net", "use"},
	}, rec.calls)
}

func TestRunner_ErrorOutput(t *testing.T) {
	r := newTestRunner(nil, "", "System error 1326 has occurred.\r\n\r\nThe user name or password is incorrect.", 2)

	out := r.Mount(context.Background(), "K", "192.168.1.10", "media", "bob", "pw")

	assert.Equal(t, StatusFailure, out.Classify())
	assert.Contains(t, out.Stderr, "System error 1326")
}

func TestRunner_SilentNonZeroExit(t *testing.T) {
	r := newTestRunner(nil, "", "", 2)

	out := r.Unmount(context.Background(), "K")

	assert.Equal(t, StatusFailure, out.Classify())
	assert.Contains(t, out.Stderr, "exit status 2")
}

func TestRunner_StartFailure(t *testing.T) {
	r := &netUse{
		logger: klog.Background(),
		execCommand: func(ctx context.Context, name string, args ...string) *exec.Cmd {
			return exec.CommandContext(ctx, "/nonexistent/net-binary-for-testing", args...)
		},
	}

	out := r.List(context.Background())

	assert.Equal(t, StatusFailure, out.Classify())
}

func TestRunner_OutputKeptWhenPasswordIsShort(t *testing.T) {
	r := newTestRunner(nil, "The command completed successfully.\r\n", "", 0)

	out := r.Mount(context.Background(), "K", "nas", "media", "bob", "e")

	assert.Equal(t, "The command completed successfully.\r\n", out.Stdout)
	assert.Empty(t, out.Stderr)
}

func TestRunner_OutputPassedThrough(t *testing.T) {
	r := newTestRunner(nil, "", "System error 86 has occurred.\r\n", 2)

	out := r.Mount(context.Background(), "K", "nas", "media", "bob", "hunter2")

	assert.Equal(t, "System error 86 has occurred.\r\n", out.Stderr)
}

func TestUNCPath(t *testing.T) {
	assert.Equal(t, `\\192.168.1.10\media`, UNCPath("192.168.1.10", "media"))
}
