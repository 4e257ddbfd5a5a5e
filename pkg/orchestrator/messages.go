package orchestrator

import (
	"fmt"
	"strings"

	"git.srvlab.io/whiskey/attach-nas/pkg/mount"
)

// MaxMessageLength is the longest notification a tray balloon can show
const MaxMessageLength = 256

// truncate caps msg at MaxMessageLength runes
func truncate(msg string) string {
	runes := []rune(msg)
	if len(runes) <= MaxMessageLength {
		return msg
	}
	return string(runes[:MaxMessageLength])
}

// commandMessages holds the wordings of a classified net use result
type commandMessages struct {
	success string
	failure string
}

func mountMessages(letter string) commandMessages {
	return commandMessages{
		success: fmt.Sprintf("Success: Drive letter %s - mounted: \n", letter),
		failure: fmt.Sprintf("Error while mounting letter %s: \n", letter),
	}
}

func unmountMessages(letter string) commandMessages {
	return commandMessages{
		success: fmt.Sprintf("Success: Drive letter %s - unmounted: \n", letter),
		failure: fmt.Sprintf("Error while unmounting letter %s: \n", letter),
	}
}

var deleteAllMessages = commandMessages{
	success: "Success: All network drives and connections - unmounted: \n",
	failure: "Error - could not unmount all connections: \n",
}

// classify turns command output into a Result using the wording in m
func classify(out mount.CommandOutput, m commandMessages, letter string) Result {
	switch out.Classify() {
	case mount.StatusFailure:
		return Result{Outcome: OutcomeFailure, Message: m.failure + out.Stderr, Letter: letter}
	case mount.StatusSuccess:
		return Result{Outcome: OutcomeSuccess, Message: m.success + out.Stdout, Letter: letter}
	default:
		return Result{
			Outcome: OutcomeAmbiguous,
			Message: fmt.Sprintf("stdout: %s \n stderr: %s", out.Stdout, out.Stderr),
			Letter:  letter,
		}
	}
}

func alreadyMountedAt(host, share, letter string) string {
	return fmt.Sprintf("%s - already mounted at %s", mount.UNCPath(host, share), letter)
}

func letterOccupied(letter string) string {
	return fmt.Sprintf("Drive letter %s - already mounted.", letter)
}

func letterNotMounted(letter string) string {
	return fmt.Sprintf("Drive letter %s - not mounted.", letter)
}

func notConfigured(section string, missing []string) string {
	if len(missing) == 0 {
		return fmt.Sprintf("Section %s is not configured", section)
	}
	return fmt.Sprintf("Section %s is not configured (missing: %s)", section, strings.Join(missing, ", "))
}

func mountAllSummary(total int, failed []string) string {
	if len(failed) == 0 {
		return fmt.Sprintf("All [%d] drives mounted successfully.", total)
	}
	return fmt.Sprintf("Not all [%d] drives mounted successfully. Failed mounts: %s", total, strings.Join(failed, ", "))
}

func unmountHostSummary(total int, failed []string) string {
	if len(failed) == 0 {
		return fmt.Sprintf("Success. All %d drives unmounted successfully.", total)
	}
	return fmt.Sprintf("Some drives failed to unmount: %s", strings.Join(failed, ", "))
}

func unmountConfiguredSummary(failedHosts []string) string {
	if len(failedHosts) == 0 {
		return "Success. All connections unmounted successfully."
	}
	return fmt.Sprintf("Some drives failed to unmount for IP: %s", strings.Join(failedHosts, ", "))
}
