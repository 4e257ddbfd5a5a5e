package commands

import (
	"errors"
	"fmt"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
)

var unmountCmd = &cobra.Command{
	Use:   "unmount <letter>",
	Short: "Remove the mapping of a drive letter",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r := current.orch.Unmount(cmd.Context(), args[0])
		fmt.Fprintln(cmd.OutOrStdout(), r.Message)
		return nil
	},
}

var unmountHostCmd = &cobra.Command{
	Use:   "unmount-host <host>",
	Short: "Remove every drive letter mapped to a host",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r := current.orch.UnmountAllForHost(cmd.Context(), args[0])
		fmt.Fprintln(cmd.OutOrStdout(), r.Message)
		return nil
	},
}

var unmountConfigCmd = &cobra.Command{
	Use:   "unmount-config",
	Short: "Remove drive letters mapped to any configured host",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		r := current.orch.UnmountAllConfigured(cmd.Context())
		fmt.Fprintln(cmd.OutOrStdout(), r.Message)
		return nil
	},
}

var unmountEverythingYes bool

// confirm asks before destructive actions. Tests replace it.
var confirm = func(label string) (bool, error) {
	prompt := promptui.Prompt{
		Label:     label,
		IsConfirm: true,
	}
	_, err := prompt.Run()
	if err != nil {
		// promptui returns ErrAbort for "n"
		if errors.Is(err, promptui.ErrAbort) || errors.Is(err, promptui.ErrInterrupt) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

var unmountEverythingCmd = &cobra.Command{
	Use:   "unmount-everything",
	Short: "Drop every network connection on this PC, configured or not",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !unmountEverythingYes {
			ok, err := confirm("Drop all network connections, including ones not in the config")
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "Aborted")
				return nil
			}
		}
		r := current.orch.UnmountEverything(cmd.Context())
		fmt.Fprintln(cmd.OutOrStdout(), r.Message)
		return nil
	},
}

func init() {
	unmountEverythingCmd.Flags().BoolVarP(&unmountEverythingYes, "yes", "y", false, "Skip confirmation")
}
