package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var mountCmd = &cobra.Command{
	Use:   "mount <section> <share|index>",
	Short: "Map one share of a section to a drive letter",
	Long: `Map one share of a section to a drive letter.

The share is given by name or by its position in the section's share list,
counting from 0. The preferred letter configured for that position is used
when set; otherwise the highest free letter is chosen.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		index := shareIndex(args[0], args[1])
		r := current.orch.Mount(cmd.Context(), args[0], index)
		fmt.Fprintln(cmd.OutOrStdout(), r.Message)
		return nil
	},
}

var mountAllCmd = &cobra.Command{
	Use:   "mount-all <section>",
	Short: "Map every share of a section",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r := current.orch.MountAll(cmd.Context(), args[0])
		fmt.Fprintln(cmd.OutOrStdout(), r.Message)
		return nil
	},
}

// shareIndex resolves a share argument. A configured share name wins over a
// numeric index; -1 lets the orchestrator report the share as unknown.
func shareIndex(sectionName, arg string) int {
	if section, err := current.orch.Config().Section(sectionName); err == nil {
		if i := section.ShareIndex(arg); i >= 0 {
			return i
		}
	}
	if i, err := strconv.Atoi(arg); err == nil {
		return i
	}
	return -1
}
