package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var probeCmd = &cobra.Command{
	Use:   "probe <section>",
	Short: "Check which configured shares the host exports",
	Long: `Connect to the section's host over SMB, list its shares and compare them
with the configured ones. No drive letter is mapped.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		section, err := current.orch.Config().Section(args[0])
		if err != nil {
			return err
		}
		report, err := current.prober().Probe(cmd.Context(), section)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), report.String())
		return nil
	},
}
