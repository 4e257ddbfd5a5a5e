package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"git.srvlab.io/whiskey/attach-nas/pkg/mount"
)

var sectionsCmd = &cobra.Command{
	Use:   "sections",
	Short: "List config sections and whether they can be mounted",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		cfg := current.orch.Config()
		if current.cfgErr != nil {
			fmt.Fprintf(out, "Config file %s: %v\n", cfg.Path(), current.cfgErr)
		}

		rows := make([][]string, 0, len(cfg.Sections()))
		for _, s := range cfg.Sections() {
			ready := "yes"
			if !s.IsMountReady() {
				ready = "missing: " + strings.Join(s.MissingFields(), ", ")
			}
			rows = append(rows, []string{s.Name, orDash(s.IP), orDash(strings.Join(s.Shares, ", ")), ready})
		}
		if len(rows) == 0 {
			fmt.Fprintln(out, "No sections configured")
			return nil
		}
		printTable(out, []string{"Section", "Host", "Shares", "Ready"}, rows)

		for _, s := range cfg.Sections() {
			for _, problem := range s.Problems() {
				fmt.Fprintf(out, "[%s] %s\n", s.Name, problem)
			}
		}
		return nil
	},
}

var infoCmd = &cobra.Command{
	Use:   "info <section>",
	Short: "Show a section's host, user and shares",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		section, err := current.orch.Config().Section(args[0])
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), section.Summary())
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "List the current network connections",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		conns, err := current.orch.Connections(cmd.Context())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(conns) == 0 {
			fmt.Fprintln(out, "No network connections")
			return nil
		}

		rows := make([][]string, 0, len(conns))
		for _, c := range conns {
			letter := "-"
			if c.Letter != "" {
				letter = c.Letter + ":"
			}
			remote := c.Remote
			if remote == "" {
				remote = mount.UNCPath(c.Host, c.Share)
			}
			rows = append(rows, []string{letter, remote, orDash(c.Status)})
		}
		printTable(out, []string{"Letter", "Remote", "Status"}, rows)
		return nil
	},
}

var freeCmd = &cobra.Command{
	Use:   "free",
	Short: "List drive letters available for mapping",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		free, err := current.orch.FreeLetters(cmd.Context())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(free) == 0 {
			fmt.Fprintln(out, "No free drive letters")
			return nil
		}
		fmt.Fprintln(out, strings.Join(free, " "))
		return nil
	},
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
