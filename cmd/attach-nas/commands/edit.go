package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"git.srvlab.io/whiskey/attach-nas/pkg/config"
)

var editCmd = &cobra.Command{
	Use:   "edit",
	Short: "Open the config file in an editor and reload it",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintln(cmd.OutOrStdout(), current.editConfig(cmd.Context()))
		return nil
	},
}

// editConfig runs the editor and reloads the config when it changed.
// While a watcher is running it picks the change up, so no reload happens here.
// The returned text is a notification.
func (a *app) editConfig(ctx context.Context) string {
	path := a.settings.ConfigFile
	editor := config.NewEditor(a.logger, a.settings.Editor)

	changed, err := editor.Edit(ctx, path)
	a.audit.LogConfigEdited(path, changed, err)
	if err != nil {
		a.logger.Error(err, "Config edit failed", "path", path)
		return fmt.Sprintf("Error: %v", err)
	}
	if !changed {
		return "Config file unchanged"
	}
	if a.watching.Load() {
		return "Config file updated"
	}

	a.reload(config.Load(a.logger, path))
	if cfg := a.orch.Config(); !cfg.AnyReady() {
		return "Config file updated, no section is ready to mount"
	}
	return "Config file updated"
}
