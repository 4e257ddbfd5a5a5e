package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"git.srvlab.io/whiskey/attach-nas/pkg/config"
	"git.srvlab.io/whiskey/attach-nas/pkg/menu"
)

var menuWatch bool

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Show the tray menu",
	Long: `Show the tray menu built from the config file.

With --watch the menu stays open: each line read from stdin is a menu path
such as "NAS>Mount media" and is invoked, and the menu is rebuilt whenever
the config file changes. Selecting Exit or pressing Ctrl+C stops it.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if menuWatch {
			return current.runMenu(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout())
		}
		return current.buildMenu(menu.Hooks{EditConfig: current.editConfig}).Render(cmd.OutOrStdout())
	},
}

var menuInvokeCmd = &cobra.Command{
	Use:   "invoke <path>",
	Short: `Invoke a menu item by path, e.g. "NAS>Mount media"`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m := current.buildMenu(menu.Hooks{EditConfig: current.editConfig})
		msg, err := invokePath(cmd.Context(), m, args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), msg)
		return nil
	},
}

func init() {
	menuCmd.Flags().BoolVar(&menuWatch, "watch", false, "Keep the menu open and reload it when the config changes")
	menuCmd.AddCommand(menuInvokeCmd)
}

func (a *app) buildMenu(hooks menu.Hooks) *menu.Menu {
	return menu.Build(a.orch.Config(), a.orch, hooks)
}

func invokePath(ctx context.Context, m *menu.Menu, path string) (string, error) {
	item, err := m.Find(path)
	if err != nil {
		return "", err
	}
	return item.Invoke(ctx)
}

// runMenu is the long-running front end: it reads menu paths from in and
// writes notifications and redrawn menus to out.
func (a *app) runMenu(ctx context.Context, in io.Reader, out io.Writer) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var mu sync.Mutex
	hooks := menu.Hooks{
		EditConfig: a.editConfig,
		Exit: func(context.Context) string {
			a.logger.Info("Closing the app")
			cancel()
			return "Closing the app"
		},
	}
	draw := func(note string) {
		mu.Lock()
		defer mu.Unlock()
		if note != "" {
			fmt.Fprintln(out, note)
		}
		if err := a.buildMenu(hooks).Render(out); err != nil {
			a.logger.Error(err, "Failed to render menu")
		}
	}

	watcher, err := config.NewWatcher(a.logger, a.settings.ConfigFile, func(f *config.File, err error) {
		a.reload(f, err)
		if err != nil {
			draw(fmt.Sprintf("Config file could not be reloaded: %v", err))
			return
		}
		draw("Config file reloaded")
	})
	if err != nil {
		return err
	}
	a.watching.Store(true)
	defer a.watching.Store(false)
	go func() {
		if err := watcher.Run(ctx); err != nil {
			a.watching.Store(false)
			a.logger.Error(err, "Config watcher stopped")
		}
	}()

	if a.settings.MetricsAddress != "" {
		go a.serveMetrics(ctx, a.settings.MetricsAddress)
	}

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	draw("")
	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok || ctx.Err() != nil {
				return nil
			}
			path := strings.TrimSpace(line)
			if path == "" {
				continue
			}
			msg, err := invokePath(ctx, a.buildMenu(hooks), path)
			if err != nil {
				msg = fmt.Sprintf("Error: %v", err)
			}
			mu.Lock()
			fmt.Fprintln(out, msg)
			mu.Unlock()
		}
	}
}

// serveMetrics serves /metrics until ctx is cancelled
func (a *app) serveMetrics(ctx context.Context, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", a.metrics.Handler())
	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	a.logger.Info("Serving metrics", "address", addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		a.logger.Error(err, "Metrics server failed", "address", addr)
	}
}
