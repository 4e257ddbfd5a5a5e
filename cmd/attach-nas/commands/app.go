package commands

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"k8s.io/klog/v2"

	"git.srvlab.io/whiskey/attach-nas/pkg/config"
	"git.srvlab.io/whiskey/attach-nas/pkg/mount"
	"git.srvlab.io/whiskey/attach-nas/pkg/observability"
	"git.srvlab.io/whiskey/attach-nas/pkg/orchestrator"
	"git.srvlab.io/whiskey/attach-nas/pkg/probe"
	"git.srvlab.io/whiskey/attach-nas/pkg/security"
	"git.srvlab.io/whiskey/attach-nas/pkg/utils"
)

// backend is the system access used by the orchestrator
type backend struct {
	Runner mount.Runner
	Table  mount.Table
	Drives mount.Drives
}

// newBackend builds the net use backend. Tests replace it.
var newBackend = func(logger klog.Logger) backend {
	runner := mount.NewRunner(logger)
	return backend{
		Runner: runner,
		Table:  mount.NewNetUseTable(logger, runner),
		Drives: mount.NewDrives(),
	}
}

// newShareLister builds the SMB client used by probe. Tests replace it.
var newShareLister = probe.NewSMBLister

// app wires the packages together for one command invocation
type app struct {
	logger   klog.Logger
	settings *config.Settings
	metrics  *observability.Metrics
	audit    *security.Logger
	backend  backend
	orch     *orchestrator.Orchestrator

	// reloads come from the watcher goroutine and the edit hook
	mu sync.Mutex

	// cfgErr is the error from the latest config load, if any
	cfgErr error

	// watching is set while a config watcher owns reloads
	watching atomic.Bool
}

func newApp(logger klog.Logger, settings *config.Settings) *app {
	logger = klog.LoggerWithName(logger, "attach-nas")
	logStart(logger, settings)

	cfg, err := config.Load(logger, settings.ConfigFile)
	if err != nil && !errors.Is(err, utils.ErrConfigNotFound) {
		logger.Error(err, "Config file could not be parsed, continuing without sections")
	}

	a := &app{
		logger:   logger,
		settings: settings,
		metrics:  observability.NewMetrics(),
		audit:    security.NewLogger(logger),
		backend:  newBackend(logger),
		cfgErr:   err,
	}
	a.orch = orchestrator.New(logger, cfg, orchestrator.Options{
		Runner:  a.backend.Runner,
		Table:   a.backend.Table,
		Drives:  a.backend.Drives,
		Metrics: a.metrics,
		Audit:   a.audit,
	})
	a.metrics.SetConnectionCounter(a.mappedDrives)
	a.metrics.SetAuditSource(a.audit.GetMetrics())
	return a
}

// mappedDrives counts lettered connections for the mapped_drives gauge
func (a *app) mappedDrives() int {
	conns, err := a.backend.Table.Connections(context.Background())
	if err != nil {
		a.logger.V(4).Info("Connection count unavailable", "error", err)
		return 0
	}
	return len(mount.MappedLetters(conns))
}

// reload loads the config file again and hands it to the orchestrator
func (a *app) reload(cfg *config.File, err error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.metrics.RecordConfigReload(err)
	a.audit.LogConfigReloaded(a.settings.ConfigFile, len(cfg.SectionNames()), err)
	a.cfgErr = err
	a.orch.SetConfig(cfg)
}

// writeMetrics writes the textfile when one is configured
func (a *app) writeMetrics() error {
	if a.settings.MetricsFile == "" {
		return nil
	}
	if err := a.metrics.WriteToTextfile(a.settings.MetricsFile); err != nil {
		a.logger.Error(err, "Failed to write metrics")
		return err
	}
	a.logger.V(4).Info("Wrote metrics", "path", a.settings.MetricsFile)
	return nil
}

// prober returns a Prober wired to the app's metrics and audit log
func (a *app) prober() *probe.Prober {
	return probe.NewProber(a.logger, newShareLister(a.settings.ProbeTimeout), a.metrics, a.audit)
}
