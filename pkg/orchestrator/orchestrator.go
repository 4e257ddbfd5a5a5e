package orchestrator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"k8s.io/klog/v2"

	"git.srvlab.io/whiskey/attach-nas/pkg/config"
	"git.srvlab.io/whiskey/attach-nas/pkg/mount"
	"git.srvlab.io/whiskey/attach-nas/pkg/observability"
	"git.srvlab.io/whiskey/attach-nas/pkg/security"
	"git.srvlab.io/whiskey/attach-nas/pkg/utils"
)

// Operation names used for metrics and log values
const (
	OpMount             = "mount"
	OpMountAll          = "mount_all"
	OpUnmount           = "unmount"
	OpUnmountHost       = "unmount_host"
	OpUnmountConfigured = "unmount_config"
	OpUnmountEverything = "unmount_everything"
)

// Options holds the collaborators of an Orchestrator.
// Runner, Table and Drives are required; Metrics and Audit may be nil.
type Options struct {
	Runner  mount.Runner
	Table   mount.Table
	Drives  mount.Drives
	Metrics *observability.Metrics
	Audit   *security.Logger
}

// Orchestrator runs mount and unmount operations against the current config
type Orchestrator struct {
	logger  klog.Logger
	runner  mount.Runner
	table   mount.Table
	drives  mount.Drives
	metrics *observability.Metrics
	audit   *security.Logger

	// cfg is replaced by the config watcher
	mu  sync.RWMutex
	cfg *config.File
}

// New creates an Orchestrator for cfg
func New(logger klog.Logger, cfg *config.File, opts Options) *Orchestrator {
	return &Orchestrator{
		logger:  klog.LoggerWithName(logger, "orchestrator"),
		runner:  opts.Runner,
		table:   opts.Table,
		drives:  opts.Drives,
		metrics: opts.Metrics,
		audit:   opts.Audit,
		cfg:     cfg,
	}
}

// Config returns the configuration operations currently run against
func (o *Orchestrator) Config() *config.File {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.cfg
}

// SetConfig swaps in a reloaded configuration
func (o *Orchestrator) SetConfig(cfg *config.File) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.cfg = cfg
}

// Connections returns the current connection table
func (o *Orchestrator) Connections(ctx context.Context) ([]mount.Connection, error) {
	return o.table.Connections(ctx)
}

// FreeLetters returns letters usable for a new mapping, ascending
func (o *Orchestrator) FreeLetters(ctx context.Context) ([]string, error) {
	conns, err := o.table.Connections(ctx)
	if err != nil {
		return nil, err
	}
	used, err := o.drives.UsedLetters()
	if err != nil {
		return nil, err
	}
	return mount.FreeLetters(used, mount.MappedLetters(conns)), nil
}

// begin creates the per-operation logger and context
func (o *Orchestrator) begin(ctx context.Context, operation string, keysAndValues ...interface{}) (context.Context, klog.Logger, string) {
	id := uuid.NewString()
	logger := klog.LoggerWithValues(o.logger, append([]interface{}{"operation", operation, "operationID", id}, keysAndValues...)...)
	return klog.NewContext(ctx, logger), logger, id
}

// finish truncates the message, logs the outcome and records metrics
func (o *Orchestrator) finish(logger klog.Logger, operation string, start time.Time, r Result) Result {
	r.Message = truncate(r.Message)

	switch r.Outcome {
	case OutcomeFailure, OutcomeAmbiguous:
		logger.Error(nil, "Operation did not succeed", "outcome", r.Outcome, "message", r.Message)
	case OutcomeNotConfigured, OutcomeConflict:
		logger.Info("Operation refused", "outcome", r.Outcome, "message", r.Message)
	default:
		logger.V(2).Info("Operation completed", "outcome", r.Outcome, "letter", r.Letter)
	}

	if o.metrics != nil {
		o.metrics.RecordOperation(operation, string(r.Outcome), time.Since(start))
	}
	return r
}

// runNet runs one net use command and records its classified status
func (o *Orchestrator) runNet(command string, run func() mount.CommandOutput) mount.CommandOutput {
	out := run()
	if o.metrics != nil {
		o.metrics.RecordNetCommand(command, out.Classify().String())
	}
	return out
}

// readySection resolves a mount-ready section or a NotConfigured result
func (o *Orchestrator) readySection(name string) (config.Section, *Result) {
	section, err := o.Config().Section(name)
	if err != nil {
		return config.Section{}, &Result{Outcome: OutcomeNotConfigured, Message: notConfigured(name, nil)}
	}
	if !section.IsMountReady() {
		return config.Section{}, &Result{Outcome: OutcomeNotConfigured, Message: notConfigured(name, section.MissingFields())}
	}
	return section, nil
}

// Mount maps share shareIndex of the named section to a drive letter.
func (o *Orchestrator) Mount(ctx context.Context, sectionName string, shareIndex int) Result {
	start := time.Now()
	ctx, logger, id := o.begin(ctx, OpMount, "section", sectionName, "shareIndex", shareIndex)

	section, notReady := o.readySection(sectionName)
	if notReady != nil {
		return o.finish(logger, OpMount, start, *notReady)
	}
	return o.finish(logger, OpMount, start, o.mountShare(ctx, logger, id, section, shareIndex))
}

// mountShare holds the mount decision for one share of a ready section
func (o *Orchestrator) mountShare(ctx context.Context, logger klog.Logger, id string, section config.Section, shareIndex int) Result {
	share, err := section.Share(shareIndex)
	if err != nil {
		return Result{Outcome: OutcomeFailure, Message: fmt.Sprintf("Error: %v", err)}
	}

	if err := validateMountValues(section, share); err != nil {
		if o.audit != nil {
			o.audit.LogValidationFailure(section.Name, "mount", err.Error())
		}
		return Result{Outcome: OutcomeFailure, Message: fmt.Sprintf("Error: invalid configuration for section %s: %v", section.Name, err)}
	}

	conns, err := o.table.Connections(ctx)
	if err != nil {
		return Result{Outcome: OutcomeFailure, Message: fmt.Sprintf("Error: could not read network connections: %v", err)}
	}
	logger.V(4).Info("Read connection table", "connections", len(conns))

	if existing, ok := mount.FindShare(conns, section.IP, share); ok {
		return Result{
			Outcome: OutcomeNoOp,
			Message: alreadyMountedAt(section.IP, share, existing.Letter),
			Letter:  existing.Letter,
		}
	}

	used, err := o.drives.UsedLetters()
	if err != nil {
		return Result{Outcome: OutcomeFailure, Message: fmt.Sprintf("Error: could not query drive letters: %v", err)}
	}

	letter := section.PreferredLetter(shareIndex)
	if letter == "" {
		letter, err = mount.LastFreeLetter(mount.FreeLetters(used, mount.MappedLetters(conns)))
		if err != nil {
			return Result{Outcome: OutcomeFailure, Message: fmt.Sprintf("Error: cannot mount %s: %v", mount.UNCPath(section.IP, share), err)}
		}
		logger.V(4).Info("Chose last free letter", "letter", letter)
	} else {
		logger.V(4).Info("Using preferred letter", "letter", letter)
	}

	if _, mapped := mount.FindLetter(conns, letter); mapped || mount.Contains(used, letter) {
		return Result{Outcome: OutcomeConflict, Message: letterOccupied(letter), Letter: letter}
	}

	if o.audit != nil {
		o.audit.LogCredentialUse(id, section.Name, section.Username, section.IP)
	}
	mountStart := time.Now()
	out := o.runNet("mount", func() mount.CommandOutput {
		return o.runner.Mount(ctx, letter, section.IP, share, section.Username, section.Password)
	})

	result := classify(out, mountMessages(letter), letter)
	if o.audit != nil {
		o.audit.LogMount(id, section.Name, section.Username, section.IP, share, letter,
			auditOutcome(result), resultError(result, utils.ErrMountFailed), time.Since(mountStart))
	}
	return result
}

// validateMountValues rejects values that net use would misparse
func validateMountValues(section config.Section, share string) error {
	if err := utils.ValidateHost(section.IP); err != nil {
		return err
	}
	if err := utils.ValidateShareName(share); err != nil {
		return err
	}
	if err := utils.ValidateCommandArg("username", section.Username); err != nil {
		return err
	}
	return utils.ValidateCommandArg("password", section.Password)
}

// MountAll mounts every share of the named section in order.
// A share counts as mounted when it was mounted now or already was.
func (o *Orchestrator) MountAll(ctx context.Context, sectionName string) Result {
	start := time.Now()
	ctx, logger, id := o.begin(ctx, OpMountAll, "section", sectionName)

	section, notReady := o.readySection(sectionName)
	if notReady != nil {
		return o.finish(logger, OpMountAll, start, *notReady)
	}

	var failed []string
	for i, share := range section.Shares {
		r := o.mountShare(ctx, logger.WithValues("share", share), id, section, i)
		logger.V(2).Info("Share processed", "share", share, "outcome", r.Outcome)
		if !r.OK() {
			failed = append(failed, share)
		}
	}

	outcome := OutcomeSuccess
	if len(failed) > 0 {
		outcome = OutcomeFailure
	}
	return o.finish(logger, OpMountAll, start, Result{
		Outcome: outcome,
		Message: mountAllSummary(len(section.Shares), failed),
	})
}

// Unmount drops the connection on letter. A letter absent from the
// connection table is reported as not mounted without running net use.
func (o *Orchestrator) Unmount(ctx context.Context, letter string) Result {
	start := time.Now()
	letter = utils.NormalizeDriveLetter(letter)
	ctx, logger, id := o.begin(ctx, OpUnmount, "letter", letter)

	return o.finish(logger, OpUnmount, start, o.unmountLetter(ctx, id, letter))
}

func (o *Orchestrator) unmountLetter(ctx context.Context, id, letter string) Result {
	if err := utils.ValidateDriveLetter(letter); err != nil {
		return Result{Outcome: OutcomeFailure, Message: fmt.Sprintf("Error: %v", err)}
	}

	conns, err := o.table.Connections(ctx)
	if err != nil {
		return Result{Outcome: OutcomeFailure, Message: fmt.Sprintf("Error: could not read network connections: %v", err), Letter: letter}
	}
	if _, ok := mount.FindLetter(conns, letter); !ok {
		return Result{Outcome: OutcomeNoOp, Message: letterNotMounted(letter), Letter: letter}
	}

	unmountStart := time.Now()
	out := o.runNet("unmount", func() mount.CommandOutput {
		return o.runner.Unmount(ctx, letter)
	})
	result := classify(out, unmountMessages(letter), letter)
	if o.audit != nil {
		o.audit.LogUnmount(id, letter, auditOutcome(result), resultError(result, utils.ErrUnmountFailed), time.Since(unmountStart))
	}
	return result
}

// UnmountAllForHost unmounts every lettered connection to host in table order
func (o *Orchestrator) UnmountAllForHost(ctx context.Context, host string) Result {
	start := time.Now()
	ctx, logger, id := o.begin(ctx, OpUnmountHost, "host", host)

	return o.finish(logger, OpUnmountHost, start, o.unmountHost(ctx, logger, id, host))
}

func (o *Orchestrator) unmountHost(ctx context.Context, logger klog.Logger, id, host string) Result {
	conns, err := o.table.Connections(ctx)
	if err != nil {
		return Result{Outcome: OutcomeFailure, Message: fmt.Sprintf("Error: could not read network connections: %v", err)}
	}

	letters := mount.LettersForHost(conns, host)
	logger.V(4).Info("Found drives for host", "host", host, "letters", letters)

	var failed []string
	for _, letter := range letters {
		// Anything short of a confirmed unmount counts as a failure,
		// including a drive that vanished since the table was read
		if r := o.unmountLetter(ctx, id, letter); r.Outcome != OutcomeSuccess {
			failed = append(failed, letter)
		}
	}

	outcome := OutcomeSuccess
	if len(failed) > 0 {
		outcome = OutcomeFailure
	}
	return Result{Outcome: outcome, Message: unmountHostSummary(len(letters), failed)}
}

// UnmountAllConfigured runs UnmountAllForHost for every distinct configured host
func (o *Orchestrator) UnmountAllConfigured(ctx context.Context) Result {
	start := time.Now()
	ctx, logger, id := o.begin(ctx, OpUnmountConfigured)

	var failedHosts []string
	for _, host := range o.Config().HostIPs() {
		r := o.unmountHost(ctx, logger.WithValues("host", host), id, host)
		if r.Outcome != OutcomeSuccess {
			failedHosts = append(failedHosts, host)
		}
	}

	outcome := OutcomeSuccess
	if len(failedHosts) > 0 {
		outcome = OutcomeFailure
	}
	return o.finish(logger, OpUnmountConfigured, start, Result{
		Outcome: outcome,
		Message: unmountConfiguredSummary(failedHosts),
	})
}

// UnmountEverything drops every network connection, configured or not
func (o *Orchestrator) UnmountEverything(ctx context.Context) Result {
	start := time.Now()
	ctx, logger, id := o.begin(ctx, OpUnmountEverything)

	out := o.runNet("delete_all", func() mount.CommandOutput {
		return o.runner.DeleteAll(ctx)
	})
	result := classify(out, deleteAllMessages, "")
	if o.audit != nil {
		o.audit.LogUnmountEverything(id, auditOutcome(result), resultError(result, utils.ErrUnmountFailed))
	}
	return o.finish(logger, OpUnmountEverything, start, result)
}

// auditOutcome maps a command result to an audit outcome
func auditOutcome(r Result) security.EventOutcome {
	switch r.Outcome {
	case OutcomeSuccess:
		return security.OutcomeSuccess
	case OutcomeFailure:
		return security.OutcomeFailure
	default:
		return security.OutcomeUnknown
	}
}

// resultError wraps the message of a failed result in sentinel
func resultError(r Result, sentinel error) error {
	if r.Outcome != OutcomeFailure {
		return nil
	}
	return fmt.Errorf("%w: %s", sentinel, r.Message)
}
