// Package probe checks configured shares against what a host actually
// exports, using an SMB2 session of its own. It never maps a drive.
package probe

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/hirochachacha/go-smb2"
	"k8s.io/klog/v2"

	"git.srvlab.io/whiskey/attach-nas/pkg/config"
	"git.srvlab.io/whiskey/attach-nas/pkg/observability"
	"git.srvlab.io/whiskey/attach-nas/pkg/security"
	"git.srvlab.io/whiskey/attach-nas/pkg/utils"
)

// SMBPort is the TCP port for SMB over TCP
const SMBPort = 445

// ShareLister lists the share names a host exports
type ShareLister interface {
	ListShares(ctx context.Context, host, username, password string) ([]string, error)
}

// smbLister lists shares over a direct SMB2 session
type smbLister struct {
	timeout time.Duration
	port    int
}

// NewSMBLister returns a ShareLister that dials host:445 with timeout
func NewSMBLister(timeout time.Duration) ShareLister {
	return &smbLister{timeout: timeout, port: SMBPort}
}

// ListShares authenticates with NTLM and enumerates share names
func (l *smbLister) ListShares(ctx context.Context, host, username, password string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	addr := net.JoinHostPort(host, strconv.Itoa(l.port))
	dialer := &net.Dialer{Timeout: l.timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", addr, err)
	}
	defer conn.Close()

	d := &smb2.Dialer{
		Initiator: &smb2.NTLMInitiator{
			User:     username,
			Password: password,
		},
	}

	session, err := d.DialContext(ctx, conn)
	if err != nil {
		return nil, fmt.Errorf("SMB session setup failed: %w", err)
	}
	defer func() { _ = session.Logoff() }()

	names, err := session.WithContext(ctx).ListSharenames()
	if err != nil {
		return nil, fmt.Errorf("failed to list shares on %s: %w", host, err)
	}
	return names, nil
}

// Report compares configured shares with exported ones
type Report struct {
	Section string
	Host    string

	// Available are configured shares the host exports
	Available []string

	// Missing are configured shares the host does not export
	Missing []string

	// Unconfigured are exported, non-hidden shares absent from the section
	Unconfigured []string
}

// OK reports whether every configured share exists
func (r *Report) OK() bool {
	return len(r.Missing) == 0
}

// String formats the report as a notification
func (r *Report) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Host %s - [%s]\n", r.Host, r.Section)
	fmt.Fprintf(&b, "Available: %s\n", listOrNone(r.Available))
	fmt.Fprintf(&b, "Missing: %s\n", listOrNone(r.Missing))
	fmt.Fprintf(&b, "Not configured: %s\n", listOrNone(r.Unconfigured))
	return b.String()
}

func listOrNone(items []string) string {
	if len(items) == 0 {
		return "None"
	}
	return strings.Join(items, ", ")
}

// Prober runs share listings for config sections
type Prober struct {
	lister  ShareLister
	logger  klog.Logger
	metrics *observability.Metrics
	audit   *security.Logger
}

// NewProber creates a Prober. metrics and audit may be nil.
func NewProber(logger klog.Logger, lister ShareLister, metrics *observability.Metrics, audit *security.Logger) *Prober {
	return &Prober{
		lister:  lister,
		logger:  klog.LoggerWithName(logger, "probe"),
		metrics: metrics,
		audit:   audit,
	}
}

// Probe lists the shares of section's host and compares them with the
// configured ones. Names compare case-insensitively.
func (p *Prober) Probe(ctx context.Context, section config.Section) (*Report, error) {
	if !section.IsMountReady() {
		return nil, fmt.Errorf("%w: %s (missing: %s)", utils.ErrSectionNotReady,
			section.Name, strings.Join(section.MissingFields(), ", "))
	}
	if err := utils.ValidateHost(section.IP); err != nil {
		return nil, err
	}

	logger := p.logger.WithValues("section", section.Name, "host", section.IP)
	logger.V(2).Info("Listing shares")
	if p.audit != nil {
		p.audit.LogProbe(section.Name, section.Username, section.IP, security.OutcomeUnknown, nil)
	}

	exported, err := p.lister.ListShares(ctx, section.IP, section.Username, section.Password)
	if p.metrics != nil {
		p.metrics.RecordProbe(err)
	}
	if err != nil {
		err = fmt.Errorf("%s", utils.RedactSecret(err.Error(), section.Password))
		logger.Error(err, "Share listing failed")
		if p.audit != nil {
			p.audit.LogProbe(section.Name, section.Username, section.IP, security.OutcomeFailure, err)
		}
		return nil, err
	}
	if p.audit != nil {
		p.audit.LogProbe(section.Name, section.Username, section.IP, security.OutcomeSuccess, nil)
	}

	report := compare(section, exported)
	logger.V(4).Info("Compared shares", "available", report.Available, "missing", report.Missing)
	return report, nil
}

// compare splits configured and exported share names
func compare(section config.Section, exported []string) *Report {
	report := &Report{Section: section.Name, Host: section.IP}

	for _, share := range section.Shares {
		if containsFold(exported, share) {
			report.Available = append(report.Available, share)
		} else {
			report.Missing = append(report.Missing, share)
		}
	}
	for _, name := range exported {
		// IPC$, ADMIN$, C$ and other hidden shares
		if strings.HasSuffix(name, "$") {
			continue
		}
		if !containsFold(section.Shares, name) {
			report.Unconfigured = append(report.Unconfigured, name)
		}
	}

	return report
}

func containsFold(items []string, s string) bool {
	for _, item := range items {
		if strings.EqualFold(item, s) {
			return true
		}
	}
	return false
}
