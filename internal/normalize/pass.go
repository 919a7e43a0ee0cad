package normalize

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/rdswitchboard/doinorm/internal/doi"
)

// State is the lifecycle position of a Pass.
type State int

const (
	NotStarted State = iota
	TransactionOpen
	Scanning
	Committed
	RolledBack
)

func (s State) String() string {
	switch s {
	case NotStarted:
		return "not_started"
	case TransactionOpen:
		return "transaction_open"
	case Scanning:
		return "scanning"
	case Committed:
		return "committed"
	case RolledBack:
		return "rolled_back"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// MarshalText renders the state name in reports.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Options configure a Pass.
type Options struct {
	// DryRun performs the scan and writes, then rolls back instead of
	// committing.
	DryRun bool

	// Logger receives progress and per-node rewrite logs.
	// If nil, defaults to slog.Default().
	Logger *slog.Logger

	// RunID identifies the run in logs and the report.
	// If empty, a UUIDv7 is generated.
	RunID string

	// Now overrides the clock used for the report duration (for testing).
	Now func() time.Time
}

// Report summarizes a pass.
type Report struct {
	RunID     string        `json:"run_id"`
	State     State         `json:"state"`
	DryRun    bool          `json:"dry_run"`
	Scanned   int           `json:"nodes_scanned"`
	WithDOI   int           `json:"nodes_with_doi"`
	Scalars   int           `json:"scalar_values"`
	Arrays    int           `json:"array_values"`
	Other     int           `json:"other_values"`
	Updated   int           `json:"nodes_updated"`
	Unmatched int           `json:"unmatched_values"`
	Duration  time.Duration `json:"duration_ns"`
}

// Pass is a single normalization run.
type Pass struct {
	opts  Options
	log   *slog.Logger
	state State
}

// New creates a pass in the NotStarted state.
func New(opts Options) *Pass {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.RunID == "" {
		opts.RunID = newRunID()
	}
	return &Pass{
		opts: opts,
		log:  opts.Logger.With("run_id", opts.RunID),
	}
}

func newRunID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// State returns the pass's current state.
func (p *Pass) State() State {
	return p.state
}

// Run executes the pass against store. On error the transaction has been
// rolled back and nothing the pass wrote is visible.
func (p *Pass) Run(ctx context.Context, store Store) (report Report, err error) {
	report = Report{RunID: p.opts.RunID, DryRun: p.opts.DryRun}
	if p.state != NotStarted {
		return report, ErrAlreadyRun
	}

	start := p.opts.Now()
	defer func() {
		report.State = p.state
		report.Duration = p.opts.Now().Sub(start)
	}()

	p.log.Info("normalization pass starting", "dry_run", p.opts.DryRun)

	tx, err := store.Begin(ctx)
	if err != nil {
		p.state = RolledBack
		return report, fmt.Errorf("begin transaction: %w", err)
	}
	p.state = TransactionOpen

	p.state = Scanning
	if err := tx.Nodes(ctx, func(n Node) error {
		return p.visit(ctx, n, &report)
	}); err != nil {
		p.abort(tx)
		var fault *ScanFault
		if errors.As(err, &fault) {
			return report, err
		}
		return report, fmt.Errorf("scan nodes: %w", err)
	}

	if p.opts.DryRun {
		p.abort(tx)
		p.log.Info("dry run complete, changes rolled back",
			"scanned", report.Scanned, "would_update", report.Updated)
		return report, nil
	}

	if err := tx.Commit(); err != nil {
		p.abort(tx)
		return report, fmt.Errorf("commit: %w", err)
	}
	p.state = Committed

	p.log.Info("normalization pass committed",
		"scanned", report.Scanned,
		"with_doi", report.WithDOI,
		"updated", report.Updated,
		"unmatched", report.Unmatched,
	)
	return report, nil
}

// abort rolls back and enters the terminal RolledBack state. A rollback
// error is logged only; the transaction is discarded either way.
func (p *Pass) abort(tx Tx) {
	if err := tx.Rollback(); err != nil {
		p.log.Debug("rollback", "error", err)
	}
	p.state = RolledBack
}

// visit applies the dirty-check to one node.
func (p *Pass) visit(ctx context.Context, n Node, report *Report) error {
	report.Scanned++

	v, present, err := n.Property(doi.Property)
	if err != nil {
		return &ScanFault{NodeID: n.ID(), Err: err}
	}

	shape := doi.Classify(v, present)
	switch shape.Kind {
	case doi.KindAbsent:
		return nil
	case doi.KindScalar:
		report.Scalars++
	case doi.KindStrings:
		report.Arrays++
	case doi.KindOther:
		report.Other++
		p.log.Debug("skipping unrecognized doi value", "node", n.ID(), "type", fmt.Sprintf("%T", shape.Raw))
	}
	report.WithDOI++

	rw := Plan(shape)
	report.Unmatched += rw.Unmatched
	if !rw.Changed {
		return nil
	}

	if err := n.SetProperty(ctx, doi.Property, rw.Value); err != nil {
		return &ScanFault{NodeID: n.ID(), Err: err}
	}
	report.Updated++
	p.log.Debug("rewrote doi", "node", n.ID(), "from", shape.Raw, "to", rw.Value)
	return nil
}
