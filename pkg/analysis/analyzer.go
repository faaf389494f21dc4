// Package analysis orchestrates the full pass over a project artifact:
// container extraction, parallel instruction decoding, symbol table
// construction, control-flow graph wiring and diagram synthesis. The
// output is an immutable Context holding every derived artifact plus the
// diagnostics accumulated along the way.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ladderflow/ladderflow/pkg/container"
	"github.com/ladderflow/ladderflow/pkg/diag"
	"github.com/ladderflow/ladderflow/pkg/diagram"
	"github.com/ladderflow/ladderflow/pkg/flow"
	"github.com/ladderflow/ladderflow/pkg/instr"
	"github.com/ladderflow/ladderflow/pkg/logging"
	"github.com/ladderflow/ladderflow/pkg/parallel"
	"github.com/ladderflow/ladderflow/pkg/symtab"
)

// ErrNothingDecoded means the container yielded records but none of them
// decoded into a usable network
var ErrNothingDecoded = errors.New("no network decoded successfully")

// DefaultWorkers is the decode parallelism used when Options leaves
// Workers unset
const DefaultWorkers = 4

// Options configures an Analyzer
type Options struct {
	// Workers bounds the decode parallelism. Zero means DefaultWorkers.
	Workers int
	Logger  logging.Logger
}

// Analyzer runs analysis passes. It is stateless between passes and safe
// for concurrent use.
type Analyzer struct {
	workers int
	logger  logging.Logger
}

// New creates an Analyzer from the given options
func New(opts Options) *Analyzer {
	workers := opts.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Analyzer{workers: workers, logger: logger}
}

// Run executes one full pass over the raw artifact bytes. Fatal
// conditions (unrecognized container, nothing decodable, unbalanced loop
// brackets) return an error and no Context; recoverable findings land in
// the Context's diagnostics. Cancellation is honored between networks,
// never inside one.
func (a *Analyzer) Run(ctx context.Context, data []byte) (*Context, error) {
	passID := uuid.New()
	start := time.Now()
	a.logger.Info("Analysis pass started",
		logging.PassID(passID.String()),
		logging.Int("artifact_bytes", len(data)))

	result, err := container.Load(data)
	if err != nil {
		a.logger.Error("Container extraction failed",
			logging.PassID(passID.String()), logging.Error(err))
		return nil, stageError(StageExtract, err)
	}
	diags := result.Diagnostics

	networks, decodeDiags, err := a.decodeAll(ctx, result.Records)
	if err != nil {
		return nil, err
	}
	diags = append(diags, decodeDiags...)

	symbols := symtab.New()
	for _, net := range networks {
		symbols.Record(net)
	}
	symbols.Freeze()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	graph, flowDiags, err := flow.Build(networks)
	if err != nil {
		a.logger.Error("Graph construction failed",
			logging.PassID(passID.String()), logging.Error(err))
		return nil, stageError(StageFlow, err)
	}
	diags = append(diags, flowDiags...)

	d := diagram.Synthesize(graph)

	a.logger.Info("Analysis pass completed",
		logging.PassID(passID.String()),
		logging.Int("networks", len(networks)),
		logging.Int("nodes", len(graph.Nodes)),
		logging.Int("diagnostics", len(diags)),
		logging.Duration("elapsed", time.Since(start)))

	return &Context{
		passID:      passID,
		createdAt:   time.Now(),
		networks:    networks,
		graph:       graph,
		diagram:     d,
		symbols:     symbols,
		diagnostics: diags,
	}, nil
}

// decodeAll decodes every record on the worker pool, preserving program
// order. Records that fail to decode become DecodeFailed diagnostics and
// are dropped; the pass only aborts when nothing survives.
func (a *Analyzer) decodeAll(ctx context.Context, records []container.Record) ([]instr.Network, []diag.Diagnostic, error) {
	decoded, errs, cancelled := parallel.MapOrdered(ctx, a.workers, records,
		func(rec container.Record) (instr.Network, error) {
			return instr.DecodeRecord(rec.NetworkID, rec.Payload, rec.Comment)
		})
	if cancelled != nil {
		return nil, nil, cancelled
	}

	var networks []instr.Network
	var diags []diag.Diagnostic
	for i, err := range errs {
		if err != nil {
			diags = append(diags, diag.Errorf(diag.DecodeFailed, records[i].NetworkID,
				"network %d dropped: %v", records[i].NetworkID, err))
			continue
		}
		networks = append(networks, decoded[i])
	}
	if len(networks) == 0 {
		return nil, nil, stageError(StageDecode,
			fmt.Errorf("%w: %d record(s) all failed", ErrNothingDecoded, len(records)))
	}
	return networks, diags, nil
}
