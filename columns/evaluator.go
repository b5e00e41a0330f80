// Package columns applies one computed column's formula across the rows of a
// dynamic table and shapes the per-row outcomes for storage. Persistence of
// the resulting cells stays with the caller.
package columns

import (
	"context"

	"github.com/pkg/errors"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
	"golang.org/x/sync/errgroup"

	"github.com/rowbase/formula"
)

// Status tags a stored cell so callers can distinguish a valid result from
// the ERROR marker.
type Status string

const (
	StatusComplete Status = "complete"
	StatusFailed   Status = "failed"
)

// ErrorCellValue is stored in place of a result when evaluating the
// expression for a row fails.
const ErrorCellValue = "ERR"

const (
	// chunkSize is the number of rows handed to one worker task.
	chunkSize = 50
	// maxWorkers bounds concurrent chunk evaluation.
	maxWorkers = 4
)

// Cell is the storage-ready outcome for one row of a computed column. NA
// marks a complete cell whose inputs were missing; it is displayed as a
// neutral placeholder rather than a failure.
type Cell struct {
	Row    string
	Value  string
	NA     bool
	Status Status
}

// Evaluator evaluates one column's expression across many rows. The
// expression is parsed and validated once; row evaluations share the
// resulting AST and may run concurrently.
type Evaluator struct {
	expression string
	ast        *formula.Node
}

// NewEvaluator parses and validates a column expression against the table's
// column keys.
func NewEvaluator(expression string, columnKeys []string) (*Evaluator, error) {
	ast, err := formula.Parse(expression, columnKeys)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing formula %q", expression)
	}
	return &Evaluator{expression: expression, ast: ast}, nil
}

// Expression returns the raw expression this evaluator was built from.
func (e *Evaluator) Expression() string {
	return e.expression
}

// EvaluateRow evaluates the column for a single row. Evaluation faults are
// absorbed into a failed cell holding ErrorCellValue; they indicate an
// authoring mistake, not a batch-level failure.
func (e *Evaluator) EvaluateRow(rowID string, row formula.RowValues) Cell {
	res, err := formula.Run(e.ast, row)
	if err != nil {
		return Cell{Row: rowID, Value: ErrorCellValue, Status: StatusFailed}
	}
	return Cell{Row: rowID, Value: res.Value, NA: res.NA, Status: StatusComplete}
}

// EvaluateAll evaluates the column for every row, in chunks with bounded
// concurrency. Cells come back ordered by row ID so the output is
// deterministic for identical input. The context is checked between rows;
// cancellation aborts the batch.
func (e *Evaluator) EvaluateAll(ctx context.Context, rows map[string]formula.RowValues) ([]Cell, error) {
	ids := maps.Keys(rows)
	slices.Sort(ids)
	cells := make([]Cell, len(ids))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxWorkers)
	for begin := 0; begin < len(ids); begin += chunkSize {
		begin := begin
		end := begin + chunkSize
		if end > len(ids) {
			end = len(ids)
		}
		g.Go(func() error {
			for i := begin; i < end; i++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				cells[i] = e.EvaluateRow(ids[i], rows[ids[i]])
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, errors.Wrapf(err, "evaluating formula %q", e.expression)
	}
	return cells, nil
}
