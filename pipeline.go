package changestreamcore

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// PartitionTokenStore resolves the partition token a change stream's
// records should be written under for the current transaction. An empty
// token means the stream currently has no partition to write to and
// should be silently skipped (a stream created mid-backfill, for
// instance); Pipeline logs this at Warn rather than failing the
// transaction over it.
type PartitionTokenStore interface {
	Token(ctx context.Context, cs *ChangeStream) (string, error)
}

// Pipeline is the orchestrator that resolves a transaction's buffered
// WriteOps against every change stream in a Schema and finalizes the
// resulting DataChangeRecords into WriteOps against each stream's backing
// data table.
type Pipeline struct {
	schema *Schema
	tokens PartitionTokenStore
	cfg    *config
}

// NewPipeline builds a Pipeline over schema, using tokens to resolve each
// change stream's current partition.
func NewPipeline(schema *Schema, tokens PartitionTokenStore, options ...Option) *Pipeline {
	return &Pipeline{schema: schema, tokens: tokens, cfg: newConfig(options...)}
}

// BuildChangeStreamWriteOps resolves every op in writeOps against every
// change stream declared in the schema, in declaration order (the
// cross-stream emission order), and returns the WriteOps to append to the
// transaction buffer for the streams' data tables.
//
// Each stream's partition token is resolved concurrently via errgroup — a
// bounded, per-op worker group closed before the next op starts — but the
// grouping state machine itself runs sequentially once tokens are in
// hand, since LogTableMod mutates shared per-stream state that concurrent
// goroutines cannot safely share. This keeps concurrency confined to the
// I/O-bound token lookup and invisible to the emission ordering contract.
func (p *Pipeline) BuildChangeStreamWriteOps(ctx context.Context, writeOps []WriteOp, transactionID string, commitTimestamp time.Time) ([]WriteOp, error) {
	recordsByStream := make(map[*ChangeStream][]*DataChangeRecord)
	lastGroup := make(map[*ChangeStream]*ModGroup)

	for _, op := range writeOps {
		table := TableOf(op)

		tokens := make([]string, len(p.schema.ChangeStreams))
		g, gctx := errgroup.WithContext(ctx)
		for i, cs := range p.schema.ChangeStreams {
			i, cs := i, cs
			g.Go(func() error {
				token, err := p.tokens.Token(gctx, cs)
				if err != nil {
					return errInternal(err, "resolving partition token for change stream %s", cs.Name)
				}
				tokens[i] = token
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}

		for i, cs := range p.schema.ChangeStreams {
			token := tokens[i]
			if token == "" {
				p.cfg.logger.Warn("change stream has no partition token, skipping write op",
					zap.String("change_stream", cs.Name), zap.String("table", table.Name))
				continue
			}

			if err := LogTableMod(op, cs, token, recordsByStream, transactionID, lastGroup, commitTimestamp); err != nil {
				return nil, err
			}
		}
	}

	return p.BuildMutation(recordsByStream), nil
}

// BuildMutation finalizes every change stream's accumulated
// DataChangeRecords — assigning a single per-transaction record_sequence
// in emission order, is_last_record_in_transaction_in_partition per
// partition token, number_of_records_in_transaction per the configured
// RecordCountScope, and number_of_partitions_in_transaction as each
// record's own stream's token count (cross-partition fan-out within one
// stream isn't modeled, so this is always 1 today) — and renders each into
// a WriteOp against its change stream's data table, in schema declaration
// order.
func (p *Pipeline) BuildMutation(recordsByStream map[*ChangeStream][]*DataChangeRecord) []WriteOp {
	var totalRecords int64
	for _, records := range recordsByStream {
		totalRecords += int64(len(records))
	}

	var writeOps []WriteOp
	seq := 0
	for _, cs := range p.schema.ChangeStreams {
		records := recordsByStream[cs]
		if len(records) == 0 {
			continue
		}

		lastIndexByToken := map[string]int{}
		perStreamTokens := map[string]struct{}{}
		for i, r := range records {
			lastIndexByToken[r.PartitionToken] = i
			perStreamTokens[r.PartitionToken] = struct{}{}
		}

		for i, r := range records {
			r.RecordSequence = seq
			seq++

			r.IsLastRecordInTransactionInPartition = lastIndexByToken[r.PartitionToken] == i

			switch p.cfg.recordCountScope {
			case RecordCountScopePerStream:
				r.NumberOfRecordsInTransaction = int64(len(records))
			default:
				r.NumberOfRecordsInTransaction = totalRecords
			}
			// Cross-partition fan-out within a single change stream isn't
			// modeled, so this is always the record's own stream's token
			// count (1 today) regardless of RecordCountScope.
			r.NumberOfPartitionsInTransaction = int64(len(perStreamTokens))

			p.cfg.logger.Debug("closing mod group",
				zap.String("change_stream", cs.Name),
				zap.String("table", r.Table.Name),
				zap.String("mod_type", string(r.ModType)))

			op, err := buildRecordWriteOp(r)
			if err != nil {
				// buildRecordWriteOp only fails on a type-descriptor marshal
				// error, which can't happen for the Type values this package
				// constructs; surfacing it as a dropped record would hide a
				// programming error rather than a data condition.
				panic(err)
			}
			writeOps = append(writeOps, op)

			if p.cfg.observer != nil {
				p.cfg.observer.ObserveRecord(r)
			}
		}
	}

	return writeOps
}
