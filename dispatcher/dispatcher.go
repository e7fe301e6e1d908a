// Package dispatcher implements the per-chain batching dispatcher
// described in spec.md §4.3: many relay tasks submit messages destined for
// the same chain; the dispatcher coalesces concurrent submissions into
// well-formed transactions and routes the resulting events back to each
// originator's reply slot.
package dispatcher

import (
	"context"

	sdkerrors "cosmossdk.io/errors"
	"github.com/google/uuid"
	"github.com/samber/lo"

	"cosmossdk.io/log"

	"github.com/tokenize-x/ibc-relayer/chain"
	"github.com/tokenize-x/ibc-relayer/ibc"
	"github.com/tokenize-x/ibc-relayer/runtime"
)

// DefaultBatchCap is the message count at which the dispatcher stops
// draining further submissions and submits what it has (spec.md §4.3
// step 2). The submission that reaches the cap is still included whole, so
// a batch can hold more messages than the cap.
const DefaultBatchCap = 64

// Dispatcher serialises concurrent message submissions to one chain driver
// into well-formed transactions (spec.md §4.3). One Dispatcher exists per
// chain; the engine holds a reference to the dispatcher for each chain it
// relays to or from, rather than the driver holding a back-reference to the
// dispatcher (spec.md §9 design note on breaking the cycle).
type Dispatcher struct {
	driver chain.Driver
	log    log.Logger

	inboxSend chan<- chain.Submission
	inboxRecv <-chan chain.Submission
	batchCap  int

	maxAttempts int
}

// Option configures a Dispatcher at construction time.
type Option func(*Dispatcher)

// WithBatchCap overrides DefaultBatchCap.
func WithBatchCap(cap int) Option {
	return func(d *Dispatcher) { d.batchCap = cap }
}

// WithMaxAttempts overrides defaultMaxAttempts for transient-failure retry.
func WithMaxAttempts(attempts int) Option {
	return func(d *Dispatcher) { d.maxAttempts = attempts }
}

// New constructs a Dispatcher for driver. Run must be spawned onto a
// runtime.Runtime before any SendMessages call can make progress.
func New(driver chain.Driver, logger log.Logger, opts ...Option) *Dispatcher {
	inboxSend, inboxRecv := runtime.NewBoundedChannel[chain.Submission](DefaultBatchCap)
	d := &Dispatcher{
		driver:      driver,
		log:         logger.With("chain_id", driver.ChainID(), "module", "dispatcher"),
		inboxSend:   inboxSend,
		inboxRecv:   inboxRecv,
		batchCap:    DefaultBatchCap,
		maxAttempts: defaultMaxAttempts,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// SendMessages is the message_sink of spec.md §4.1/§4.3: it enqueues msgs
// for the next batch and returns a channel that receives exactly one
// chain.Result once the batch containing msgs has been submitted (or has
// exhausted its retries). The returned channel is never closed without a
// value on it first (spec.md §4.3 "reply-slot contract").
func (d *Dispatcher) SendMessages(ctx context.Context, msgs []chain.Message) (<-chan chain.Result, error) {
	replyTx, replyRx := runtime.NewReplyChannel[chain.Result]()

	sub := chain.Submission{Messages: msgs, Reply: replyTx}
	select {
	case d.inboxSend <- sub:
		return replyRx, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Run is the dispatcher worker loop (spec.md §4.3 "Algorithm"). It blocks
// until ctx is cancelled, at which point any submission still in the
// inbox is drained and failed with ibc.ErrCancelled so no reply slot is
// orphaned.
func (d *Dispatcher) Run(ctx context.Context) error {
	for {
		select {
		case sub := <-d.inboxRecv:
			batch := d.drain(sub)
			d.submitBatch(ctx, batch)
		case <-ctx.Done():
			d.drainRemaining()
			return ctx.Err()
		}
	}
}

// drain non-blockingly collects additional ready submissions after sub,
// stopping once the cap is reached or nothing more is immediately ready
// (spec.md §4.3 step 2).
func (d *Dispatcher) drain(first chain.Submission) []chain.Submission {
	batch := []chain.Submission{first}
	total := len(first.Messages)

	for total < d.batchCap {
		select {
		case sub := <-d.inboxRecv:
			batch = append(batch, sub)
			total += len(sub.Messages)
		default:
			return batch
		}
	}
	return batch
}

// drainRemaining fails every submission still queued after the dispatcher
// has been asked to stop.
func (d *Dispatcher) drainRemaining() {
	for {
		select {
		case sub := <-d.inboxRecv:
			replyErr(sub.Reply, ibc.ErrCancelled)
		default:
			return
		}
	}
}

// submitBatch implements spec.md §4.3 steps 3-5: concatenate, submit,
// shard events back by recorded index ranges, or fail the whole batch on a
// batch-fatal error.
func (d *Dispatcher) submitBatch(ctx context.Context, batch []chain.Submission) {
	offsets := make([]int, len(batch)+1)
	running := 0
	for i, sub := range batch {
		offsets[i] = running
		running += len(sub.Messages)
	}
	offsets[len(batch)] = running

	combined := lo.FlatMap(batch, func(sub chain.Submission, _ int) []chain.Message {
		return sub.Messages
	})

	batchID := uuid.NewString()
	d.log.Debug("submitting batch", "batch_id", batchID, "submissions", len(batch), "messages", len(combined))

	events, err := submitWithRetry(ctx, d.maxAttempts, defaultRetryInterval, func(ctx context.Context) ([][]chain.Event, error) {
		return d.driver.SubmitTx(ctx, combined)
	})
	if err != nil {
		d.log.Error("batch submission failed", "batch_id", batchID, "error", err)
		for _, sub := range batch {
			replyErr(sub.Reply, err)
		}
		return
	}

	for i, sub := range batch {
		shard := events[offsets[i]:offsets[i+1]]
		sub.Reply <- chain.Result{Events: shard}
	}
}

func replyErr(reply chan<- chain.Result, err error) {
	reply <- chain.Result{Err: sdkerrors.Wrap(err, "batch submission")}
}
