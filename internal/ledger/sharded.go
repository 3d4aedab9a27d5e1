package ledger

import (
	"context"
	"time"

	"payments_engine/internal/domain"

	"golang.org/x/sync/errgroup"
)

const DefaultQueueSize = 1024

// Entry is one transaction addressed to an account. Line is the position of
// the record in the input and is only used for reporting.
type Entry struct {
	Line      int
	AccountID domain.AccountID
	Tx        domain.Transaction
}

// ReportFunc receives the outcome of every applied entry and how long the
// account took to apply it. It is called from the shard goroutines and must be
// safe for concurrent use.
type ReportFunc func(entry Entry, err error, elapsed time.Duration)

// Sharded splits accounts over independent ledgers. All entries of an
// account go to the same shard in input order, so per-account outcomes are
// the same as with a single Ledger.
type Sharded struct {
	shards    []*Ledger
	queueSize int
}

func NewSharded(shards, queueSize int) *Sharded {
	if shards < 1 {
		shards = 1
	}
	if queueSize < 0 {
		queueSize = DefaultQueueSize
	}

	s := &Sharded{
		shards:    make([]*Ledger, shards),
		queueSize: queueSize,
	}
	for i := range s.shards {
		s.shards[i] = New()
	}
	return s
}

func (s *Sharded) Shards() int {
	return len(s.shards)
}

func (s *Sharded) shardFor(id domain.AccountID) *Ledger {
	return s.shards[s.route(id)]
}

func (s *Sharded) route(id domain.AccountID) int {
	return int(id) % len(s.shards)
}

// Process applies entries until in is closed or ctx is done. Every entry
// read from in before cancellation is applied and reported.
func (s *Sharded) Process(ctx context.Context, in <-chan Entry, report ReportFunc) error {
	g, ctx := errgroup.WithContext(ctx)

	queues := make([]chan Entry, len(s.shards))
	for i := range queues {
		queues[i] = make(chan Entry, s.queueSize)
	}

	for i, shard := range s.shards {
		shard, queue := shard, queues[i]
		g.Go(func() error {
			for entry := range queue {
				start := time.Now()
				err := shard.ApplyForAccount(entry.AccountID, entry.Tx)
				if report != nil {
					report(entry, err, time.Since(start))
				}
			}
			return nil
		})
	}

	g.Go(func() error {
		defer func() {
			for _, queue := range queues {
				close(queue)
			}
		}()

		for {
			if err := ctx.Err(); err != nil {
				return err
			}

			select {
			case <-ctx.Done():
				return ctx.Err()
			case entry, ok := <-in:
				if !ok {
					return nil
				}
				select {
				case queues[s.route(entry.AccountID)] <- entry:
				case <-ctx.Done():
					return ctx.Err()
				}
			}
		}
	})

	return g.Wait()
}

// Account returns a copy of the account state from its shard. It must not be
// called while Process is running.
func (s *Sharded) Account(id domain.AccountID) (domain.Account, bool) {
	return s.shardFor(id).Account(id)
}

func (s *Sharded) Len() int {
	var n int
	for _, shard := range s.shards {
		n += shard.Len()
	}
	return n
}

// Snapshot merges the snapshots of all shards in ascending id order. It must
// not be called while Process is running.
func (s *Sharded) Snapshot() []AccountSnapshot {
	result := make([]AccountSnapshot, 0, s.Len())
	for _, shard := range s.shards {
		for id, account := range shard.accounts {
			result = append(result, snapshotOf(id, account))
		}
	}

	sortSnapshots(result)
	return result
}
