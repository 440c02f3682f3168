// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package stress runs timed workloads against ltq.Linked and checks the
// queue's delivery and traversal properties while they run.
package stress

import (
	"context"
	"fmt"
	"sync"
	"time"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/iox"
	"code.hybscloud.com/ltq"
	"github.com/puzpuzpuz/xsync"
)

// seqBits is the width of the per-producer sequence in an item value.
const seqBits = 40

// sampleInterval is the period of the queue monitor.
const sampleInterval = 100 * time.Millisecond

// Run executes the workload described by cfg. It returns an error only if
// cfg is invalid; observed violations are reported through Report.Err.
// Cancelling ctx ends the run early.
func Run(ctx context.Context, cfg *Config, log *Logger) (*Report, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	q := ltq.Build[int64](ltq.New().Spins(cfg.Spins).SweepThreshold(cfg.SweepThreshold))
	log.Info("Starting run", "mode", cfg.Mode, "duration", cfg.Duration(),
		"producers", cfg.Producers, "consumers", cfg.Consumers)

	var r *Report
	switch cfg.Mode {
	case ModeTraverse:
		r = runTraverse(ctx, q, cfg, log)
	default:
		r = runFlow(ctx, q, cfg, log)
	}
	log.Info("Run finished", "report", r.String())
	return r, nil
}

// flow holds the shared state of a buffered or transfer run.
type flow struct {
	q    *ltq.Linked[int64]
	cfg  *Config
	log  *Logger
	seen *xsync.MapOf[int64, struct{}]

	produced   *xsync.Counter
	consumed   *xsync.Counter
	duplicates *xsync.Counter
	withdrawn  *xsync.Counter
}

func runFlow(ctx context.Context, q *ltq.Linked[int64], cfg *Config, log *Logger) *Report {
	f := &flow{
		q:          q,
		cfg:        cfg,
		log:        log,
		seen:       xsync.NewIntegerMapOf[int64, struct{}](),
		produced:   new(xsync.Counter),
		consumed:   new(xsync.Counter),
		duplicates: new(xsync.Counter),
		withdrawn:  new(xsync.Counter),
	}
	start := time.Now()

	produceCtx, stopProducers := context.WithTimeout(ctx, cfg.Duration())
	defer stopProducers()
	drainCtx, stopConsumers := context.WithCancel(context.Background())
	defer stopConsumers()

	var cwg sync.WaitGroup
	for id := range cfg.Consumers {
		cwg.Add(1)
		go func() {
			defer cwg.Done()
			f.consume(drainCtx, id)
		}()
	}

	monitorDone := make(chan struct{})
	go func() {
		defer close(monitorDone)
		monitor(produceCtx, q, log)
	}()

	var pwg sync.WaitGroup
	for id := range cfg.Producers {
		pwg.Add(1)
		go func() {
			defer pwg.Done()
			f.produce(produceCtx, int64(id))
		}()
	}
	pwg.Wait()
	<-monitorDone
	log.Debug("Producers stopped", "produced", f.produced.Value())

	// Drain: consumers keep going until every accepted item is received
	// or the drain timeout passes.
	deadline := time.Now().Add(cfg.DrainTimeout())
	backoff := iox.Backoff{}
	for f.consumed.Value()+f.duplicates.Value() < f.produced.Value() && time.Now().Before(deadline) {
		backoff.Wait()
	}
	stopConsumers()
	cwg.Wait()

	r := &Report{
		Mode:       cfg.Mode,
		Elapsed:    time.Since(start),
		Produced:   f.produced.Value(),
		Consumed:   f.consumed.Value(),
		Duplicates: f.duplicates.Value(),
		Withdrawn:  f.withdrawn.Value(),
		Leftover:   q.Len(),
	}
	if n := q.WaitingConsumerCount(); n != 0 {
		log.Error("Waiting consumers left after drain", "count", n)
		r.Violations++
	}
	return r
}

func (f *flow) produce(ctx context.Context, id int64) {
	base := id << seqBits
	for seq := int64(0); ctx.Err() == nil; seq++ {
		v := base | seq
		if f.cfg.Mode == ModeBuffered {
			if err := f.q.Enqueue(&v); err != nil {
				f.log.Error("Enqueue failed", "err", err)
				return
			}
			f.produced.Inc()
			continue
		}

		var err error
		if seq%2 == 0 {
			err = f.q.Transfer(ctx, &v)
		} else {
			err = f.q.TryTransferTimeout(ctx, &v, f.cfg.PollTimeout())
		}
		switch {
		case err == nil:
			f.produced.Inc()
		case ltq.IsWouldBlock(err), ctx.Err() != nil:
			f.withdrawn.Inc()
			f.log.Trace("Transfer withdrawn", "producer", id, "seq", seq, "err", err)
		default:
			f.log.Error("Transfer failed", "err", err)
			return
		}
	}
}

func (f *flow) consume(ctx context.Context, id int) {
	backoff := iox.Backoff{}
	for ctx.Err() == nil {
		var v int64
		var err error
		switch id % 3 {
		case 0:
			v, err = f.q.Take(ctx)
		case 1:
			v, err = f.q.PollTimeout(ctx, f.cfg.PollTimeout())
		default:
			v, err = f.q.Dequeue()
		}
		if err != nil {
			if ltq.IsWouldBlock(err) {
				backoff.Wait()
			}
			continue
		}
		backoff.Reset()
		f.record(v)
	}
}

func (f *flow) record(v int64) {
	if _, loaded := f.seen.LoadOrStore(v, struct{}{}); loaded {
		f.duplicates.Inc()
		f.log.Error("Duplicate delivery", "producer", v>>seqBits, "seq", v&(1<<seqBits-1))
		return
	}
	f.consumed.Inc()
}

// monitor logs queue shape until ctx is done.
func monitor(ctx context.Context, q *ltq.Linked[int64], log *Logger) {
	if log.Level() > LevelDebug {
		<-ctx.Done()
		return
	}
	t := time.NewTicker(sampleInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			log.Debug("Queue", "len", q.Len(), "waiting", q.WaitingConsumerCount())
		}
	}
}

func runTraverse(ctx context.Context, q *ltq.Linked[int64], cfg *Config, log *Logger) *Report {
	runCtx, stop := context.WithTimeout(ctx, cfg.Duration())
	defer stop()
	start := time.Now()

	// Mutator i adds and removes only the value i+1, so each Remove has
	// exactly one node to find.
	var traversals, mutations, violations atomix.Int64
	check := func(v int64) {
		if v < 1 || v > int64(cfg.Producers) {
			violations.Add(1)
			log.Error("Traversal yielded a foreign value", "value", v)
		}
	}

	var wg sync.WaitGroup
	for id := range cfg.Consumers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for n := id; runCtx.Err() == nil; n++ {
				traverse(q, n, check)
				traversals.Add(1)
			}
		}()
	}
	for id := range cfg.Producers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v := int64(id) + 1
			for runCtx.Err() == nil {
				q.Enqueue(&v)
				if !q.Remove(v) {
					violations.Add(1)
					log.Error("Remove found nothing after Enqueue", "value", v)
				}
				mutations.Add(1)
			}
		}()
	}
	wg.Wait()

	r := &Report{
		Mode:       ModeTraverse,
		Elapsed:    time.Since(start),
		Traversals: traversals.Load(),
		Mutations:  mutations.Load(),
		Violations: violations.Load(),
		Leftover:   q.Len(),
	}
	if r.Traversals == 0 {
		r.Violations++
		log.Error("No traversal completed")
	}
	return r
}

// traverse runs the n-th traversal style over q.
func traverse(q *ltq.Linked[int64], n int, check func(int64)) {
	switch n % 4 {
	case 0:
		q.ForEach(func(v int64) bool {
			check(v)
			return true
		})
	case 1:
		for it := q.Iter(); it.Next(); {
			check(it.Value())
		}
	case 2:
		q.Spliterator().ForEachRemaining(check)
	default:
		s := q.Spliterator()
		if left := s.TrySplit(); left != nil {
			left.ForEachRemaining(check)
		}
		for v := range s.All() {
			check(v)
		}
	}
}

// Whitebox returns the configuration of the add and remove versus
// traversal scenario.
func Whitebox(d time.Duration) *Config {
	cfg := DefaultConfig()
	cfg.Mode = ModeTraverse
	cfg.DurationMs = int(d / time.Millisecond)
	cfg.Producers = 1
	cfg.Consumers = 4
	return cfg
}

// Describe formats cfg for logs and errors.
func Describe(cfg *Config) string {
	return fmt.Sprintf("mode=%s duration=%v producers=%d consumers=%d spins=%d sweep=%d",
		cfg.Mode, cfg.Duration(), cfg.Producers, cfg.Consumers, cfg.Spins, cfg.SweepThreshold)
}
