package engine

import (
	"sync/atomic"

	"github.com/cespare/xxhash/v2"
)

// ProgressSink receives run progress. Start is called once before the first
// file, Update after each completion (in completion order, not input order),
// and Stop once the run finishes. Implementations must be safe for
// concurrent Update calls.
type ProgressSink interface {
	Start(total int)
	Update(current, total int)
	Stop()
}

// NopSink discards all progress. Valid wherever a sink is required.
type NopSink struct{}

func (NopSink) Start(int)       {}
func (NopSink) Update(int, int) {}
func (NopSink) Stop()           {}

const progressShards = 8

// tracker fans completion ticks into a sink. Counters are sharded by a hash
// of the file path to keep atomic contention off the hot path when many
// workers finish at once.
type tracker struct {
	total int
	done  [progressShards]int64
	sink  ProgressSink
}

func newTracker(total int, sink ProgressSink) *tracker {
	if sink == nil {
		sink = NopSink{}
	}
	t := &tracker{total: total, sink: sink}
	t.sink.Start(total)
	return t
}

// Tick records one completed file and forwards the running total.
func (t *tracker) Tick(path string) {
	shard := xxhash.Sum64String(path) % progressShards
	atomic.AddInt64(&t.done[shard], 1)
	t.sink.Update(t.Completed(), t.total)
}

// Completed sums all shards.
func (t *tracker) Completed() int {
	var total int64
	for i := range t.done {
		total += atomic.LoadInt64(&t.done[i])
	}
	return int(total)
}

func (t *tracker) Stop() {
	t.sink.Stop()
}
