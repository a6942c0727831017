package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/task-tracker/internal/api/metrics"
	"github.com/99minutos/task-tracker/internal/core/domain"
	"github.com/99minutos/task-tracker/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
	drainTimeout   = 5 * time.Second
)

// Dispatcher routes task activity to a fixed set of workers using consistent
// hashing on the task id, guaranteeing per-task ordering of the audit trail.
type Dispatcher struct {
	workers  []chan domain.TaskActivity
	recorder ports.ActivityRecorder
	log      zerolog.Logger
	wg       sync.WaitGroup
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, recorder ports.ActivityRecorder, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers:  make([]chan domain.TaskActivity, numWorkers),
		recorder: recorder,
		log:      log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.TaskActivity, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Wait blocks until every worker has returned.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Publish hands an entry to the worker owning its task. It never blocks:
// when that worker's buffer is full the entry is dropped and counted.
func (d *Dispatcher) Publish(activity domain.TaskActivity) {
	idx := d.shardIndex(activity.TaskID)
	select {
	case d.workers[idx] <- activity:
		metrics.ActivityQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
	default:
		metrics.ActivityDroppedTotal.Inc()
		d.log.Warn().
			Str("task_id", activity.TaskID).
			Str("action", string(activity.Action)).
			Int("worker_id", idx).
			Msg("activity queue full, entry dropped")
	}
}

// shardIndex maps a task id deterministically to a worker index.
func (d *Dispatcher) shardIndex(taskID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(taskID))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.TaskActivity) {
	defer d.wg.Done()
	label := strconv.Itoa(id)

	for {
		select {
		case <-ctx.Done():
			d.drain(context.WithoutCancel(ctx), id, ch)
			return
		case activity, ok := <-ch:
			if !ok {
				return
			}
			metrics.ActivityQueueDepth.WithLabelValues(label).Set(float64(len(ch)))
			d.record(ctx, id, activity)
		}
	}
}

// drain records whatever is still buffered once the worker has been told to stop.
func (d *Dispatcher) drain(ctx context.Context, id int, ch <-chan domain.TaskActivity) {
	ctx, cancel := context.WithTimeout(ctx, drainTimeout)
	defer cancel()
	for {
		select {
		case activity := <-ch:
			d.record(ctx, id, activity)
		default:
			metrics.ActivityQueueDepth.WithLabelValues(strconv.Itoa(id)).Set(0)
			return
		}
	}
}

func (d *Dispatcher) record(ctx context.Context, id int, activity domain.TaskActivity) {
	start := time.Now()
	err := d.recorder.Record(ctx, activity)
	result := "ok"
	if err != nil {
		result = "error"
		d.log.Error().Err(err).
			Str("task_id", activity.TaskID).
			Int("worker_id", id).
			Msg("activity recording failed")
	}
	metrics.ActivityRecordDuration.WithLabelValues(result).Observe(time.Since(start).Seconds())
}
