// Package device provides the parallel compute executor the simulation
// pipeline dispatches kernels to.
//
// The model mirrors a GPU compute queue: Dispatch launches n kernel
// invocations and returns immediately, Barrier blocks the host until every
// outstanding invocation has finished and its writes are visible, and
// buffers are only observed by the host through scoped Map/Release handles.
package device

import (
	"errors"
	"runtime"
	"sync"
)

// parallelThreshold is the minimum invocation count to use the worker pool.
// Below this, running on the calling goroutine is faster due to channel overhead.
const parallelThreshold = 64

var (
	// ErrClosed is returned when work is submitted to a closed device.
	ErrClosed = errors.New("device: closed")
	// ErrMapFailed reports that a buffer could not be mapped for host access.
	ErrMapFailed = errors.New("device: buffer map failed")
	// ErrUnmapFailed reports that a mapping could not be released cleanly.
	ErrUnmapFailed = errors.New("device: buffer unmap failed")
	// ErrAlreadyMapped is returned when a buffer is mapped twice.
	ErrAlreadyMapped = errors.New("device: buffer already mapped")
	// ErrSizeMismatch is returned by copies and uploads of the wrong length.
	ErrSizeMismatch = errors.New("device: buffer size mismatch")
)

// Options configures a Device.
type Options struct {
	Workers   int       // worker goroutines; 0 = GOMAXPROCS
	ChunkSize int       // invocations per work item; 0 = split evenly across workers
	Faults    FaultFunc // optional fault injection hook
}

// Stats counts device activity since creation.
type Stats struct {
	Launches    uint64
	Invocations uint64
	Barriers    uint64
}

// workItem is a contiguous range of invocations of one kernel.
type workItem struct {
	start, end int
	kernel     func(i int)
	done       *sync.WaitGroup
}

// Device executes kernels on a persistent pool of worker goroutines.
// All methods must be called from a single host goroutine.
type Device struct {
	numWorkers int
	chunkSize  int
	faults     FaultFunc

	// Worker pool channels
	workChan chan workItem  // sends work to workers
	stopChan chan struct{}  // signals workers to exit
	wg       sync.WaitGroup // tracks active workers

	pending sync.WaitGroup // outstanding invocations
	closed  bool
	stats   Stats
}

// New creates a device and starts its workers.
func New(opts Options) *Device {
	numWorkers := opts.Workers
	if numWorkers <= 0 {
		numWorkers = runtime.GOMAXPROCS(0)
	}

	d := &Device{
		numWorkers: numWorkers,
		chunkSize:  opts.ChunkSize,
		faults:     opts.Faults,
		workChan:   make(chan workItem, numWorkers),
		stopChan:   make(chan struct{}),
	}

	for i := 0; i < numWorkers; i++ {
		d.wg.Add(1)
		go d.worker()
	}
	return d
}

// Workers returns the number of worker goroutines.
func (d *Device) Workers() int {
	return d.numWorkers
}

// Stats returns activity counters.
func (d *Device) Stats() Stats {
	return d.stats
}

// SetFaults replaces the fault injection hook.
func (d *Device) SetFaults(f FaultFunc) {
	d.Barrier()
	d.faults = f
}

// worker runs in a goroutine, processing work items until stopped.
func (d *Device) worker() {
	defer d.wg.Done()

	for {
		select {
		case <-d.stopChan:
			return
		case item := <-d.workChan:
			for i := item.start; i < item.end; i++ {
				item.kernel(i)
			}
			item.done.Done()
		}
	}
}

// Dispatch launches kernel for invocation ids 0..n-1.
// Results are only guaranteed visible to the host after Barrier.
func (d *Device) Dispatch(n int, kernel func(i int)) error {
	if d.closed {
		return ErrClosed
	}
	if n <= 0 {
		return nil
	}

	d.stats.Launches++
	d.stats.Invocations += uint64(n)

	if n < parallelThreshold {
		for i := 0; i < n; i++ {
			kernel(i)
		}
		return nil
	}

	chunkSize := d.chunkSize
	if chunkSize <= 0 {
		chunkSize = (n + d.numWorkers - 1) / d.numWorkers
	}

	for start := 0; start < n; start += chunkSize {
		end := start + chunkSize
		if end > n {
			end = n
		}
		d.pending.Add(1)
		d.workChan <- workItem{start: start, end: end, kernel: kernel, done: &d.pending}
	}
	return nil
}

// Barrier blocks until all dispatched invocations have completed.
// Every write made by those invocations happens-before Barrier returns.
func (d *Device) Barrier() {
	d.pending.Wait()
	d.stats.Barriers++
}

// Close waits for outstanding work and stops the workers.
func (d *Device) Close() {
	if d.closed {
		return
	}
	d.Barrier()
	d.closed = true
	close(d.stopChan)
	d.wg.Wait()
}

// fault consults the injection hook.
func (d *Device) fault(op Op, buffer string) error {
	if d.faults == nil {
		return nil
	}
	return d.faults(op, buffer)
}
