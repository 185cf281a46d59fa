package detect

import (
	"sync"
	"sync/atomic"
)

// workerPool runs batches of closures on a fixed set of goroutines. Each
// worker owns a queue and steals from the others when its own is empty, so
// a few expensive pairs do not leave the rest of the pool idle.
type workerPool struct {
	workers int
	queues  []chan func()
	wg      sync.WaitGroup
	closed  atomic.Bool
}

func newWorkerPool(workers int) *workerPool {
	if workers < 1 {
		workers = 1
	}
	size := max(workers*4, 8)
	p := &workerPool{workers: workers, queues: make([]chan func(), workers)}
	for i := range p.queues {
		p.queues[i] = make(chan func(), size)
	}
	p.wg.Add(workers)
	for i := range workers {
		go p.run(i)
	}
	return p
}

func (p *workerPool) run(id int) {
	defer p.wg.Done()
	own := p.queues[id]
	for {
		select {
		case fn, ok := <-own:
			if !ok {
				return
			}
			fn()
			continue
		default:
		}
		if fn := p.steal(id); fn != nil {
			fn()
			continue
		}
		fn, ok := <-own
		if !ok {
			return
		}
		fn()
	}
}

func (p *workerPool) steal(id int) func() {
	for i := 1; i < p.workers; i++ {
		select {
		case fn, ok := <-p.queues[(id+i)%p.workers]:
			if ok {
				return fn
			}
		default:
		}
	}
	return nil
}

// executeAll distributes work round-robin and blocks until every item has
// run. It is a no-op after close.
func (p *workerPool) executeAll(work []func()) {
	if len(work) == 0 || p.closed.Load() {
		return
	}
	var done sync.WaitGroup
	done.Add(len(work))
	for i, fn := range work {
		p.queues[i%p.workers] <- func() {
			defer done.Done()
			fn()
		}
	}
	done.Wait()
}

// close stops the workers once their queues are drained.
func (p *workerPool) close() {
	if p.closed.Swap(true) {
		return
	}
	for _, q := range p.queues {
		close(q)
	}
	p.wg.Wait()
}
