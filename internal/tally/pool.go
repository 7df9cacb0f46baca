package tally

import "sync"

// Pool is the fixed set of worker threads shared by every engine in a
// simulation. It provides thread identity, the full barrier used before
// merge steps, and the critical section guarding shared totals.
//
// The pool persists for the whole run; no worker is spawned per timestep.
type Pool struct {
	nthreads int
	mu       sync.Mutex
	bar      barrier
	last     Style
}

func NewPool(nthreads int) (*Pool, error) {
	if nthreads < 1 {
		return nil, ErrThreadCount
	}
	p := &Pool{nthreads: nthreads, last: StylePair}
	p.bar.init(nthreads)
	return p, nil
}

func (p *Pool) NThreads() int { return p.nthreads }

// SetLastStyle marks the final interaction category scheduled this timestep.
// The engine reducing that category also folds the force/torque arenas.
func (p *Pool) SetLastStyle(s Style) { p.last = s }

func (p *Pool) LastStyle() Style { return p.last }

// Run fans fn out over all workers and blocks until every worker returns.
func (p *Pool) Run(fn func(tid int)) {
	var wg sync.WaitGroup
	wg.Add(p.nthreads)
	for tid := 0; tid < p.nthreads; tid++ {
		go func(id int) {
			defer wg.Done()
			fn(id)
		}(tid)
	}
	wg.Wait()
}

// Barrier blocks until every worker has called it. It carries no timeout:
// an abandoned worker stalls the timestep, which is a fatal condition.
func (p *Pool) Barrier() { p.bar.await() }

func (p *Pool) critical(fn func()) {
	p.mu.Lock()
	fn()
	p.mu.Unlock()
}

// barrier is a reusable full barrier. A generation counter lets the same
// barrier be crossed many times per timestep without reallocation.
type barrier struct {
	mu      sync.Mutex
	cond    *sync.Cond
	parties int
	arrived int
	gen     int
}

func (b *barrier) init(parties int) {
	b.parties = parties
	b.cond = sync.NewCond(&b.mu)
}

func (b *barrier) await() {
	b.mu.Lock()
	gen := b.gen
	b.arrived++
	if b.arrived == b.parties {
		b.arrived = 0
		b.gen++
		b.cond.Broadcast()
	} else {
		for gen == b.gen {
			b.cond.Wait()
		}
	}
	b.mu.Unlock()
}
