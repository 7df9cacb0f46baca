// Package tally provides thread-parallel energy and virial accumulation for
// force-field evaluation loops.
//
// Each worker thread owns a [ThreadData] accumulator and exclusive slices of
// shared per-atom arenas, so the hot tally path needs no locking:
//
//   - [ThreadData]: per-thread scalar energies, virial tensors, atom slices
//   - [Engine]: category-tagged tally operations and the merge step
//   - [Pool]: fixed worker set, thread identity, full barrier
//
// # Example
//
//	pool, _ := tally.NewPool(4)
//	eng, _ := tally.NewPairEngine(totals, pool)
//	pool.Run(func(tid int) {
//		thr := data[tid]
//		eng.SetupAtom(nall, thr)
//		kernel(tid, thr) // calls eng.Tally per interaction
//		eng.Reduce(store, thr)
//	})
//
// # Thread Safety
//
// Tally operations touch only the calling thread's accumulator and its
// exclusive arena slices. Reduce is the single cross-thread code path; it
// synchronizes on the pool barrier before reading other threads' data.
package tally
