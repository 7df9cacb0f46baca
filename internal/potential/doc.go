// Package potential implements the interaction kernels that drive the tally
// engine: a Lennard-Jones cutoff pair potential and harmonic bond, angle and
// dihedral terms over an explicit topology.
//
// Each kernel's Compute method evaluates the calling thread's share of the
// interactions, writes forces into the thread's private force slice, and
// tallies energy and virial through the category engine. Kernels never touch
// another thread's state.
package potential
