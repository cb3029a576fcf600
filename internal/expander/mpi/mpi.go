// Package mpi implements the concurrency/resource model's inter-rank axis
// (spec.md §5): a world of ranks executing the same GKR driver in lockstep,
// synchronizing at collection points (coef_combine_vec, gather_vec,
// root_broadcast) and re-aligning every rank's transcript state afterward
// so subsequently squeezed challenges match across ranks.
//
// Real MPI bindings are out of scope — no cgo MPI library appears anywhere
// in the example pack this was built against — so Transport is a small
// interface with a default in-process loopback implementation running at
// WorldSize=1, the common case for a single-machine CLI invocation. A real
// distributed transport (gRPC, as used by this pack's networked services)
// can be substituted without touching internal/expander/gkr, which does
// not import this package.
//
// Grounded on the teacher's internal/vybium-starks-vm/core/field_batch.go
// worker-pool pattern (sync.WaitGroup fan-out, buffered error channel,
// collect-then-check), generalized from parallel field-element batches to
// per-rank vector reduction.
package mpi

import (
	"fmt"
	"sync"

	"github.com/vybium/expander/internal/expander/field"
	"github.com/vybium/expander/internal/expander/poly"
	"github.com/vybium/expander/internal/expander/transcript"
)

// Transport is the collective-communication contract a Config drives.
// WorldSize() and Rank() describe the caller's position in the world;
// Gather and Broadcast are the two collection primitives spec.md §5 names
// (coef_combine_vec is built out of GatherVec, below).
type Transport interface {
	WorldSize() int
	Rank() int
	// Gather collects one field element per rank at the root (rank 0); on
	// non-root ranks the returned slice is nil.
	Gather(local field.Element) ([]field.Element, error)
	// GatherVec collects one vector per rank at the root; on non-root ranks
	// the returned slice is nil.
	GatherVec(local []field.Element) ([][]field.Element, error)
	// GatherBytes collects one byte slice per rank at the root (used for
	// fixed-length digests such as a per-rank Merkle root); on non-root
	// ranks the returned slice is nil.
	GatherBytes(local []byte) ([][]byte, error)
	// Broadcast sends the root's value to every rank, including itself.
	Broadcast(value []byte) ([]byte, error)
}

// LoopbackTransport is a single-process Transport for WorldSize=1: every
// collective operation is the identity. It is the default Transport and
// what the single-rank test suite exercises.
type LoopbackTransport struct{}

func (LoopbackTransport) WorldSize() int { return 1 }
func (LoopbackTransport) Rank() int      { return 0 }

func (LoopbackTransport) Gather(local field.Element) ([]field.Element, error) {
	return []field.Element{local}, nil
}

func (LoopbackTransport) GatherVec(local []field.Element) ([][]field.Element, error) {
	return [][]field.Element{local}, nil
}

func (LoopbackTransport) GatherBytes(local []byte) ([][]byte, error) {
	return [][]byte{local}, nil
}

func (LoopbackTransport) Broadcast(value []byte) ([]byte, error) {
	return append([]byte(nil), value...), nil
}

// Config is the MPI-aware driver's handle on its world: which rank it is,
// how many ranks exist, and the Transport used to talk to the others.
type Config struct {
	Transport Transport
}

// NewSingleRank returns a Config for the common single-machine case.
func NewSingleRank() *Config {
	return &Config{Transport: LoopbackTransport{}}
}

// WorldSize returns the number of ranks in this Config's world.
func (c *Config) WorldSize() int { return c.Transport.WorldSize() }

// Rank returns this process's position in the world, in [0, WorldSize()).
func (c *Config) Rank() int { return c.Transport.Rank() }

// IsRoot reports whether this rank is rank 0, the rank that owns
// aggregated results after a collection point.
func (c *Config) IsRoot() bool { return c.Rank() == 0 }

// CoefCombineVec implements spec.md §5's coef_combine_vec: every rank
// multiplies its local vector by eq(rMPI, rank) (the MPI-axis equality
// weight for its own rank index) and the root sums the weighted vectors.
// Non-root ranks receive a nil result (their contribution was folded into
// the root's).
func (c *Config) CoefCombineVec(local []field.Element, fld field.Field, rMPI []field.Element) ([]field.Element, error) {
	if 1<<uint(len(rMPI)) != c.WorldSize() {
		return nil, fmt.Errorf("mpi: r_mpi has %d variables, does not match world size %d", len(rMPI), c.WorldSize())
	}
	weight := fld.One()
	if len(rMPI) > 0 {
		weight = poly.BuildEqXR(rMPI)[c.Rank()]
	}
	weighted := make([]field.Element, len(local))
	for i, v := range local {
		weighted[i] = v.Mul(weight)
	}

	gathered, err := c.Transport.GatherVec(weighted)
	if err != nil {
		return nil, fmt.Errorf("mpi: coef_combine_vec gather: %w", err)
	}
	if !c.IsRoot() {
		return nil, nil
	}

	out := make([]field.Element, len(local))
	for i := range out {
		out[i] = fld.Zero()
	}
	for _, rankVec := range gathered {
		if len(rankVec) != len(local) {
			return nil, fmt.Errorf("mpi: coef_combine_vec: rank vector length %d does not match local length %d", len(rankVec), len(local))
		}
		for i, v := range rankVec {
			out[i] = out[i].Add(v)
		}
	}
	return out, nil
}

// GatherVec implements spec.md §5's gather_vec: collect every rank's vector
// at the root, preserving rank order. Non-root ranks receive nil.
func (c *Config) GatherVec(local []field.Element) ([][]field.Element, error) {
	gathered, err := c.Transport.GatherVec(local)
	if err != nil {
		return nil, fmt.Errorf("mpi: gather_vec: %w", err)
	}
	if !c.IsRoot() {
		return nil, nil
	}
	return gathered, nil
}

// GatherBytes collects every rank's byte slice at the root, preserving rank
// order — used to assemble a per-rank commitment digest list for an
// MPI-aggregated polynomial commitment. Non-root ranks receive nil.
func (c *Config) GatherBytes(local []byte) ([][]byte, error) {
	gathered, err := c.Transport.GatherBytes(local)
	if err != nil {
		return nil, fmt.Errorf("mpi: gather_bytes: %w", err)
	}
	if !c.IsRoot() {
		return nil, nil
	}
	return gathered, nil
}

// RootBroadcast implements spec.md §5's root_broadcast: the root's byte
// payload is sent to every rank, which all receive the identical bytes
// back (including the root itself, for uniformity of caller code).
func (c *Config) RootBroadcast(value []byte) ([]byte, error) {
	out, err := c.Transport.Broadcast(value)
	if err != nil {
		return nil, fmt.Errorf("mpi: root_broadcast: %w", err)
	}
	return out, nil
}

// TranscriptVerifierSync implements spec.md §5's transcript sync: every
// rank's transcript state is hashed and forced equal to the root's, so that
// subsequently squeezed challenges match across ranks. The root's hashed
// state is broadcast and every rank (including the root) adopts it.
func (c *Config) TranscriptVerifierSync(tr *transcript.Transcript) error {
	rootState := tr.HashAndReturnState()
	synced, err := c.RootBroadcast(rootState)
	if err != nil {
		return fmt.Errorf("mpi: transcript_verifier_sync: %w", err)
	}
	tr.SetState(synced)
	return nil
}

// ParallelMap runs fn for every index in [0, n) across a worker pool sized
// to min(n, workers), collecting the first error encountered, if any —
// a rank-local helper for binding SIMD/witness work concurrently within one
// process, independent of the inter-rank Transport above.
func ParallelMap(n, workers int, fn func(i int) error) error {
	if workers < 1 {
		workers = 1
	}
	if workers > n {
		workers = n
	}
	if n == 0 {
		return nil
	}

	var wg sync.WaitGroup
	errs := make(chan error, workers)
	chunk := (n + workers - 1) / workers

	for w := 0; w < workers; w++ {
		start := w * chunk
		if start >= n {
			break
		}
		end := start + chunk
		if end > n {
			end = n
		}
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for i := start; i < end; i++ {
				if err := fn(i); err != nil {
					errs <- fmt.Errorf("mpi: worker task %d: %w", i, err)
					return
				}
			}
		}(start, end)
	}
	wg.Wait()
	close(errs)

	if err := <-errs; err != nil {
		return err
	}
	return nil
}
