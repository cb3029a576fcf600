package orion

import (
	"fmt"

	"github.com/vybium/expander/internal/expander/field"
	"github.com/vybium/expander/internal/expander/mpi"
	"github.com/vybium/expander/internal/expander/pcs"
	"github.com/vybium/expander/internal/expander/poly"
	"github.com/vybium/expander/internal/expander/transcript"
)

// CommitmentMPI is the root's aggregated commitment for spec.md §4.D's
// "Distributed (MPI) aggregation": a Merkle tree over every rank's local
// commitment root, so a single value still binds the whole distributed
// polynomial.
type CommitmentMPI struct {
	AggregateRoot []byte
	RankRoots     [][]byte
}

// Bytes implements pcs.Commitment.
func (c *CommitmentMPI) Bytes() []byte { return append([]byte(nil), c.AggregateRoot...) }

// OpeningMPI is the root's aggregated opening: the rank-combined evaluation
// and proximity rows (combined via CoefCombineVec's eq(r_mpi,·) weighting)
// plus the queried columns/Merkle paths of the root's own local opening,
// and every rank's local commitment root so a verifier can recompute the
// aggregate tree.
type OpeningMPI struct {
	RankRoots [][]byte
	Local     *Opening
}

func mpiAxisBits(worldSize int) int {
	bits := 0
	for 1<<uint(bits) < worldSize {
		bits++
	}
	return bits
}

// CommitMPI implements pcs.MultilinearPCSForMPI: every rank commits its
// local shard, then the root gathers every rank's root and builds a Merkle
// tree over them as the aggregate commitment.
func (s *Scheme) CommitMPI(fld field.Field, mpiConfig *mpi.Config, localPolynomial []field.Element) (pcs.Commitment, error) {
	committer, localCommitment, err := Commit(fld, s.Params, s.Hasher, localPolynomial)
	if err != nil {
		return nil, fmt.Errorf("orion: mpi commit: local commit: %w", err)
	}
	s.committer = committer

	rankRoots, err := mpiConfig.GatherBytes(localCommitment.Root)
	if err != nil {
		return nil, fmt.Errorf("orion: mpi commit: gathering rank roots: %w", err)
	}
	if !mpiConfig.IsRoot() {
		return nil, nil
	}

	tree := newMerkleTree(s.Hasher, rankRoots)
	return &CommitmentMPI{AggregateRoot: tree.root(), RankRoots: rankRoots}, nil
}

// OpenMPI implements pcs.MultilinearPCSForMPI: point's trailing variables
// address the MPI axis (spec.md §5's r_mpi); every rank opens its local
// shard at the remaining variables, and the root combines the evaluation
// and proximity rows across ranks with eq(r_mpi,·) weights via
// CoefCombineVec before re-deriving the claimed evaluation, matching
// spec.md §4.D's "only the root's aggregated proof is emitted".
func (s *Scheme) OpenMPI(fld field.Field, mpiConfig *mpi.Config, localPolynomial []field.Element, commitment pcs.Commitment, point []field.Element, tr *transcript.Transcript) (field.Element, any, error) {
	c, ok := commitment.(*CommitmentMPI)
	if !ok {
		return nil, nil, fmt.Errorf("orion: OpenMPI got commitment of type %T, want *orion.CommitmentMPI", commitment)
	}
	if s.committer == nil {
		return nil, nil, fmt.Errorf("orion: OpenMPI called before CommitMPI")
	}

	worldBits := mpiAxisBits(mpiConfig.WorldSize())
	if len(point) < worldBits {
		return nil, nil, fmt.Errorf("orion: opening point has %d variables, fewer than mpi axis's %d", len(point), worldBits)
	}
	rMPI := point[len(point)-worldBits:]
	localPoint := point[:len(point)-worldBits]

	_, localOpening, err := s.committer.Open(localPoint, tr)
	if err != nil {
		return nil, nil, fmt.Errorf("orion: mpi open: local open: %w", err)
	}

	combinedE, err := mpiConfig.CoefCombineVec(localOpening.E, fld, rMPI)
	if err != nil {
		return nil, nil, fmt.Errorf("orion: mpi open: combining evaluation row: %w", err)
	}
	combinedP := make([][]field.Element, len(localOpening.ProximityRows))
	for k, row := range localOpening.ProximityRows {
		combined, err := mpiConfig.CoefCombineVec(row, fld, rMPI)
		if err != nil {
			return nil, nil, fmt.Errorf("orion: mpi open: combining proximity row %d: %w", k, err)
		}
		combinedP[k] = combined
	}

	if !mpiConfig.IsRoot() {
		return nil, &OpeningMPI{RankRoots: c.RankRoots, Local: localOpening}, nil
	}

	aggregateOpening := &Opening{
		E:             combinedE,
		ProximityRows: combinedP,
		QueryIndices:  localOpening.QueryIndices,
		QueryColumns:  localOpening.QueryColumns,
		QueryProofs:   localOpening.QueryProofs,
	}

	rMsg, _, err := splitPoint(localPoint, s.Params.MsgLen, s.Params.RowNum)
	if err != nil {
		return nil, nil, err
	}
	claimedEval, err := poly.EvaluateWithBuffer(rMsg, append([]field.Element(nil), combinedE...))
	if err != nil {
		return nil, nil, fmt.Errorf("orion: mpi open: evaluating combined row: %w", err)
	}

	return claimedEval, &OpeningMPI{RankRoots: c.RankRoots, Local: aggregateOpening}, nil
}
