package hyrax

import (
	"fmt"
	"io"

	"github.com/cloudflare/bn256"

	"github.com/vybium/expander/internal/expander/field"
	"github.com/vybium/expander/internal/expander/pcs"
	"github.com/vybium/expander/internal/expander/transcript"
)

// Scheme adapts the free Commit/Open/Verify functions to pcs.MultilinearPCS.
// Unlike Orion, Hyrax only implements the single-rank contract: spec.md §4.F
// names MultilinearPCSForMPI as Orion's to satisfy, and Hyrax's purpose here
// is to show the plain contract is satisfiable by a second, structurally
// different scheme.
type Scheme struct {
	Params *Params
	Gens   []*bn256.G1

	committer *Committer
}

// NewScheme derives Params for numVars and draws a fresh commitment key.
func NewScheme(numVars int) (*Scheme, error) {
	params, err := NewParams(numVars)
	if err != nil {
		return nil, err
	}
	gens, err := Setup(params)
	if err != nil {
		return nil, err
	}
	return &Scheme{Params: params, Gens: gens}, nil
}

// Commit implements pcs.MultilinearPCS.
func (s *Scheme) Commit(fld field.Field, polynomial []field.Element) (pcs.Commitment, error) {
	committer, commitment, err := Commit(s.Params, s.Gens, polynomial)
	if err != nil {
		return nil, err
	}
	s.committer = committer
	return commitment, nil
}

// Open implements pcs.MultilinearPCS. tr is unused: the eq(r_row,·) weights
// are derived directly from point, not from transcript-squeezed randomness.
func (s *Scheme) Open(fld field.Field, polynomial []field.Element, commitment pcs.Commitment, point []field.Element, tr *transcript.Transcript) (field.Element, any, error) {
	if s.committer == nil {
		return nil, nil, fmt.Errorf("hyrax: Open called before Commit")
	}
	return s.committer.Open(point, fld)
}

// Verify implements pcs.MultilinearPCS.
func (s *Scheme) Verify(fld field.Field, commitment pcs.Commitment, point []field.Element, claimedEval field.Element, opening any, tr *transcript.Transcript) (bool, error) {
	c, ok := commitment.(*Commitment)
	if !ok {
		return false, fmt.Errorf("hyrax: Verify given a commitment of type %T, want *hyrax.Commitment", commitment)
	}
	o, ok := opening.(*Opening)
	if !ok {
		return false, fmt.Errorf("hyrax: Verify given an opening of type %T, want *hyrax.Opening", opening)
	}
	return Verify(fld, s.Params, s.Gens, c, point, claimedEval, o)
}

// WriteCommitment implements pcs.CommitmentCodec.
func (s *Scheme) WriteCommitment(w io.Writer, c pcs.Commitment) error { return WriteCommitment(w, c) }

// ReadCommitment implements pcs.CommitmentCodec.
func (s *Scheme) ReadCommitment(r io.Reader) (pcs.Commitment, error) { return ReadCommitment(r) }

// WriteOpening implements pcs.CommitmentCodec.
func (s *Scheme) WriteOpening(w io.Writer, opening any) error { return WriteOpening(w, opening) }

// ReadOpening implements pcs.CommitmentCodec.
func (s *Scheme) ReadOpening(r io.Reader, fld field.Field) (any, error) { return ReadOpening(r, fld) }

var (
	_ pcs.MultilinearPCS  = (*Scheme)(nil)
	_ pcs.CommitmentCodec = (*Scheme)(nil)
)
