package expander

import "github.com/vybium/expander/internal/expander/mpi"

// Config configures a Prove/Verify call: which field and hasher to run the
// transcript over, which polynomial commitment scheme binds the GKR
// proof's final claim(s) to the committed witness, and the MPI world to
// run in (defaulting to a single rank).
type Config struct {
	Field  FieldKind
	Hasher HasherKind
	MPI    *mpi.Config

	// PCS selects the scheme Prove commits layer 0's input through and
	// Verify checks the opening against.
	PCS PCSKind
	// SoundnessBits is Orion's target soundness parameter (spec.md §4.D);
	// Orion's field-width parameter is derived from Field directly via
	// field.Field.FieldSizeBits rather than stored here. Unused by Hyrax.
	SoundnessBits int

	// Parallel, when true, has Verify use gkr.VerifyParallel's per-layer
	// goroutine fan-out instead of the sequential verifier.
	Parallel bool
}

// DefaultConfig returns the common single-machine configuration: the M31
// field, a SHA-256 transcript, Orion at 100 bits of soundness, a single
// MPI rank, sequential verification.
func DefaultConfig() *Config {
	return &Config{
		Field:         FieldM31,
		Hasher:        HasherSHA256,
		MPI:           mpi.NewSingleRank(),
		PCS:           PCSOrion,
		SoundnessBits: 100,
	}
}

// WithField sets the field Prove/Verify operate over.
func (c *Config) WithField(kind FieldKind) *Config {
	c.Field = kind
	return c
}

// WithHasher sets the transcript's hash function.
func (c *Config) WithHasher(kind HasherKind) *Config {
	c.Hasher = kind
	return c
}

// WithMPI sets the MPI world Prove/Verify run in.
func (c *Config) WithMPI(mpiConfig *mpi.Config) *Config {
	c.MPI = mpiConfig
	return c
}

// WithParallelVerify toggles the per-layer parallel verifier.
func (c *Config) WithParallelVerify(parallel bool) *Config {
	c.Parallel = parallel
	return c
}

// WithPCS sets the polynomial commitment scheme Prove/Verify bind the
// GKR proof's final claim(s) through.
func (c *Config) WithPCS(kind PCSKind) *Config {
	c.PCS = kind
	return c
}

// WithSoundnessBits sets Orion's target soundness parameter.
func (c *Config) WithSoundnessBits(bits int) *Config {
	c.SoundnessBits = bits
	return c
}

// Validate checks that Config is complete enough to build a field, hasher,
// PCS scheme and MPI world from.
func (c *Config) Validate() error {
	if _, err := c.Field.build(); err != nil {
		return newError(ErrInvalidConfig, "invalid field kind", err)
	}
	if _, err := c.Hasher.build(); err != nil {
		return newError(ErrInvalidConfig, "invalid hasher kind", err)
	}
	if c.MPI == nil {
		return newError(ErrInvalidConfig, "MPI config must not be nil", nil)
	}
	if c.SoundnessBits < 1 {
		return newError(ErrInvalidConfig, "SoundnessBits must be positive", nil)
	}
	switch c.PCS {
	case PCSOrion:
	case PCSHyrax:
		// Hyrax's Pedersen commitments live in bn256's G1 group: the
		// scheme is only sound when Field's characteristic matches
		// bn256.Order (see internal/expander/pcs/hyrax/group.go).
		if c.Field != FieldBN254 {
			return newError(ErrInvalidConfig, "hyrax PCS requires the BN254 field", nil)
		}
	default:
		return newError(ErrInvalidConfig, "invalid PCS kind", nil)
	}
	return nil
}

// Clone returns a deep-enough copy of c safe to mutate independently (the
// MPI Config's Transport is shared, since Transport implementations are
// expected to be stateless handles, not owned resources).
func (c *Config) Clone() *Config {
	clone := *c
	if c.MPI != nil {
		mpiClone := *c.MPI
		clone.MPI = &mpiClone
	}
	return &clone
}
