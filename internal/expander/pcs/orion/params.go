package orion

import (
	"fmt"
	"math"
)

// codeRateInverse fixes code_len = msg_len * codeRateInverse: a rate-1/4
// code, a reasonable middle ground between proof size and soundness for the
// simplified linear code in code.go.
const codeRateInverse = 4

// Params holds one commitment's matrix shape and query-count derivation
// (spec.md §4.D: "row_num · msg_len = 2^n", "msg_len = 2^ceil(n/2)
// typically", proximity repetition count R, query count Q).
type Params struct {
	RowNum int
	MsgLen int
	// CodeLen is row-encode's output width (codeRateInverse times
	// MsgLen).
	CodeLen int

	SoundnessBits int
	FieldBits     int

	// Repetitions is R = ceil((soundness+1)/field_bits), spec.md §9 Open
	// Question 2's resolution — kept as a field, not a hardcoded constant,
	// so callers can retune it.
	Repetitions int
	// NumQueries is Q = ceil(soundness / log2(1/(1-code_dist/3))).
	NumQueries int
}

// NewParams derives a Params for an n-variable polynomial (2^n
// evaluations), per spec.md §4.D.
func NewParams(numVars, soundnessBits, fieldBits int) (*Params, error) {
	if numVars < 1 {
		return nil, fmt.Errorf("orion: numVars must be positive, got %d", numVars)
	}
	if soundnessBits < 1 || fieldBits < 1 {
		return nil, fmt.Errorf("orion: soundnessBits and fieldBits must be positive")
	}

	rowBits := numVars / 2
	msgBits := numVars - rowBits
	rowNum := 1 << uint(rowBits)
	msgLen := 1 << uint(msgBits)
	codeLen := msgLen * codeRateInverse

	repetitions := (soundnessBits + 1 + fieldBits - 1) / fieldBits

	codeDist := 1.0 - 1.0/float64(codeRateInverse)
	perQueryBits := math.Log2(1.0 / (1.0 - codeDist/3.0))
	numQueries := int(math.Ceil(float64(soundnessBits) / perQueryBits))
	if numQueries > codeLen {
		numQueries = codeLen
	}

	return &Params{
		RowNum:        rowNum,
		MsgLen:        msgLen,
		CodeLen:       codeLen,
		SoundnessBits: soundnessBits,
		FieldBits:     fieldBits,
		Repetitions:   repetitions,
		NumQueries:    numQueries,
	}, nil
}
