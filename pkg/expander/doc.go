// Package expander is the public API for the Expander GKR prover/verifier:
// build a Circuit, call Prove to get a Proof, and Verify to check it against
// a claimed public output. See Config for field/hasher/MPI selection.
package expander
