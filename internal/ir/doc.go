// Package ir is the backend-agnostic intermediate representation produced by
// the compiler: a flat, ordered list of instructions whose inputs reference
// earlier results, external inputs, feedback slots, or null.
//
// A Program has a canonical byte encoding (Encode) and a SHA-256 digest over
// it. Structurally identical graphs compile to byte-identical encodings.
package ir
