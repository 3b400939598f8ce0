package ir

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"

	"github.com/vk/flowgrid/internal/sockettype"
	"github.com/zclconf/go-cty/cty"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

const (
	magic          = "FGIR"
	encodeVersion  = 1
	noParamsMarker = 0
	paramsMarker   = 1
)

// encoder writes length-prefixed fields in a fixed order.
type encoder struct {
	buf bytes.Buffer
	err error
}

func (e *encoder) uint(v uint64) {
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(tmp[:], v)
	e.buf.Write(tmp[:n])
}

func (e *encoder) int(v int) {
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutVarint(tmp[:], int64(v))
	e.buf.Write(tmp[:n])
}

func (e *encoder) bytes(b []byte) {
	e.uint(uint64(len(b)))
	e.buf.Write(b)
}

func (e *encoder) string(s string) {
	e.bytes([]byte(s))
}

func (e *encoder) typ(t sockettype.Type) {
	e.string(t.Name())
	if t.IsZero() {
		e.bytes(nil)
		return
	}
	raw, err := ctyjson.MarshalType(t.Cty())
	if err != nil {
		// Capsule types have no JSON form; the registered name is unique
		// within a registry.
		raw = []byte("capsule:" + t.Name())
	}
	e.bytes(raw)
}

func (e *encoder) types(ts []sockettype.Type) {
	e.uint(uint64(len(ts)))
	for _, t := range ts {
		e.typ(t)
	}
}

func (e *encoder) ref(r Ref) {
	e.buf.WriteByte(byte(r.Source))
	e.int(r.Instr)
	e.int(r.Index)
	if r.Convert {
		e.buf.WriteByte(1)
	} else {
		e.buf.WriteByte(0)
	}
	e.typ(r.As)
}

func (e *encoder) params(v cty.Value) {
	if v == cty.NilVal {
		e.buf.WriteByte(noParamsMarker)
		return
	}
	e.buf.WriteByte(paramsMarker)

	ty := v.Type()
	rawType, err := ctyjson.MarshalType(ty)
	if err != nil {
		e.fail(fmt.Errorf("params type %s is not encodable: %w", ty.FriendlyName(), err))
		return
	}
	rawVal, err := ctyjson.Marshal(v, ty)
	if err != nil {
		e.fail(fmt.Errorf("params value is not encodable: %w", err))
		return
	}
	e.bytes(rawType)
	e.bytes(rawVal)
}

func (e *encoder) fail(err error) {
	if e.err == nil {
		e.err = err
	}
}

// Encode returns the canonical encoding of p. Rules are identified by kind
// and params; invoked artifacts by their digest.
func Encode(p *Program) ([]byte, error) {
	e := &encoder{}
	e.buf.WriteString(magic)
	e.uint(encodeVersion)

	e.types(p.Signature.Inputs)
	e.types(p.Signature.Outputs)

	e.uint(uint64(len(p.Instructions)))
	for i, inst := range p.Instructions {
		e.buf.WriteByte(byte(inst.Op))
		e.string(inst.Node)
		e.string(inst.Kind)
		e.params(inst.Params)
		if e.err != nil {
			return nil, fmt.Errorf("instruction %d (%s): %w", i, inst.Node, e.err)
		}
		e.uint(uint64(len(inst.Inputs)))
		for _, r := range inst.Inputs {
			e.ref(r)
		}
		e.types(inst.Outputs)
		if inst.Op == OpInvoke {
			if inst.Callee == nil {
				return nil, fmt.Errorf("instruction %d (%s): invoke without callee", i, inst.Node)
			}
			e.string(inst.Callee.Digest())
		}
	}

	e.uint(uint64(len(p.Feedback)))
	for _, slot := range p.Feedback {
		e.string(slot.Key.Node)
		e.int(slot.Key.Socket)
		e.typ(slot.Type)
		e.ref(slot.Source)
	}

	e.uint(uint64(len(p.Outputs)))
	for _, r := range p.Outputs {
		e.ref(r)
	}

	if e.err != nil {
		return nil, e.err
	}
	return e.buf.Bytes(), nil
}

// Digest returns the hex SHA-256 of the encoding.
func Digest(encoded []byte) string {
	sum := sha256.Sum256(encoded)
	return hex.EncodeToString(sum[:])
}
