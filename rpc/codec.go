// Package rpc implements the wire-level client/server adapters for the
// Manager and Storager services of spec.md §6, over the standard
// library's net/rpc, plus the fixed-layout accumulator proof codec and
// the MPT proof transport types from the same section.
package rpc

import (
	"encoding/binary"
	"fmt"

	"github.com/kwindex/kwindex/accumulator"
	"github.com/kwindex/kwindex/curve"
	"github.com/kwindex/kwindex/field"
	"github.com/kwindex/kwindex/mpt"
	"github.com/kwindex/kwindex/posting"
)

const (
	g1Size        = 96
	elementSize   = 8
	validByteSize = 1

	updateProofSize     = g1Size + g1Size + elementSize + validByteSize
	membershipProofSize = g1Size + elementSize + g1Size + validByteSize
)

// EncodeProof turns a posting.Proof into the wire bytes a Storager sends
// back to the Manager for Add/Delete/Query, per spec.md §6's "Accumulator
// proof byte layout" and "MPT proof layout". root is the instance's
// current root digest as returned alongside the proof; for a membership
// proof it fills the trailing acc_value field.
func EncodeProof(p posting.Proof, root []byte) ([]byte, error) {
	switch p.Kind {
	case posting.KindAccumulator:
		return encodeAccumulatorProof(p, root)
	case posting.KindMPT:
		return encodeMPTProof(p, root), nil
	default:
		return nil, fmt.Errorf("rpc: unknown posting kind %v", p.Kind)
	}
}

func encodeAccumulatorProof(p posting.Proof, root []byte) ([]byte, error) {
	switch {
	case p.AccAdd != nil:
		return encodeUpdateProof(p.AccAdd.Old, p.AccAdd.New, p.AccAdd.Element, p.Accepted), nil
	case p.AccDelete != nil:
		return encodeUpdateProof(p.AccDelete.Old, p.AccDelete.New, p.AccDelete.Element, p.Accepted), nil
	case p.AccQuery != nil && p.AccQuery.Membership != nil:
		accValue, err := g1FromRoot(root)
		if err != nil {
			return nil, err
		}
		return encodeMembershipProof(p.AccQuery.Membership, accValue, p.Accepted), nil
	default:
		// A trivially-accepting proof (empty keyword, or the duplicate-add
		// fast path) carries no real witness; the trailing valid byte is
		// the only meaningful field, so the rest is zero-filled.
		out := make([]byte, updateProofSize)
		if p.Accepted {
			out[len(out)-1] = 1
		}
		return out, nil
	}
}

func g1FromRoot(root []byte) (curve.G1, error) {
	if len(root) == 0 {
		return curve.G1{}, nil
	}
	return curve.G1FromBytes(root)
}

// encodeUpdateProof lays out old_acc(96) || new_acc(96) || element(8) ||
// valid(1), per spec.md §6.
func encodeUpdateProof(old, new curve.G1, elem field.Element, valid bool) []byte {
	out := make([]byte, 0, updateProofSize)
	out = append(out, old.Bytes()...)
	out = append(out, new.Bytes()...)
	out = append(out, encodeElement(elem)...)
	out = append(out, validByte(valid))
	return out
}

// encodeMembershipProof lays out witness(96) || element(8) ||
// acc_value(96) || valid(1), per spec.md §6.
func encodeMembershipProof(p *accumulator.MembershipProof, accValue curve.G1, valid bool) []byte {
	out := make([]byte, 0, membershipProofSize)
	out = append(out, p.Witness.Bytes()...)
	out = append(out, encodeElement(p.Element)...)
	out = append(out, accValue.Bytes()...)
	out = append(out, validByte(valid))
	return out
}

// encodeElement lays out the low 8 bytes of e as element_le_i64, per
// spec.md §6 and the Rust reference's `to_le_bytes()` encoding of the
// accumulator element.
func encodeElement(e field.Element) []byte {
	b := e.Bytes() // canonical 32-byte big-endian
	var out [elementSize]byte
	binary.LittleEndian.PutUint64(out[:], binary.BigEndian.Uint64(b[len(b)-8:]))
	return out[:]
}

func validByte(v bool) byte {
	if v {
		return 1
	}
	return 0
}

// DecodedUpdateProof is the manager-side view of an add/delete proof.
type DecodedUpdateProof struct {
	Old   curve.G1
	New   curve.G1
	Valid bool
}

// DecodeUpdateProof parses an old/new-acc update proof. It does not by
// itself establish trust: see VerifyAccumulatorProof in the manager
// package for what the manager actually checks.
func DecodeUpdateProof(b []byte) (DecodedUpdateProof, error) {
	if len(b) != updateProofSize {
		return DecodedUpdateProof{}, fmt.Errorf("rpc: update proof has %d bytes, want %d", len(b), updateProofSize)
	}
	old, err := curve.G1FromBytes(b[:g1Size])
	if err != nil {
		return DecodedUpdateProof{}, fmt.Errorf("rpc: decode old_acc: %w", err)
	}
	newAcc, err := curve.G1FromBytes(b[g1Size : g1Size*2])
	if err != nil {
		return DecodedUpdateProof{}, fmt.Errorf("rpc: decode new_acc: %w", err)
	}
	valid := b[len(b)-1] == 1
	return DecodedUpdateProof{Old: old, New: newAcc, Valid: valid}, nil
}

// DecodedMembershipProof is the manager-side view of a membership proof.
type DecodedMembershipProof struct {
	Witness  curve.G1
	AccValue curve.G1
	Valid    bool
}

// DecodeMembershipProof parses a witness/acc_value membership proof.
func DecodeMembershipProof(b []byte) (DecodedMembershipProof, error) {
	if len(b) != membershipProofSize {
		return DecodedMembershipProof{}, fmt.Errorf("rpc: membership proof has %d bytes, want %d", len(b), membershipProofSize)
	}
	witness, err := curve.G1FromBytes(b[:g1Size])
	if err != nil {
		return DecodedMembershipProof{}, fmt.Errorf("rpc: decode witness: %w", err)
	}
	accValue, err := curve.G1FromBytes(b[g1Size+elementSize:])
	if err != nil {
		return DecodedMembershipProof{}, fmt.Errorf("rpc: decode acc_value: %w", err)
	}
	valid := b[len(b)-1] == 1
	return DecodedMembershipProof{Witness: witness, AccValue: accValue, Valid: valid}, nil
}

// encodeMPTProof treats the MPT proof as the current root hash itself,
// per spec.md §6: "For the MPT variant, the per-RPC proof is the current
// root hash." A query against an absent keyword carries no root.
func encodeMPTProof(p posting.Proof, root []byte) []byte {
	if p.MPTQuery != nil && !p.MPTQuery.IsExist {
		return nil
	}
	return root
}

// ProofElementKind mirrors the {leaf, extension, branch} tag of spec.md
// §6's "MPT proof layout" for the in-band transport of a full QueryProof.
type ProofElementKind uint8

const (
	ProofElementLeaf      ProofElementKind = 0
	ProofElementExtension ProofElementKind = 1
	ProofElementBranch    ProofElementKind = 2
)

// ProofElement is the wire form of one mpt.ProofElement.
type ProofElement struct {
	Level          uint32
	Type           ProofElementKind
	Prefix         string
	Suffix         string
	Value          []byte
	NextHash       []byte
	ChildrenHashes [16][]byte
	ChildIndex     byte
}

// MPTProofTransport is the wire form of one mpt.QueryProof, for the
// optional in-band proof transport spec.md §6 names as future work; the
// manager does not decode it (VerifyMPTProof accepts every MPT proof).
type MPTProofTransport struct {
	IsExist  bool
	Levels   uint32
	Elements []ProofElement
}

// EncodeMPTQueryProof converts a mpt.QueryProof into its wire form.
func EncodeMPTQueryProof(p *mpt.QueryProof) MPTProofTransport {
	if p == nil {
		return MPTProofTransport{}
	}
	out := MPTProofTransport{IsExist: p.IsExist, Levels: uint32(p.Levels)}
	for _, e := range p.Elements {
		out.Elements = append(out.Elements, encodeProofElement(e))
	}
	return out
}

func encodeProofElement(e mpt.ProofElement) ProofElement {
	out := ProofElement{
		Level:      0,
		Type:       ProofElementKind(e.Kind),
		Prefix:     string(e.Prefix),
		Suffix:     string(e.Suffix),
		Value:      e.Value,
		NextHash:   e.NextHash.Bytes(),
		ChildIndex: e.ChildIndex,
	}
	if e.Kind == mpt.KindBranch {
		out.Value = e.BranchValue
		for i, h := range e.ChildrenHashes {
			out.ChildrenHashes[i] = h.Bytes()
		}
	}
	return out
}

// DecodeMPTQueryProof reconstructs a mpt.QueryProof from its wire form, for
// verification with mpt.VerifyQueryResult on the receiving side.
func DecodeMPTQueryProof(t MPTProofTransport) *mpt.QueryProof {
	out := &mpt.QueryProof{IsExist: t.IsExist, Levels: int(t.Levels)}
	for _, e := range t.Elements {
		pe := mpt.ProofElement{
			Kind:       mpt.Kind(e.Type),
			Prefix:     []byte(e.Prefix),
			Suffix:     []byte(e.Suffix),
			ChildIndex: e.ChildIndex,
		}
		switch pe.Kind {
		case mpt.KindLeaf:
			pe.Value = e.Value
		case mpt.KindExtension:
			pe.NextHash = mpt.HashFromBytes(e.NextHash)
		case mpt.KindBranch:
			pe.BranchValue = e.Value
			for i, h := range e.ChildrenHashes {
				pe.ChildrenHashes[i] = mpt.HashFromBytes(h)
			}
		}
		out.Elements = append(out.Elements, pe)
	}
	return out
}
