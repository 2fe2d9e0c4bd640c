package posting

import (
	"fmt"

	"github.com/kwindex/kwindex/accumulator"
	"github.com/kwindex/kwindex/curve"
	"github.com/kwindex/kwindex/digest"
)

// accumulatorInstance backs a keyword with the dynamic cryptographic
// accumulator, grounded on the Rust CryptoAccumulatorAds: one accumulator
// plus the plaintext fid list it commits to (spec.md §4.2/§4.5).
type accumulatorInstance struct {
	keyword string
	setup   *curve.Setup
	acc     *accumulator.Accumulator
	fids    []string // insertion order, mirrors the Rust Vec<String>
}

func (a *accumulatorInstance) Add(fid string) (Proof, []byte, error) {
	if containsString(a.fids, fid) {
		// Defensive duplicate guard, per the Rust add()'s "already exists,
		// skipping add" branch: return current state without mutating.
		return Proof{Kind: KindAccumulator, Accepted: true}, a.rootDigest(), nil
	}

	e := digest.PostingElement(a.keyword, fid)
	proof, err := a.acc.Add(e)
	if err != nil {
		return Proof{}, nil, err
	}
	a.fids = append(a.fids, fid)
	return Proof{Kind: KindAccumulator, Accepted: proof.Verify(a.setup), AccAdd: proof}, a.rootDigest(), nil
}

func (a *accumulatorInstance) Query() ([]string, Proof, []byte, error) {
	if len(a.fids) == 0 {
		return nil, Proof{Kind: KindAccumulator, Accepted: true}, a.rootDigest(), nil
	}
	e := digest.PostingElement(a.keyword, a.fids[0])
	qr, err := a.acc.Query(e)
	if err != nil {
		return nil, Proof{}, nil, err
	}
	fids := append([]string(nil), a.fids...)
	accepted := qr.Membership != nil && qr.Membership.Verify(a.setup, a.acc.AccValue())
	return fids, Proof{Kind: KindAccumulator, Accepted: accepted, AccQuery: qr}, a.rootDigest(), nil
}

func (a *accumulatorInstance) Delete(fid string) (Proof, []byte, error) {
	e := digest.PostingElement(a.keyword, fid)
	proof, err := a.acc.Delete(e)
	if err != nil {
		return Proof{}, nil, err
	}
	a.fids = removeString(a.fids, fid)
	accepted := proof.Verify(a.setup)
	if len(a.fids) == 0 {
		return Proof{Kind: KindAccumulator, Accepted: accepted, AccDelete: proof}, nil, nil
	}
	return Proof{Kind: KindAccumulator, Accepted: accepted, AccDelete: proof}, a.rootDigest(), nil
}

func (a *accumulatorInstance) Describe() string {
	return fmt.Sprintf("accumulator(%d elements)", a.acc.Len())
}

func (a *accumulatorInstance) Empty() bool {
	return len(a.fids) == 0
}

func (a *accumulatorInstance) rootDigest() []byte {
	return a.acc.AccValue().Bytes()
}
