package parser

import (
	"encoding/hex"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"golang.org/x/crypto/blake2b"
)

// canonicalVersion is bumped whenever the canonical layout changes
const canonicalVersion = 1

// CanonicalTree is the position-independent form of a tree used for hashing.
// Nodes are flattened in pre-order; since every call records its arity, the
// sequence determines the shape. Spans are left out so that trees differing
// only in whitespace compare equal.
type CanonicalTree struct {
	Version uint8           `cbor:"1,keyasint"`
	Nodes   []CanonicalNode `cbor:"2,keyasint"`
}

// CanonicalNode is one node of a CanonicalTree
type CanonicalNode struct {
	Kind  uint8  `cbor:"1,keyasint"`
	Text  string `cbor:"2,keyasint"`
	Type  string `cbor:"3,keyasint"`
	Arity int    `cbor:"4,keyasint,omitempty"`
}

// Canonicalize flattens the tree into canonical form
func (t *Tree) Canonicalize() *CanonicalTree {
	ct := &CanonicalTree{Version: canonicalVersion}
	t.Walk(func(n *Node, _ int) bool {
		ct.Nodes = append(ct.Nodes, CanonicalNode{
			Kind:  uint8(n.Kind),
			Text:  n.Text,
			Type:  n.Type.String(),
			Arity: len(n.Children),
		})
		return true
	})
	return ct
}

// MarshalBinary produces the deterministic CBOR encoding of the canonical
// tree. Isomorphic trees encode to identical bytes.
func (t *Tree) MarshalBinary() ([]byte, error) {
	encMode, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		return nil, fmt.Errorf("failed to create CBOR encoder: %w", err)
	}

	data, err := encMode.Marshal(t.Canonicalize())
	if err != nil {
		return nil, fmt.Errorf("CBOR encoding failed: %w", err)
	}
	return data, nil
}

// Fingerprint returns the BLAKE2b-256 digest of the canonical encoding
func (t *Tree) Fingerprint() ([32]byte, error) {
	data, err := t.MarshalBinary()
	if err != nil {
		return [32]byte{}, err
	}
	return blake2b.Sum256(data), nil
}

// FingerprintString returns the fingerprint as "blake2b:<hex>"
func (t *Tree) FingerprintString() (string, error) {
	sum, err := t.Fingerprint()
	if err != nil {
		return "", err
	}
	return "blake2b:" + hex.EncodeToString(sum[:]), nil
}
