package scene

import (
	"crypto/sha256"
	"encoding/hex"
)

// NodeID is a content-addressed node identifier: the hex SHA-256 of the
// node's construction path ("defmesh/ball", "place/ball", ...).
type NodeID string

// ZeroID is the empty, unset NodeID.
const ZeroID NodeID = ""

// NewNodeID derives the ID for a construction path. Equal paths give
// equal IDs, so re-evaluating a script reproduces its node IDs.
func NewNodeID(path string) NodeID {
	sum := sha256.Sum256([]byte(path))
	return NodeID(hex.EncodeToString(sum[:]))
}

// IsZero reports whether id is unset.
func (id NodeID) IsZero() bool {
	return id == ZeroID
}

// Short returns the first eight hex digits, for messages.
func (id NodeID) Short() string {
	if len(id) <= 8 {
		return string(id)
	}
	return string(id[:8])
}

func (id NodeID) String() string {
	return string(id)
}
