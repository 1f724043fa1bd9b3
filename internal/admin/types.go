// Package admin implements the admin protocol client: pooled request/
// response RPCs, streaming bulk upload/download, the async operation
// driver, and the metadata read-modify-write protocol.
package admin

import "github.com/devrev/pairdb/admin-client/internal/vclock"

// Versioned pairs a value with the vector clock of the write that
// produced it.
type Versioned[V any] struct {
	Value   V
	Version vclock.Clock
}

// PartitionEntry is the unit transferred by the bulk streaming RPCs.
type PartitionEntry struct {
	Key       []byte
	Versioned Versioned[[]byte]
}

// AsyncOperationHandle identifies one server-side background operation.
type AsyncOperationHandle struct {
	NodeID    int32
	RequestID int64
}

// AsyncOperationStatus is the result of polling an AsyncOperationHandle.
type AsyncOperationStatus struct {
	RequestID   int64
	Description string
	Status      string
	Complete    bool
}
