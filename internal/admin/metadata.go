package admin

import (
	"context"
	"time"

	"github.com/devrev/pairdb/admin-client/internal/adminerrors"
	"github.com/devrev/pairdb/admin-client/internal/adminpb"
	"github.com/devrev/pairdb/admin-client/internal/cluster"
	"github.com/devrev/pairdb/admin-client/internal/metadata"
	"github.com/devrev/pairdb/admin-client/internal/vclock"
)

func toVectorClockPB(clock vclock.Clock) *adminpb.VectorClock {
	var entries []*adminpb.ClockEntry
	for _, id := range clock.NodeIDs() {
		entries = append(entries, &adminpb.ClockEntry{NodeID: id, Count: clock.Count(id)})
	}
	return &adminpb.VectorClock{Entries: entries, Timestamp: clock.Timestamp()}
}

func fromVectorClockPB(v *adminpb.VectorClock) vclock.Clock {
	counters := make(map[int32]int64)
	var timestamp int64
	if v != nil {
		timestamp = v.Timestamp
		for _, entry := range v.Entries {
			counters[entry.NodeID] = entry.Count
		}
	}
	return vclock.New(counters, timestamp)
}

// UpdateRemoteMetadata writes versioned to key on nodeID without any
// read-modify-write protocol; the caller supplies the full version vector
// it wants written.
func (c *Client) UpdateRemoteMetadata(ctx context.Context, nodeID int32, key metadata.Key, versioned Versioned[[]byte]) error {
	req := &adminpb.AdminRequest{
		Type: adminpb.UpdateMetadata,
		UpdateMetadata: &adminpb.UpdateMetadataRequest{
			Key: []byte(key),
			Versioned: &adminpb.VersionedBytes{
				Value:   versioned.Value,
				Version: toVectorClockPB(versioned.Version),
			},
		},
	}

	data, err := c.sendAndReceive(ctx, nodeID, req)
	if err != nil {
		return err
	}
	resp, err := adminpb.UnmarshalUpdateMetadataResponse(data)
	if err != nil {
		return adminerrors.Encoding(err)
	}
	if resp.HasError() {
		return c.mapProtocolError(resp.Error.ErrorCode, resp.Error.ErrorMessage)
	}
	return nil
}

// GetRemoteMetadata reads the current versioned value of key from nodeID.
func (c *Client) GetRemoteMetadata(ctx context.Context, nodeID int32, key metadata.Key) (Versioned[[]byte], error) {
	req := &adminpb.AdminRequest{
		Type: adminpb.GetMetadata,
		GetMetadata: &adminpb.GetMetadataRequest{
			Key: []byte(key),
		},
	}

	data, err := c.sendAndReceive(ctx, nodeID, req)
	if err != nil {
		return Versioned[[]byte]{}, err
	}
	resp, err := adminpb.UnmarshalGetMetadataResponse(data)
	if err != nil {
		return Versioned[[]byte]{}, adminerrors.Encoding(err)
	}
	if resp.HasError() {
		return Versioned[[]byte]{}, c.mapProtocolError(resp.Error.ErrorCode, resp.Error.ErrorMessage)
	}
	return Versioned[[]byte]{
		Value:   resp.Versioned.Value,
		Version: fromVectorClockPB(resp.Versioned.Version),
	}, nil
}

// readModifyWrite implements the read-modify-write protocol shared by
// every typed metadata wrapper: GET the current versioned value, extract
// its clock, increment nodeID's slot by one, encode the new payload, and
// PUT it back with the new clock. The client mutates exactly the node it
// was asked to update; it does not read a quorum.
func (c *Client) readModifyWrite(ctx context.Context, nodeID int32, key metadata.Key, encode func() ([]byte, error)) error {
	current, err := c.GetRemoteMetadata(ctx, nodeID, key)
	if err != nil {
		return err
	}
	payload, err := encode()
	if err != nil {
		return adminerrors.Encoding(err)
	}
	newClock := current.Version.Increment(nodeID, 1, time.Now().UnixMilli())
	return c.UpdateRemoteMetadata(ctx, nodeID, key, Versioned[[]byte]{Value: payload, Version: newClock})
}

// UpdateRemoteCluster writes the cluster descriptor to nodeID under
// metadata.ClusterKey, following the read-modify-write protocol.
func (c *Client) UpdateRemoteCluster(ctx context.Context, nodeID int32, descriptor cluster.Descriptor, mapper metadata.Mapper) error {
	return c.readModifyWrite(ctx, nodeID, metadata.ClusterKey, func() ([]byte, error) {
		return mapper.EncodeCluster(descriptor)
	})
}

// GetRemoteCluster reads and decodes nodeID's cluster descriptor.
func (c *Client) GetRemoteCluster(ctx context.Context, nodeID int32, mapper metadata.Mapper) (cluster.Descriptor, error) {
	versioned, err := c.GetRemoteMetadata(ctx, nodeID, metadata.ClusterKey)
	if err != nil {
		return cluster.Descriptor{}, err
	}
	return mapper.DecodeCluster(versioned.Value)
}

// UpdateRemoteStoreDefList writes the store definition list to nodeID
// under metadata.StoresKey, following the read-modify-write protocol.
func (c *Client) UpdateRemoteStoreDefList(ctx context.Context, nodeID int32, defs []metadata.StoreDef, mapper metadata.Mapper) error {
	return c.readModifyWrite(ctx, nodeID, metadata.StoresKey, func() ([]byte, error) {
		return mapper.EncodeStoreDefs(defs)
	})
}

// GetRemoteStoreDefList reads and decodes nodeID's store definition list.
func (c *Client) GetRemoteStoreDefList(ctx context.Context, nodeID int32, mapper metadata.Mapper) ([]metadata.StoreDef, error) {
	versioned, err := c.GetRemoteMetadata(ctx, nodeID, metadata.StoresKey)
	if err != nil {
		return nil, err
	}
	return mapper.DecodeStoreDefs(versioned.Value)
}

// UpdateRemoteServerState writes nodeID's server state under
// metadata.ServerStateKey, following the read-modify-write protocol.
func (c *Client) UpdateRemoteServerState(ctx context.Context, nodeID int32, state metadata.ServerState, mapper metadata.Mapper) error {
	return c.readModifyWrite(ctx, nodeID, metadata.ServerStateKey, func() ([]byte, error) {
		return mapper.EncodeServerState(state)
	})
}

// GetRemoteServerState reads and decodes nodeID's server state.
func (c *Client) GetRemoteServerState(ctx context.Context, nodeID int32, mapper metadata.Mapper) (metadata.ServerState, error) {
	versioned, err := c.GetRemoteMetadata(ctx, nodeID, metadata.ServerStateKey)
	if err != nil {
		return "", err
	}
	return mapper.DecodeServerState(versioned.Value)
}
