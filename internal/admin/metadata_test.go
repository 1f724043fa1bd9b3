package admin_test

import (
	"context"
	"testing"

	"github.com/devrev/pairdb/admin-client/internal/admin"
	"github.com/devrev/pairdb/admin-client/internal/adminpb"
	"github.com/devrev/pairdb/admin-client/internal/cluster"
	"github.com/devrev/pairdb/admin-client/internal/metadata"
	"github.com/devrev/pairdb/admin-client/internal/wire"
	"github.com/stretchr/testify/require"
)

// startStatefulMetadataNode simulates one node's view of a single metadata
// key: it starts at seedClock with seedValue, and on an UpdateMetadata
// request it overwrites both the value and clock the caller supplied, so a
// following GetMetadata reflects the write.
func startStatefulMetadataNode(t *testing.T, seedValue string, seedClock map[int32]int64) cluster.Descriptor {
	t.Helper()
	value := []byte(seedValue)
	clock := seedClock

	return startFakeNode(t, func(t *testing.T, conn *fakeNodeConn) {
		for {
			data, eof, err := wire.ReadMessage(conn.Reader)
			if eof || err != nil {
				return
			}
			req, err := adminpb.UnmarshalAdminRequest(data)
			require.NoError(t, err)

			switch req.Type {
			case adminpb.GetMetadata:
				var entries []*adminpb.ClockEntry
				for node, count := range clock {
					entries = append(entries, &adminpb.ClockEntry{NodeID: node, Count: count})
				}
				resp := &adminpb.GetMetadataResponse{
					Versioned: &adminpb.VersionedBytes{
						Value:   value,
						Version: &adminpb.VectorClock{Entries: entries, Timestamp: 1000},
					},
				}
				payload, err := resp.Marshal()
				require.NoError(t, err)
				require.NoError(t, wire.WriteMessage(conn.Writer, payload))
				require.NoError(t, conn.Writer.Flush())

			case adminpb.UpdateMetadata:
				value = req.UpdateMetadata.Versioned.Value
				clock = make(map[int32]int64)
				for _, e := range req.UpdateMetadata.Versioned.Version.Entries {
					clock[e.NodeID] = e.Count
				}
				resp := &adminpb.UpdateMetadataResponse{}
				payload, err := resp.Marshal()
				require.NoError(t, err)
				require.NoError(t, wire.WriteMessage(conn.Writer, payload))
				require.NoError(t, conn.Writer.Flush())

			default:
				t.Fatalf("unexpected request type %v", req.Type)
			}
		}
	})
}

func TestUpdateRemoteClusterFollowsReadModifyWriteProtocol(t *testing.T) {
	descriptor := startStatefulMetadataNode(t, "<cluster><server><id>3</id></server></cluster>", map[int32]int64{1: 5})

	client := admin.NewClient(descriptor, testConfig())
	defer client.Close()
	mapper := metadata.XMLMapper{}

	before, err := client.GetRemoteMetadata(context.Background(), 1, metadata.ClusterKey)
	require.NoError(t, err)
	require.Equal(t, int64(5), before.Version.Count(1))

	newDescriptor := cluster.NewDescriptor([]cluster.Node{
		{ID: 3, Host: "h3", AdminPort: 6001, ClientPort: 6000},
		{ID: 4, Host: "h4", AdminPort: 7001, ClientPort: 7000},
	})
	require.NoError(t, client.UpdateRemoteCluster(context.Background(), 1, newDescriptor, mapper))

	after, err := client.GetRemoteMetadata(context.Background(), 1, metadata.ClusterKey)
	require.NoError(t, err)
	require.Equal(t, int64(6), after.Version.Count(1))

	decoded, err := mapper.DecodeCluster(after.Value)
	require.NoError(t, err)
	require.Len(t, decoded.Nodes(), 2)
	_, ok := decoded.NodeByID(4)
	require.True(t, ok)
}

func TestGetRemoteStoreDefListRoundTrip(t *testing.T) {
	mapper := metadata.XMLMapper{}
	seed, err := mapper.EncodeStoreDefs([]metadata.StoreDef{{Name: "s1", ReplicationFactor: 3, RequiredReads: 2, RequiredWrites: 2}})
	require.NoError(t, err)

	descriptor := startStatefulMetadataNode(t, string(seed), map[int32]int64{1: 1})
	client := admin.NewClient(descriptor, testConfig())
	defer client.Close()

	defs, err := client.GetRemoteStoreDefList(context.Background(), 1, mapper)
	require.NoError(t, err)
	require.Len(t, defs, 1)
	require.Equal(t, "s1", defs[0].Name)
	require.Equal(t, 3, defs[0].ReplicationFactor)
}

func TestUpdateRemoteServerStateRoundTrip(t *testing.T) {
	descriptor := startStatefulMetadataNode(t, string(metadata.ServerStateNormal), map[int32]int64{1: 1})
	client := admin.NewClient(descriptor, testConfig())
	defer client.Close()
	mapper := metadata.XMLMapper{}

	require.NoError(t, client.UpdateRemoteServerState(context.Background(), 1, metadata.ServerStateRebalancing, mapper))

	state, err := client.GetRemoteServerState(context.Background(), 1, mapper)
	require.NoError(t, err)
	require.Equal(t, metadata.ServerStateRebalancing, state)
}
