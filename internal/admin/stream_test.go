package admin_test

import (
	"context"
	"testing"

	"github.com/devrev/pairdb/admin-client/internal/admin"
	"github.com/devrev/pairdb/admin-client/internal/adminpb"
	"github.com/devrev/pairdb/admin-client/internal/filter"
	"github.com/devrev/pairdb/admin-client/internal/vclock"
	"github.com/devrev/pairdb/admin-client/internal/wire"
	"github.com/stretchr/testify/require"
)

func entry(key, value string) admin.PartitionEntry {
	return admin.PartitionEntry{
		Key: []byte(key),
		Versioned: admin.Versioned[[]byte]{
			Value:   []byte(value),
			Version: vclock.New(map[int32]int64{1: 1}, 0),
		},
	}
}

func TestUpdateEntriesSendsEnvelopeThenBareRecordsThenEOS(t *testing.T) {
	var records []*adminpb.UpdatePartitionEntriesRequest

	descriptor := startFakeNode(t, func(t *testing.T, conn *fakeNodeConn) {
		data, eof, err := wire.ReadMessage(conn.Reader)
		require.NoError(t, err)
		require.False(t, eof)
		env, err := adminpb.UnmarshalAdminRequest(data)
		require.NoError(t, err)
		require.Equal(t, adminpb.UpdatePartitionEntries, env.Type)
		records = append(records, env.UpdatePartitionEntries)

		for {
			data, eof, err := wire.ReadMessage(conn.Reader)
			require.NoError(t, err)
			if eof {
				break
			}
			rec, err := adminpb.UnmarshalUpdatePartitionEntriesRequest(data)
			require.NoError(t, err)
			records = append(records, rec)
		}

		resp := &adminpb.UpdatePartitionEntriesResponse{}
		payload, err := resp.Marshal()
		require.NoError(t, err)
		require.NoError(t, wire.WriteMessage(conn.Writer, payload))
		require.NoError(t, conn.Writer.Flush())
	})

	client := admin.NewClient(descriptor, testConfig())
	defer client.Close()

	entries := []admin.PartitionEntry{entry("k1", "v1"), entry("k2", "v2"), entry("k3", "v3")}
	seq := func(yield func(admin.PartitionEntry) bool) {
		for _, e := range entries {
			if !yield(e) {
				return
			}
		}
	}

	spec := &filter.Spec{ClassName: "even-keys", Payload: []byte("p")}
	require.NoError(t, client.UpdateEntries(context.Background(), 1, "stores.json", seq, spec))

	require.Len(t, records, 3)
	require.Equal(t, "stores.json", records[0].Store)
	require.NotNil(t, records[0].Filter)
	require.Equal(t, "even-keys", records[0].Filter.Name)
	require.Equal(t, []byte("k1"), records[0].PartitionEntry.Key)

	require.Empty(t, records[1].Store)
	require.Nil(t, records[1].Filter)
	require.Equal(t, []byte("k2"), records[1].PartitionEntry.Key)
	require.Equal(t, []byte("k3"), records[2].PartitionEntry.Key)
}

func TestFetchEntriesStreamsUntilEOS(t *testing.T) {
	descriptor := startFakeNode(t, func(t *testing.T, conn *fakeNodeConn) {
		data, eof, err := wire.ReadMessage(conn.Reader)
		require.NoError(t, err)
		require.False(t, eof)
		req, err := adminpb.UnmarshalAdminRequest(data)
		require.NoError(t, err)
		require.Equal(t, adminpb.FetchPartitionEntries, req.Type)
		require.True(t, req.FetchPartitionEntries.FetchValues)

		for _, kv := range [][2]string{{"a", "1"}, {"b", "2"}} {
			resp := &adminpb.FetchPartitionEntriesResponse{
				PartitionEntry: &adminpb.PartitionEntry{
					Key: []byte(kv[0]),
					Versioned: &adminpb.VersionedBytes{
						Value:   []byte(kv[1]),
						Version: &adminpb.VectorClock{Timestamp: 1},
					},
				},
			}
			payload, err := resp.Marshal()
			require.NoError(t, err)
			require.NoError(t, wire.WriteRecord(conn.Writer, payload))
		}
		require.NoError(t, wire.WriteEndOfStream(conn.Writer))
		require.NoError(t, conn.Writer.Flush())
	})

	client := admin.NewClient(descriptor, testConfig())
	defer client.Close()

	stream, err := client.FetchEntries(context.Background(), 1, "stores.json", []int32{0}, nil)
	require.NoError(t, err)

	var got []string
	for {
		e, ok, err := stream.Next(context.Background())
		require.NoError(t, err)
		if !ok {
			break
		}
		got = append(got, string(e.Key)+"="+string(e.Versioned.Value))
	}
	require.Equal(t, []string{"a=1", "b=2"}, got)
}

func TestFetchEntriesSurfacesInStreamError(t *testing.T) {
	descriptor := startFakeNode(t, func(t *testing.T, conn *fakeNodeConn) {
		_, _, err := wire.ReadMessage(conn.Reader)
		require.NoError(t, err)

		ok := &adminpb.FetchPartitionEntriesResponse{
			PartitionEntry: &adminpb.PartitionEntry{Key: []byte("a"), Versioned: &adminpb.VersionedBytes{Value: []byte("1")}},
		}
		payload, err := ok.Marshal()
		require.NoError(t, err)
		require.NoError(t, wire.WriteRecord(conn.Writer, payload))

		failed := &adminpb.FetchPartitionEntriesResponse{Error: &adminpb.Error{ErrorCode: 99, ErrorMessage: "oops"}}
		payload, err = failed.Marshal()
		require.NoError(t, err)
		require.NoError(t, wire.WriteRecord(conn.Writer, payload))
		require.NoError(t, conn.Writer.Flush())
	})

	client := admin.NewClient(descriptor, testConfig())
	defer client.Close()

	stream, err := client.FetchEntries(context.Background(), 1, "stores.json", []int32{0}, nil)
	require.NoError(t, err)

	_, ok, err := stream.Next(context.Background())
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = stream.Next(context.Background())
	require.Error(t, err)
	require.False(t, ok)
}

func TestFetchKeysOnlyTransportsKeys(t *testing.T) {
	descriptor := startFakeNode(t, func(t *testing.T, conn *fakeNodeConn) {
		data, _, err := wire.ReadMessage(conn.Reader)
		require.NoError(t, err)
		req, err := adminpb.UnmarshalAdminRequest(data)
		require.NoError(t, err)
		require.False(t, req.FetchPartitionEntries.FetchValues)

		resp := &adminpb.FetchPartitionEntriesResponse{Key: []byte("only-a-key")}
		payload, err := resp.Marshal()
		require.NoError(t, err)
		require.NoError(t, wire.WriteRecord(conn.Writer, payload))
		require.NoError(t, wire.WriteEndOfStream(conn.Writer))
		require.NoError(t, conn.Writer.Flush())
	})

	client := admin.NewClient(descriptor, testConfig())
	defer client.Close()

	stream, err := client.FetchKeys(context.Background(), 1, "stores.json", []int32{0}, nil)
	require.NoError(t, err)

	key, ok, err := stream.Next(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("only-a-key"), key)

	_, ok, err = stream.Next(context.Background())
	require.NoError(t, err)
	require.False(t, ok)
}
