package metadata

import "github.com/devrev/pairdb/admin-client/internal/cluster"

// StoreDef describes one named store hosted by the cluster, as carried in
// the stores.xml metadata value.
type StoreDef struct {
	Name              string
	ReplicationFactor int
	RequiredReads     int
	RequiredWrites    int
}

// ServerState is one of the small enumerated states a node reports under
// the server.state metadata key.
type ServerState string

const (
	ServerStateNormal      ServerState = "NORMAL_SERVER"
	ServerStateRebalancing ServerState = "REBALANCING_MASTER_SERVER"
	ServerStateOffline     ServerState = "OFFLINE_SERVER"
)

// Mapper encodes and decodes the metadata values the admin protocol
// transports as opaque byte strings. The client never inspects these
// bytes itself outside of a Mapper; a caller that only needs raw metadata
// access can use Client.GetRemoteMetadata/UpdateRemoteMetadata directly
// and skip this interface entirely.
type Mapper interface {
	EncodeCluster(d cluster.Descriptor) ([]byte, error)
	DecodeCluster(data []byte) (cluster.Descriptor, error)

	EncodeStoreDefs(defs []StoreDef) ([]byte, error)
	DecodeStoreDefs(data []byte) ([]StoreDef, error)

	EncodeServerState(s ServerState) ([]byte, error)
	DecodeServerState(data []byte) (ServerState, error)
}
