package bootstrap

import (
	"context"
	"fmt"

	"github.com/devrev/pairdb/admin-client/internal/adminerrors"
	"github.com/devrev/pairdb/admin-client/internal/adminpb"
	"github.com/devrev/pairdb/admin-client/internal/cluster"
	"github.com/devrev/pairdb/admin-client/internal/metadata"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/encoding"
)

const adminpbCodecName = "adminpb"

// adminpbCodec lets a single bootstrap RPC ride over grpc's framing and
// flow control without protoc-generated stubs: it marshals and unmarshals
// using the same hand-rolled wire functions the admin socket protocol
// uses, so the call is wire-compatible with a server that only speaks the
// socket protocol behind a grpc.ClientConnInterface.Invoke.
type adminpbCodec struct{}

func (adminpbCodec) Name() string { return adminpbCodecName }

func (adminpbCodec) Marshal(v any) ([]byte, error) {
	m, ok := v.(interface{ Marshal() ([]byte, error) })
	if !ok {
		return nil, fmt.Errorf("bootstrap: %T does not support adminpb marshaling", v)
	}
	return m.Marshal()
}

func (adminpbCodec) Unmarshal(data []byte, v any) error {
	switch dst := v.(type) {
	case *adminpb.GetMetadataResponse:
		decoded, err := adminpb.UnmarshalGetMetadataResponse(data)
		if err != nil {
			return err
		}
		*dst = *decoded
		return nil
	case *adminpb.AdminRequest:
		decoded, err := adminpb.UnmarshalAdminRequest(data)
		if err != nil {
			return err
		}
		*dst = *decoded
		return nil
	default:
		return fmt.Errorf("bootstrap: %T is not a supported adminpb message", v)
	}
}

func init() {
	encoding.RegisterCodec(adminpbCodec{})
}

// bootstrapMethod is the fixed unary RPC this package invokes on a
// bootstrap endpoint: a single GetMetadata lookup for cluster.xml. There
// is no .proto file behind it; it exists only so the admin wire format
// can be carried over a grpc.ClientConn instead of a raw socket.
const bootstrapMethod = "/pairdb.admin.AdminService/GetMetadata"

// GRPCFetcher resolves a cluster descriptor over a plaintext grpc
// connection to a bootstrap endpoint, used when the fleet exposes a
// lightweight gRPC front door instead of (or in addition to) the admin
// wire protocol's raw TCP port. grpc is never used for the admin
// protocol's streaming or async RPCs, only for this one-shot lookup.
type GRPCFetcher struct {
	Mapper metadata.Mapper
}

func (f GRPCFetcher) FetchCluster(ctx context.Context, bootstrapURL string) (cluster.Descriptor, error) {
	conn, err := grpc.NewClient(bootstrapURL, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return cluster.Descriptor{}, fmt.Errorf("bootstrap: dial grpc bootstrap endpoint %q: %w", bootstrapURL, err)
	}
	defer conn.Close()

	req := &adminpb.AdminRequest{
		Type: adminpb.GetMetadata,
		GetMetadata: &adminpb.GetMetadataRequest{
			Key: []byte(metadata.ClusterKey),
		},
	}
	resp := &adminpb.GetMetadataResponse{}

	callOpts := grpc.CallContentSubtype(adminpbCodecName)
	if err := conn.Invoke(ctx, bootstrapMethod, req, resp, callOpts); err != nil {
		return cluster.Descriptor{}, fmt.Errorf("bootstrap: grpc GetMetadata on %q: %w", bootstrapURL, err)
	}
	if resp.HasError() {
		return cluster.Descriptor{}, adminerrors.DefaultCodeTable.Map(resp.Error.ErrorCode, resp.Error.ErrorMessage)
	}

	mapper := f.Mapper
	if mapper == nil {
		mapper = metadata.XMLMapper{}
	}
	if resp.Versioned == nil {
		return cluster.Descriptor{}, fmt.Errorf("bootstrap: grpc GetMetadata on %q returned no cluster.xml value", bootstrapURL)
	}
	return mapper.DecodeCluster(resp.Versioned.Value)
}
