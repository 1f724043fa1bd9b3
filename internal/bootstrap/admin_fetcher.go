// Package bootstrap implements cluster.Fetcher against three different
// discovery mechanisms: the admin wire protocol itself, gossip membership,
// and a small gRPC bootstrap endpoint. It depends on internal/admin so it
// must live outside internal/cluster to avoid an import cycle.
package bootstrap

import (
	"context"
	"fmt"
	"net"
	"strconv"

	"github.com/devrev/pairdb/admin-client/internal/admin"
	"github.com/devrev/pairdb/admin-client/internal/cluster"
	"github.com/devrev/pairdb/admin-client/internal/config"
	"github.com/devrev/pairdb/admin-client/internal/metadata"
)

// AdminFetcher resolves a cluster descriptor by connecting directly to a
// single known node's admin port and reading its cluster.xml metadata key.
// The bootstrapURL is that node's "host:port" admin address.
type AdminFetcher struct {
	Mapper metadata.Mapper
}

// FetchCluster dials bootstrapURL as a single transient node, reads
// cluster.xml, and discards the connection once decoded.
func (f AdminFetcher) FetchCluster(ctx context.Context, bootstrapURL string) (cluster.Descriptor, error) {
	host, portStr, err := net.SplitHostPort(bootstrapURL)
	if err != nil {
		return cluster.Descriptor{}, fmt.Errorf("bootstrap: parse admin bootstrap url %q: %w", bootstrapURL, err)
	}
	portNum, err := strconv.Atoi(portStr)
	if err != nil {
		return cluster.Descriptor{}, fmt.Errorf("bootstrap: parse admin bootstrap port %q: %w", portStr, err)
	}
	port := int32(portNum)

	mapper := f.Mapper
	if mapper == nil {
		mapper = metadata.XMLMapper{}
	}

	transient := cluster.NewDescriptor([]cluster.Node{{ID: 0, Host: host, AdminPort: port}})
	client := admin.NewClient(transient, config.Default())
	defer client.Close()

	return client.GetRemoteCluster(ctx, 0, mapper)
}
