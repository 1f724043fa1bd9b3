package cluster

import "context"

// Fetcher resolves a bootstrap URL to an initial cluster Descriptor.
// The client only needs something that hands back a Descriptor. Concrete
// fetchers (one using the admin wire protocol itself, one using gossip
// membership, one using a data-plane gRPC endpoint) live in
// internal/bootstrap, which depends on this package rather than the other
// way around.
type Fetcher interface {
	FetchCluster(ctx context.Context, bootstrapURL string) (Descriptor, error)
}
