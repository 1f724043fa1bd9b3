package bootstrap

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/devrev/pairdb/admin-client/internal/cluster"
	"github.com/hashicorp/memberlist"
)

// nodeMeta is the gossip payload each fleet member advertises about
// itself: enough for a joining client to build a cluster.Descriptor
// without ever talking to an admin port.
type nodeMeta struct {
	ID         int32   `json:"id"`
	AdminPort  int32   `json:"admin_port"`
	ClientPort int32   `json:"client_port"`
	Partitions []int32 `json:"partitions"`
}

// MemberlistFetcher resolves a cluster descriptor by joining the gossip
// ring at the seed addresses in bootstrapURL (comma-separated host:port
// pairs) and reading every member's advertised metadata.
type MemberlistFetcher struct {
	// SettleDelay is how long to wait after Join for membership and
	// per-node metadata to propagate before snapshotting. Defaults to
	// 500ms.
	SettleDelay time.Duration
}

func (f MemberlistFetcher) FetchCluster(ctx context.Context, bootstrapURL string) (cluster.Descriptor, error) {
	seeds := strings.Split(bootstrapURL, ",")

	mlConfig := memberlist.DefaultLocalConfig()
	mlConfig.Name = fmt.Sprintf("bootstrap-%d", time.Now().UnixNano())

	ml, err := memberlist.Create(mlConfig)
	if err != nil {
		return cluster.Descriptor{}, fmt.Errorf("bootstrap: create memberlist: %w", err)
	}
	defer ml.Shutdown()

	if _, err := ml.Join(seeds); err != nil {
		return cluster.Descriptor{}, fmt.Errorf("bootstrap: join gossip seeds %v: %w", seeds, err)
	}

	settle := f.SettleDelay
	if settle <= 0 {
		settle = 500 * time.Millisecond
	}
	select {
	case <-time.After(settle):
	case <-ctx.Done():
		return cluster.Descriptor{}, ctx.Err()
	}

	var nodes []cluster.Node
	for _, member := range ml.Members() {
		var meta nodeMeta
		if err := json.Unmarshal(member.Meta, &meta); err != nil {
			continue
		}
		nodes = append(nodes, cluster.Node{
			ID:         meta.ID,
			Host:       member.Addr.String(),
			AdminPort:  meta.AdminPort,
			ClientPort: meta.ClientPort,
			Partitions: meta.Partitions,
		})
	}

	return cluster.NewDescriptor(nodes), nil
}
