package cluster_test

import (
	"testing"

	"github.com/devrev/pairdb/admin-client/internal/cluster"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescriptorNodeByID(t *testing.T) {
	d := cluster.NewDescriptor([]cluster.Node{
		{ID: 1, Host: "node1", AdminPort: 6660},
		{ID: 2, Host: "node2", AdminPort: 6660},
	})

	n, ok := d.NodeByID(1)
	require.True(t, ok)
	assert.Equal(t, "node1", n.Host)

	_, ok = d.NodeByID(99)
	assert.False(t, ok)
}

func TestDescriptorIsASnapshot(t *testing.T) {
	nodes := []cluster.Node{{ID: 1, Host: "node1"}}
	d := cluster.NewDescriptor(nodes)

	nodes[0].Host = "mutated"

	n, _ := d.NodeByID(1)
	assert.Equal(t, "node1", n.Host, "descriptor must not alias the caller's slice")
}

func TestMustNodeByIDMissingIsError(t *testing.T) {
	d := cluster.NewDescriptor(nil)
	_, err := d.MustNodeByID(7)
	assert.Error(t, err)
}
