package metadata

import (
	"encoding/xml"
	"fmt"

	"github.com/devrev/pairdb/admin-client/internal/cluster"
)

// XMLMapper is the default Mapper, using encoding/xml. No third-party XML
// library in the retrieved examples covers this narrow concern (see
// DESIGN.md), so this is the module's one intentional stdlib-only
// component.
type XMLMapper struct{}

type xmlNode struct {
	ID         int32   `xml:"id"`
	Host       string  `xml:"host"`
	ClientPort int32   `xml:"client-port"`
	AdminPort  int32   `xml:"admin-port"`
	Partitions []int32 `xml:"partitions>partition"`
}

type xmlCluster struct {
	XMLName xml.Name  `xml:"cluster"`
	Nodes   []xmlNode `xml:"server"`
}

func (XMLMapper) EncodeCluster(d cluster.Descriptor) ([]byte, error) {
	doc := xmlCluster{}
	for _, n := range d.Nodes() {
		doc.Nodes = append(doc.Nodes, xmlNode{
			ID:         n.ID,
			Host:       n.Host,
			ClientPort: n.ClientPort,
			AdminPort:  n.AdminPort,
			Partitions: n.Partitions,
		})
	}
	data, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("metadata: encode cluster xml: %w", err)
	}
	return data, nil
}

func (XMLMapper) DecodeCluster(data []byte) (cluster.Descriptor, error) {
	var doc xmlCluster
	if err := xml.Unmarshal(data, &doc); err != nil {
		return cluster.Descriptor{}, fmt.Errorf("metadata: decode cluster xml: %w", err)
	}
	nodes := make([]cluster.Node, 0, len(doc.Nodes))
	for _, n := range doc.Nodes {
		nodes = append(nodes, cluster.Node{
			ID:         n.ID,
			Host:       n.Host,
			ClientPort: n.ClientPort,
			AdminPort:  n.AdminPort,
			Partitions: n.Partitions,
		})
	}
	return cluster.NewDescriptor(nodes), nil
}

type xmlStoreDef struct {
	Name              string `xml:"name"`
	ReplicationFactor int    `xml:"replication-factor"`
	RequiredReads     int    `xml:"required-reads"`
	RequiredWrites    int    `xml:"required-writes"`
}

type xmlStoreDefList struct {
	XMLName xml.Name      `xml:"stores"`
	Stores  []xmlStoreDef `xml:"store"`
}

func (XMLMapper) EncodeStoreDefs(defs []StoreDef) ([]byte, error) {
	doc := xmlStoreDefList{}
	for _, d := range defs {
		doc.Stores = append(doc.Stores, xmlStoreDef{
			Name:              d.Name,
			ReplicationFactor: d.ReplicationFactor,
			RequiredReads:     d.RequiredReads,
			RequiredWrites:    d.RequiredWrites,
		})
	}
	data, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("metadata: encode store defs xml: %w", err)
	}
	return data, nil
}

func (XMLMapper) DecodeStoreDefs(data []byte) ([]StoreDef, error) {
	var doc xmlStoreDefList
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("metadata: decode store defs xml: %w", err)
	}
	defs := make([]StoreDef, 0, len(doc.Stores))
	for _, s := range doc.Stores {
		defs = append(defs, StoreDef{
			Name:              s.Name,
			ReplicationFactor: s.ReplicationFactor,
			RequiredReads:     s.RequiredReads,
			RequiredWrites:    s.RequiredWrites,
		})
	}
	return defs, nil
}

func (XMLMapper) EncodeServerState(s ServerState) ([]byte, error) {
	return []byte(s), nil
}

func (XMLMapper) DecodeServerState(data []byte) (ServerState, error) {
	return ServerState(data), nil
}
