package transport

import "fmt"

// AdminProtocolTag is the protocol tag admin traffic uses on the pool, so
// it never shares a connection with data-plane traffic to the same
// (host, port).
const AdminProtocolTag = "ADMIN_PROTOCOL_BUFFERS"

// Destination identifies one endpoint this client dials: a node's admin
// port plus a protocol tag. The tag is part of the pool key so admin and
// data-plane traffic to the same host/port are never pooled together.
type Destination struct {
	Host     string
	Port     int32
	Protocol string
}

func (d Destination) String() string {
	return fmt.Sprintf("%s:%d[%s]", d.Host, d.Port, d.Protocol)
}
