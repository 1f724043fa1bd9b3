package adminpb

import "google.golang.org/protobuf/encoding/protowire"

// Error is the optional error sub-field every response carries.
type Error struct {
	ErrorCode    uint32
	ErrorMessage string
}

func (e *Error) Marshal() ([]byte, error) {
	if e == nil {
		return nil, nil
	}
	var b []byte
	b = appendVarintField(b, 1, uint64(e.ErrorCode))
	b = appendStringField(b, 2, e.ErrorMessage)
	return b, nil
}

func unmarshalError(data []byte) (*Error, error) {
	e := &Error{}
	for len(data) > 0 {
		num, typ, n, err := consumeTag(data)
		if err != nil {
			return nil, err
		}
		data = data[n:]
		switch {
		case num == 1 && typ == protowire.VarintType:
			v, n, err := consumeVarint(data)
			if err != nil {
				return nil, err
			}
			e.ErrorCode = uint32(v)
			data = data[n:]
		case num == 2 && typ == protowire.BytesType:
			v, n, err := consumeString(data)
			if err != nil {
				return nil, err
			}
			e.ErrorMessage = v
			data = data[n:]
		default:
			n, err := skipField(num, typ, data)
			if err != nil {
				return nil, err
			}
			data = data[n:]
		}
	}
	return e, nil
}

// ClockEntry is one (nodeID -> counter) pair in a VectorClock.
type ClockEntry struct {
	NodeID int32
	Count  int64
}

func (c *ClockEntry) Marshal() ([]byte, error) {
	var b []byte
	b = appendInt32Field(b, 1, c.NodeID)
	b = appendInt64Field(b, 2, c.Count)
	return b, nil
}

func unmarshalClockEntry(data []byte) (*ClockEntry, error) {
	c := &ClockEntry{}
	for len(data) > 0 {
		num, typ, n, err := consumeTag(data)
		if err != nil {
			return nil, err
		}
		data = data[n:]
		switch {
		case num == 1 && typ == protowire.VarintType:
			v, n, err := consumeVarint(data)
			if err != nil {
				return nil, err
			}
			c.NodeID = int32(uint32(v))
			data = data[n:]
		case num == 2 && typ == protowire.VarintType:
			v, n, err := consumeVarint(data)
			if err != nil {
				return nil, err
			}
			c.Count = int64(v)
			data = data[n:]
		default:
			n, err := skipField(num, typ, data)
			if err != nil {
				return nil, err
			}
			data = data[n:]
		}
	}
	return c, nil
}

// VectorClock is the wire form of vclock.Clock.
type VectorClock struct {
	Entries   []*ClockEntry
	Timestamp int64
}

func (v *VectorClock) Marshal() ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	var b []byte
	for _, entry := range v.Entries {
		sub, err := entry.Marshal()
		if err != nil {
			return nil, err
		}
		b = protowire.AppendTag(b, 1, protowire.BytesType)
		b = protowire.AppendBytes(b, sub)
	}
	b = appendInt64Field(b, 2, v.Timestamp)
	return b, nil
}

func unmarshalVectorClock(data []byte) (*VectorClock, error) {
	v := &VectorClock{}
	for len(data) > 0 {
		num, typ, n, err := consumeTag(data)
		if err != nil {
			return nil, err
		}
		data = data[n:]
		switch {
		case num == 1 && typ == protowire.BytesType:
			sub, n, err := consumeBytes(data)
			if err != nil {
				return nil, err
			}
			entry, err := unmarshalClockEntry(sub)
			if err != nil {
				return nil, err
			}
			v.Entries = append(v.Entries, entry)
			data = data[n:]
		case num == 2 && typ == protowire.VarintType:
			val, n, err := consumeVarint(data)
			if err != nil {
				return nil, err
			}
			v.Timestamp = int64(val)
			data = data[n:]
		default:
			n, err := skipField(num, typ, data)
			if err != nil {
				return nil, err
			}
			data = data[n:]
		}
	}
	return v, nil
}

// VersionedBytes pairs an opaque value with the VectorClock of the write
// that produced it.
type VersionedBytes struct {
	Value   []byte
	Version *VectorClock
}

func (v *VersionedBytes) Marshal() ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	var b []byte
	b = appendBytesField(b, 1, v.Value)
	var err error
	b, err = appendMessageField(b, 2, v.Version)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func unmarshalVersionedBytes(data []byte) (*VersionedBytes, error) {
	v := &VersionedBytes{}
	for len(data) > 0 {
		num, typ, n, err := consumeTag(data)
		if err != nil {
			return nil, err
		}
		data = data[n:]
		switch {
		case num == 1 && typ == protowire.BytesType:
			val, n, err := consumeBytes(data)
			if err != nil {
				return nil, err
			}
			v.Value = val
			data = data[n:]
		case num == 2 && typ == protowire.BytesType:
			sub, n, err := consumeBytes(data)
			if err != nil {
				return nil, err
			}
			clock, err := unmarshalVectorClock(sub)
			if err != nil {
				return nil, err
			}
			v.Version = clock
			data = data[n:]
		default:
			n, err := skipField(num, typ, data)
			if err != nil {
				return nil, err
			}
			data = data[n:]
		}
	}
	return v, nil
}

// PartitionEntry is the unit transferred by the bulk streaming RPCs.
type PartitionEntry struct {
	Key       []byte
	Versioned *VersionedBytes
}

func (p *PartitionEntry) Marshal() ([]byte, error) {
	if p == nil {
		return nil, nil
	}
	var b []byte
	b = appendBytesField(b, 1, p.Key)
	var err error
	b, err = appendMessageField(b, 2, p.Versioned)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func unmarshalPartitionEntry(data []byte) (*PartitionEntry, error) {
	p := &PartitionEntry{}
	for len(data) > 0 {
		num, typ, n, err := consumeTag(data)
		if err != nil {
			return nil, err
		}
		data = data[n:]
		switch {
		case num == 1 && typ == protowire.BytesType:
			val, n, err := consumeBytes(data)
			if err != nil {
				return nil, err
			}
			p.Key = val
			data = data[n:]
		case num == 2 && typ == protowire.BytesType:
			sub, n, err := consumeBytes(data)
			if err != nil {
				return nil, err
			}
			versioned, err := unmarshalVersionedBytes(sub)
			if err != nil {
				return nil, err
			}
			p.Versioned = versioned
			data = data[n:]
		default:
			n, err := skipField(num, typ, data)
			if err != nil {
				return nil, err
			}
			data = data[n:]
		}
	}
	return p, nil
}

// FilterSpec is the (name, payload) pair transported for a caller-supplied
// predicate. The client never interprets Data; see internal/filter.
type FilterSpec struct {
	Name string
	Data []byte
}

func (f *FilterSpec) Marshal() ([]byte, error) {
	if f == nil {
		return nil, nil
	}
	var b []byte
	b = appendStringField(b, 1, f.Name)
	b = appendBytesField(b, 2, f.Data)
	return b, nil
}

func unmarshalFilterSpec(data []byte) (*FilterSpec, error) {
	f := &FilterSpec{}
	for len(data) > 0 {
		num, typ, n, err := consumeTag(data)
		if err != nil {
			return nil, err
		}
		data = data[n:]
		switch {
		case num == 1 && typ == protowire.BytesType:
			v, n, err := consumeString(data)
			if err != nil {
				return nil, err
			}
			f.Name = v
			data = data[n:]
		case num == 2 && typ == protowire.BytesType:
			v, n, err := consumeBytes(data)
			if err != nil {
				return nil, err
			}
			f.Data = v
			data = data[n:]
		default:
			n, err := skipField(num, typ, data)
			if err != nil {
				return nil, err
			}
			data = data[n:]
		}
	}
	return f, nil
}
