package adminpb

import "google.golang.org/protobuf/encoding/protowire"

// UpdatePartitionEntriesRequest is both the inner field of the first
// streaming-upload envelope and the bare record shape used for every
// subsequent entry in the same stream.
type UpdatePartitionEntriesRequest struct {
	Store          string
	PartitionEntry *PartitionEntry
	Filter         *FilterSpec
}

func (r *UpdatePartitionEntriesRequest) Marshal() ([]byte, error) {
	var b []byte
	b = appendStringField(b, 1, r.Store)
	var err error
	b, err = appendMessageField(b, 2, r.PartitionEntry)
	if err != nil {
		return nil, err
	}
	b, err = appendMessageField(b, 3, r.Filter)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// UnmarshalUpdatePartitionEntriesRequest parses a bare record written by
// the upload stream (exported for server-side / test-fake consumers).
func UnmarshalUpdatePartitionEntriesRequest(data []byte) (*UpdatePartitionEntriesRequest, error) {
	r := &UpdatePartitionEntriesRequest{}
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
			r.Store = v
			data = data[n:]
		case num == 2 && typ == protowire.BytesType:
			sub, n, err := consumeBytes(data)
			if err != nil {
				return nil, err
			}
			entry, err := unmarshalPartitionEntry(sub)
			if err != nil {
				return nil, err
			}
			r.PartitionEntry = entry
			data = data[n:]
		case num == 3 && typ == protowire.BytesType:
			sub, n, err := consumeBytes(data)
			if err != nil {
				return nil, err
			}
			filter, err := unmarshalFilterSpec(sub)
			if err != nil {
				return nil, err
			}
			r.Filter = filter
			data = data[n:]
		default:
			n, err := skipField(num, typ, data)
			if err != nil {
				return nil, err
			}
			data = data[n:]
		}
	}
	return r, nil
}

// FetchPartitionEntriesRequest initiates the download stream.
type FetchPartitionEntriesRequest struct {
	Partitions  []int32
	Store       string
	Filter      *FilterSpec
	FetchValues bool
}

func (r *FetchPartitionEntriesRequest) Marshal() ([]byte, error) {
	var b []byte
	b = appendRepeatedInt32Field(b, 1, r.Partitions)
	b = appendStringField(b, 2, r.Store)
	var err error
	b, err = appendMessageField(b, 3, r.Filter)
	if err != nil {
		return nil, err
	}
	b = appendBoolField(b, 4, r.FetchValues)
	return b, nil
}

func UnmarshalFetchPartitionEntriesRequest(data []byte) (*FetchPartitionEntriesRequest, error) {
	r := &FetchPartitionEntriesRequest{}
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
			r.Partitions = append(r.Partitions, int32(uint32(v)))
			data = data[n:]
		case num == 2 && typ == protowire.BytesType:
			v, n, err := consumeString(data)
			if err != nil {
				return nil, err
			}
			r.Store = v
			data = data[n:]
		case num == 3 && typ == protowire.BytesType:
			sub, n, err := consumeBytes(data)
			if err != nil {
				return nil, err
			}
			filter, err := unmarshalFilterSpec(sub)
			if err != nil {
				return nil, err
			}
			r.Filter = filter
			data = data[n:]
		case num == 4 && typ == protowire.VarintType:
			v, n, err := consumeVarint(data)
			if err != nil {
				return nil, err
			}
			r.FetchValues = v != 0
			data = data[n:]
		default:
			n, err := skipField(num, typ, data)
			if err != nil {
				return nil, err
			}
			data = data[n:]
		}
	}
	return r, nil
}

// DeletePartitionEntriesRequest deletes every entry in the given
// partitions matching an optional filter.
type DeletePartitionEntriesRequest struct {
	Partitions []int32
	Store      string
	Filter     *FilterSpec
}

func (r *DeletePartitionEntriesRequest) Marshal() ([]byte, error) {
	var b []byte
	b = appendRepeatedInt32Field(b, 1, r.Partitions)
	b = appendStringField(b, 2, r.Store)
	var err error
	b, err = appendMessageField(b, 3, r.Filter)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func unmarshalDeletePartitionEntriesRequest(data []byte) (*DeletePartitionEntriesRequest, error) {
	r := &DeletePartitionEntriesRequest{}
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
			r.Partitions = append(r.Partitions, int32(uint32(v)))
			data = data[n:]
		case num == 2 && typ == protowire.BytesType:
			v, n, err := consumeString(data)
			if err != nil {
				return nil, err
			}
			r.Store = v
			data = data[n:]
		case num == 3 && typ == protowire.BytesType:
			sub, n, err := consumeBytes(data)
			if err != nil {
				return nil, err
			}
			filter, err := unmarshalFilterSpec(sub)
			if err != nil {
				return nil, err
			}
			r.Filter = filter
			data = data[n:]
		default:
			n, err := skipField(num, typ, data)
			if err != nil {
				return nil, err
			}
			data = data[n:]
		}
	}
	return r, nil
}

// InitiateFetchAndUpdateRequest kicks off migratePartitions on the stealer.
type InitiateFetchAndUpdateRequest struct {
	NodeID     int32
	Partitions []int32
	Store      string
	Filter     *FilterSpec
}

func (r *InitiateFetchAndUpdateRequest) Marshal() ([]byte, error) {
	var b []byte
	b = appendInt32Field(b, 1, r.NodeID)
	b = appendRepeatedInt32Field(b, 2, r.Partitions)
	b = appendStringField(b, 3, r.Store)
	var err error
	b, err = appendMessageField(b, 4, r.Filter)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func unmarshalInitiateFetchAndUpdateRequest(data []byte) (*InitiateFetchAndUpdateRequest, error) {
	r := &InitiateFetchAndUpdateRequest{}
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
			r.NodeID = int32(uint32(v))
			data = data[n:]
		case num == 2 && typ == protowire.VarintType:
			v, n, err := consumeVarint(data)
			if err != nil {
				return nil, err
			}
			r.Partitions = append(r.Partitions, int32(uint32(v)))
			data = data[n:]
		case num == 3 && typ == protowire.BytesType:
			v, n, err := consumeString(data)
			if err != nil {
				return nil, err
			}
			r.Store = v
			data = data[n:]
		case num == 4 && typ == protowire.BytesType:
			sub, n, err := consumeBytes(data)
			if err != nil {
				return nil, err
			}
			filter, err := unmarshalFilterSpec(sub)
			if err != nil {
				return nil, err
			}
			r.Filter = filter
			data = data[n:]
		default:
			n, err := skipField(num, typ, data)
			if err != nil {
				return nil, err
			}
			data = data[n:]
		}
	}
	return r, nil
}

// AsyncOperationStatusRequest polls a background operation.
type AsyncOperationStatusRequest struct {
	RequestID int32
}

func (r *AsyncOperationStatusRequest) Marshal() ([]byte, error) {
	var b []byte
	b = appendInt32Field(b, 1, r.RequestID)
	return b, nil
}

func unmarshalAsyncOperationStatusRequest(data []byte) (*AsyncOperationStatusRequest, error) {
	r := &AsyncOperationStatusRequest{}
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
			r.RequestID = int32(uint32(v))
			data = data[n:]
		default:
			n, err := skipField(num, typ, data)
			if err != nil {
				return nil, err
			}
			data = data[n:]
		}
	}
	return r, nil
}

// UpdateMetadataRequest is the metadata write primitive.
type UpdateMetadataRequest struct {
	Key       []byte
	Versioned *VersionedBytes
}

func (r *UpdateMetadataRequest) Marshal() ([]byte, error) {
	var b []byte
	b = appendBytesField(b, 1, r.Key)
	var err error
	b, err = appendMessageField(b, 2, r.Versioned)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func unmarshalUpdateMetadataRequest(data []byte) (*UpdateMetadataRequest, error) {
	r := &UpdateMetadataRequest{}
	for len(data) > 0 {
		num, typ, n, err := consumeTag(data)
		if err != nil {
			return nil, err
		}
		data = data[n:]
		switch {
		case num == 1 && typ == protowire.BytesType:
			v, n, err := consumeBytes(data)
			if err != nil {
				return nil, err
			}
			r.Key = v
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
			r.Versioned = versioned
			data = data[n:]
		default:
			n, err := skipField(num, typ, data)
			if err != nil {
				return nil, err
			}
			data = data[n:]
		}
	}
	return r, nil
}

// GetMetadataRequest is the metadata read primitive.
type GetMetadataRequest struct {
	Key []byte
}

func (r *GetMetadataRequest) Marshal() ([]byte, error) {
	var b []byte
	b = appendBytesField(b, 1, r.Key)
	return b, nil
}

func unmarshalGetMetadataRequest(data []byte) (*GetMetadataRequest, error) {
	r := &GetMetadataRequest{}
	for len(data) > 0 {
		num, typ, n, err := consumeTag(data)
		if err != nil {
			return nil, err
		}
		data = data[n:]
		switch {
		case num == 1 && typ == protowire.BytesType:
			v, n, err := consumeBytes(data)
			if err != nil {
				return nil, err
			}
			r.Key = v
			data = data[n:]
		default:
			n, err := skipField(num, typ, data)
			if err != nil {
				return nil, err
			}
			data = data[n:]
		}
	}
	return r, nil
}
