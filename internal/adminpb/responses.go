package adminpb

import "google.golang.org/protobuf/encoding/protowire"

func unmarshalOptionalError(num protowire.Number, typ protowire.Type, data []byte, dst **Error) (int, error) {
	sub, n, err := consumeBytes(data)
	if err != nil {
		return 0, err
	}
	e, err := unmarshalError(sub)
	if err != nil {
		return 0, err
	}
	*dst = e
	return n, nil
}

// UpdatePartitionEntriesResponse is the single response at the end of an
// upload stream.
type UpdatePartitionEntriesResponse struct {
	Error *Error
}

func (r *UpdatePartitionEntriesResponse) HasError() bool { return r.Error != nil }

func UnmarshalUpdatePartitionEntriesResponse(data []byte) (*UpdatePartitionEntriesResponse, error) {
	r := &UpdatePartitionEntriesResponse{}
	for len(data) > 0 {
		num, typ, n, err := consumeTag(data)
		if err != nil {
			return nil, err
		}
		data = data[n:]
		switch {
		case num == 1 && typ == protowire.BytesType:
			n, err := unmarshalOptionalError(num, typ, data, &r.Error)
			if err != nil {
				return nil, err
			}
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

// FetchPartitionEntriesResponse is one record of the download stream.
type FetchPartitionEntriesResponse struct {
	Error          *Error
	PartitionEntry *PartitionEntry
	Key            []byte
}

func (r *FetchPartitionEntriesResponse) HasError() bool { return r.Error != nil }

func UnmarshalFetchPartitionEntriesResponse(data []byte) (*FetchPartitionEntriesResponse, error) {
	r := &FetchPartitionEntriesResponse{}
	for len(data) > 0 {
		num, typ, n, err := consumeTag(data)
		if err != nil {
			return nil, err
		}
		data = data[n:]
		switch {
		case num == 1 && typ == protowire.BytesType:
			n, err := unmarshalOptionalError(num, typ, data, &r.Error)
			if err != nil {
				return nil, err
			}
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

// Marshal lets a fake server in tests produce a FetchPartitionEntriesResponse.
func (r *FetchPartitionEntriesResponse) Marshal() ([]byte, error) {
	var b []byte
	var err error
	b, err = appendMessageField(b, 1, r.Error)
	if err != nil {
		return nil, err
	}
	b, err = appendMessageField(b, 2, r.PartitionEntry)
	if err != nil {
		return nil, err
	}
	b = appendBytesField(b, 3, r.Key)
	return b, nil
}

func (r *UpdatePartitionEntriesResponse) Marshal() ([]byte, error) {
	return appendMessageField(nil, 1, r.Error)
}

// DeletePartitionEntriesResponse reports how many entries were deleted.
type DeletePartitionEntriesResponse struct {
	Error *Error
	Count int32
}

func (r *DeletePartitionEntriesResponse) HasError() bool { return r.Error != nil }

func (r *DeletePartitionEntriesResponse) Marshal() ([]byte, error) {
	var b []byte
	var err error
	b, err = appendMessageField(b, 1, r.Error)
	if err != nil {
		return nil, err
	}
	b = appendInt32Field(b, 2, r.Count)
	return b, nil
}

func UnmarshalDeletePartitionEntriesResponse(data []byte) (*DeletePartitionEntriesResponse, error) {
	r := &DeletePartitionEntriesResponse{}
	for len(data) > 0 {
		num, typ, n, err := consumeTag(data)
		if err != nil {
			return nil, err
		}
		data = data[n:]
		switch {
		case num == 1 && typ == protowire.BytesType:
			n, err := unmarshalOptionalError(num, typ, data, &r.Error)
			if err != nil {
				return nil, err
			}
			data = data[n:]
		case num == 2 && typ == protowire.VarintType:
			v, n, err := consumeVarint(data)
			if err != nil {
				return nil, err
			}
			r.Count = int32(uint32(v))
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

// AsyncOperationStatusResponse carries both migratePartitions' initial
// requestId and getAsyncRequestStatus' poll result; the caller only reads
// the fields relevant to the call it made.
type AsyncOperationStatusResponse struct {
	Error       *Error
	RequestID   int32
	Description string
	Status      string
	Complete    bool
}

func (r *AsyncOperationStatusResponse) HasError() bool { return r.Error != nil }

func (r *AsyncOperationStatusResponse) Marshal() ([]byte, error) {
	var b []byte
	var err error
	b, err = appendMessageField(b, 1, r.Error)
	if err != nil {
		return nil, err
	}
	b = appendInt32Field(b, 2, r.RequestID)
	b = appendStringField(b, 3, r.Description)
	b = appendStringField(b, 4, r.Status)
	b = appendBoolField(b, 5, r.Complete)
	return b, nil
}

func UnmarshalAsyncOperationStatusResponse(data []byte) (*AsyncOperationStatusResponse, error) {
	r := &AsyncOperationStatusResponse{}
	for len(data) > 0 {
		num, typ, n, err := consumeTag(data)
		if err != nil {
			return nil, err
		}
		data = data[n:]
		switch {
		case num == 1 && typ == protowire.BytesType:
			n, err := unmarshalOptionalError(num, typ, data, &r.Error)
			if err != nil {
				return nil, err
			}
			data = data[n:]
		case num == 2 && typ == protowire.VarintType:
			v, n, err := consumeVarint(data)
			if err != nil {
				return nil, err
			}
			r.RequestID = int32(uint32(v))
			data = data[n:]
		case num == 3 && typ == protowire.BytesType:
			v, n, err := consumeString(data)
			if err != nil {
				return nil, err
			}
			r.Description = v
			data = data[n:]
		case num == 4 && typ == protowire.BytesType:
			v, n, err := consumeString(data)
			if err != nil {
				return nil, err
			}
			r.Status = v
			data = data[n:]
		case num == 5 && typ == protowire.VarintType:
			v, n, err := consumeVarint(data)
			if err != nil {
				return nil, err
			}
			r.Complete = v != 0
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

// UpdateMetadataResponse acknowledges a metadata write.
type UpdateMetadataResponse struct {
	Error *Error
}

func (r *UpdateMetadataResponse) HasError() bool { return r.Error != nil }

func (r *UpdateMetadataResponse) Marshal() ([]byte, error) {
	return appendMessageField(nil, 1, r.Error)
}

func UnmarshalUpdateMetadataResponse(data []byte) (*UpdateMetadataResponse, error) {
	r := &UpdateMetadataResponse{}
	for len(data) > 0 {
		num, typ, n, err := consumeTag(data)
		if err != nil {
			return nil, err
		}
		data = data[n:]
		switch {
		case num == 1 && typ == protowire.BytesType:
			n, err := unmarshalOptionalError(num, typ, data, &r.Error)
			if err != nil {
				return nil, err
			}
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

// GetMetadataResponse carries the versioned metadata value.
type GetMetadataResponse struct {
	Error     *Error
	Versioned *VersionedBytes
}

func (r *GetMetadataResponse) HasError() bool { return r.Error != nil }

func (r *GetMetadataResponse) Marshal() ([]byte, error) {
	var b []byte
	var err error
	b, err = appendMessageField(b, 1, r.Error)
	if err != nil {
		return nil, err
	}
	b, err = appendMessageField(b, 2, r.Versioned)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func UnmarshalGetMetadataResponse(data []byte) (*GetMetadataResponse, error) {
	r := &GetMetadataResponse{}
	for len(data) > 0 {
		num, typ, n, err := consumeTag(data)
		if err != nil {
			return nil, err
		}
		data = data[n:]
		switch {
		case num == 1 && typ == protowire.BytesType:
			n, err := unmarshalOptionalError(num, typ, data, &r.Error)
			if err != nil {
				return nil, err
			}
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
