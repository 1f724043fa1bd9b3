package adminpb

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// RequestType identifies which request/response pair an AdminRequest
// envelope carries, mirroring the discriminator a protoc-generated oneof
// would produce.
type RequestType int32

const (
	UpdatePartitionEntries RequestType = 1
	FetchPartitionEntries  RequestType = 2
	DeletePartitionEntries RequestType = 3
	InitiateFetchAndUpdate RequestType = 4
	AsyncOperationStatus   RequestType = 5
	UpdateMetadata         RequestType = 6
	GetMetadata            RequestType = 7
)

func (t RequestType) String() string {
	switch t {
	case UpdatePartitionEntries:
		return "UpdatePartitionEntries"
	case FetchPartitionEntries:
		return "FetchPartitionEntries"
	case DeletePartitionEntries:
		return "DeletePartitionEntries"
	case InitiateFetchAndUpdate:
		return "InitiateFetchAndUpdate"
	case AsyncOperationStatus:
		return "AsyncOperationStatus"
	case UpdateMetadata:
		return "UpdateMetadata"
	case GetMetadata:
		return "GetMetadata"
	default:
		return fmt.Sprintf("RequestType(%d)", int32(t))
	}
}

// AdminRequest is the top-level envelope the socket-level codec writes:
// a type discriminator plus exactly one populated sub-request. For the two
// streaming RPCs this is only the first message on the wire; every record
// after it is a bare UpdatePartitionEntriesRequest (upload) or
// FetchPartitionEntriesResponse (download) with no envelope wrapper.
type AdminRequest struct {
	Type RequestType

	UpdatePartitionEntries *UpdatePartitionEntriesRequest
	FetchPartitionEntries  *FetchPartitionEntriesRequest
	DeletePartitionEntries *DeletePartitionEntriesRequest
	InitiateFetchAndUpdate *InitiateFetchAndUpdateRequest
	AsyncOperationStatus   *AsyncOperationStatusRequest
	UpdateMetadata         *UpdateMetadataRequest
	GetMetadata            *GetMetadataRequest
}

func (r *AdminRequest) Marshal() ([]byte, error) {
	var b []byte
	b = appendInt32Field(b, 1, int32(r.Type))
	var err error
	switch r.Type {
	case UpdatePartitionEntries:
		b, err = appendMessageField(b, 2, r.UpdatePartitionEntries)
	case FetchPartitionEntries:
		b, err = appendMessageField(b, 3, r.FetchPartitionEntries)
	case DeletePartitionEntries:
		b, err = appendMessageField(b, 4, r.DeletePartitionEntries)
	case InitiateFetchAndUpdate:
		b, err = appendMessageField(b, 5, r.InitiateFetchAndUpdate)
	case AsyncOperationStatus:
		b, err = appendMessageField(b, 6, r.AsyncOperationStatus)
	case UpdateMetadata:
		b, err = appendMessageField(b, 7, r.UpdateMetadata)
	case GetMetadata:
		b, err = appendMessageField(b, 8, r.GetMetadata)
	default:
		return nil, fmt.Errorf("adminpb: unknown request type %d", r.Type)
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

// UnmarshalAdminRequest parses an envelope off the wire. Only the sub-
// request matching the envelope's Type is populated; it is used by test
// fakes that play the server side of the admin protocol.
func UnmarshalAdminRequest(data []byte) (*AdminRequest, error) {
	r := &AdminRequest{}
	for len(data) > 0 {
		num, typ, n, err := consumeTag(data)
		if err != nil {
			return nil, err
		}
		data = data[n:]
		switch {
		case num == 1:
			v, n, err := consumeVarint(data)
			if err != nil {
				return nil, err
			}
			r.Type = RequestType(int32(uint32(v)))
			data = data[n:]
		case num == 2 && typ == protowire.BytesType:
			sub, n, err := consumeBytes(data)
			if err != nil {
				return nil, err
			}
			v, err := UnmarshalUpdatePartitionEntriesRequest(sub)
			if err != nil {
				return nil, err
			}
			r.UpdatePartitionEntries = v
			data = data[n:]
		case num == 3 && typ == protowire.BytesType:
			sub, n, err := consumeBytes(data)
			if err != nil {
				return nil, err
			}
			v, err := UnmarshalFetchPartitionEntriesRequest(sub)
			if err != nil {
				return nil, err
			}
			r.FetchPartitionEntries = v
			data = data[n:]
		case num == 4 && typ == protowire.BytesType:
			sub, n, err := consumeBytes(data)
			if err != nil {
				return nil, err
			}
			v, err := unmarshalDeletePartitionEntriesRequest(sub)
			if err != nil {
				return nil, err
			}
			r.DeletePartitionEntries = v
			data = data[n:]
		case num == 5 && typ == protowire.BytesType:
			sub, n, err := consumeBytes(data)
			if err != nil {
				return nil, err
			}
			v, err := unmarshalInitiateFetchAndUpdateRequest(sub)
			if err != nil {
				return nil, err
			}
			r.InitiateFetchAndUpdate = v
			data = data[n:]
		case num == 6 && typ == protowire.BytesType:
			sub, n, err := consumeBytes(data)
			if err != nil {
				return nil, err
			}
			v, err := unmarshalAsyncOperationStatusRequest(sub)
			if err != nil {
				return nil, err
			}
			r.AsyncOperationStatus = v
			data = data[n:]
		case num == 7 && typ == protowire.BytesType:
			sub, n, err := consumeBytes(data)
			if err != nil {
				return nil, err
			}
			v, err := unmarshalUpdateMetadataRequest(sub)
			if err != nil {
				return nil, err
			}
			r.UpdateMetadata = v
			data = data[n:]
		case num == 8 && typ == protowire.BytesType:
			sub, n, err := consumeBytes(data)
			if err != nil {
				return nil, err
			}
			v, err := unmarshalGetMetadataRequest(sub)
			if err != nil {
				return nil, err
			}
			r.GetMetadata = v
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
