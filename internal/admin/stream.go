package admin

import (
	"context"
	"iter"
	"time"

	"github.com/devrev/pairdb/admin-client/internal/adminerrors"
	"github.com/devrev/pairdb/admin-client/internal/adminpb"
	"github.com/devrev/pairdb/admin-client/internal/filter"
	"github.com/devrev/pairdb/admin-client/internal/transport"
	"github.com/devrev/pairdb/admin-client/internal/vclock"
	"github.com/devrev/pairdb/admin-client/internal/wire"
)

func toPartitionEntryPB(e PartitionEntry) *adminpb.PartitionEntry {
	var entries []*adminpb.ClockEntry
	for _, id := range e.Versioned.Version.NodeIDs() {
		entries = append(entries, &adminpb.ClockEntry{NodeID: id, Count: e.Versioned.Version.Count(id)})
	}
	return &adminpb.PartitionEntry{
		Key: e.Key,
		Versioned: &adminpb.VersionedBytes{
			Value: e.Versioned.Value,
			Version: &adminpb.VectorClock{
				Entries:   entries,
				Timestamp: e.Versioned.Version.Timestamp(),
			},
		},
	}
}

func fromVersionedBytesPB(v *adminpb.VersionedBytes) Versioned[[]byte] {
	counters := make(map[int32]int64)
	var timestamp int64
	if v.Version != nil {
		timestamp = v.Version.Timestamp
		for _, entry := range v.Version.Entries {
			counters[entry.NodeID] = entry.Count
		}
	}
	return Versioned[[]byte]{
		Value:   v.Value,
		Version: vclock.New(counters, timestamp),
	}
}

func fromPartitionEntryPB(p *adminpb.PartitionEntry) PartitionEntry {
	return PartitionEntry{
		Key:       p.Key,
		Versioned: fromVersionedBytesPB(p.Versioned),
	}
}

// UpdateEntries streams entries to nodeID's copy of store, sending the
// filter, if any, exactly once in the first on-wire message. entries is a
// lazy, finite sequence; UpdateEntries stops iterating it as soon as a
// transport or encoding error occurs.
func (c *Client) UpdateEntries(ctx context.Context, nodeID int32, store string, entries iter.Seq[PartitionEntry], spec *filter.Spec) error {
	conn, err := c.checkout(ctx, nodeID)
	if err != nil {
		return err
	}

	first := true
	var streamErr error
	sent := 0

	entries(func(entry PartitionEntry) bool {
		req := &adminpb.UpdatePartitionEntriesRequest{
			PartitionEntry: toPartitionEntryPB(entry),
		}

		var payload []byte
		var err error
		if first {
			req.Store = store
			req.Filter = toFilterSpec(spec)
			payload, err = (&adminpb.AdminRequest{
				Type:                   adminpb.UpdatePartitionEntries,
				UpdatePartitionEntries: req,
			}).Marshal()
		} else {
			payload, err = req.Marshal()
		}
		if err != nil {
			streamErr = adminerrors.Encoding(err)
			return false
		}
		if err := wire.WriteMessage(conn.Writer, payload); err != nil {
			streamErr = adminerrors.Transport(err)
			return false
		}
		if first {
			if err := conn.Writer.Flush(); err != nil {
				streamErr = adminerrors.Transport(err)
				return false
			}
			first = false
		}
		sent++
		return true
	})

	if streamErr != nil {
		c.discard(conn)
		return streamErr
	}

	if err := wire.WriteMessageEnd(conn.Writer); err != nil {
		c.discard(conn)
		return adminerrors.Transport(err)
	}
	if err := conn.Writer.Flush(); err != nil {
		c.discard(conn)
		return adminerrors.Transport(err)
	}

	data, eof, err := wire.ReadMessage(conn.Reader)
	if err != nil {
		c.discard(conn)
		return adminerrors.Transport(err)
	}
	if eof {
		c.pool.Checkin(conn)
		return adminerrors.New(adminerrors.CodeProtocol, "admin client: unexpected end-of-stream reading upload response")
	}

	resp, err := adminpb.UnmarshalUpdatePartitionEntriesResponse(data)
	if err != nil {
		c.discard(conn)
		return adminerrors.Encoding(err)
	}
	c.pool.Checkin(conn)
	if resp.HasError() {
		return c.mapProtocolError(resp.Error.ErrorCode, resp.Error.ErrorMessage)
	}
	if c.metrics != nil {
		c.metrics.RecordEntriesSent(sent)
	}
	return nil
}

// EntryStream is a single-shot, not-restartable lazy sequence of
// PartitionEntry backed by one pooled connection. Callers must either
// drain it to completion or call Close to return the connection.
type EntryStream struct {
	client *Client
	conn   *transport.Conn
	done   bool
}

// FetchEntries opens a download stream of full key/value entries from
// nodeID's copy of store.
func (c *Client) FetchEntries(ctx context.Context, nodeID int32, store string, partitions []int32, spec *filter.Spec) (*EntryStream, error) {
	conn, err := c.openDownload(ctx, nodeID, store, partitions, spec, true)
	if err != nil {
		return nil, err
	}
	return &EntryStream{client: c, conn: conn}, nil
}

func (c *Client) openDownload(ctx context.Context, nodeID int32, store string, partitions []int32, spec *filter.Spec, fetchValues bool) (*transport.Conn, error) {
	conn, err := c.checkout(ctx, nodeID)
	if err != nil {
		return nil, err
	}

	req := &adminpb.AdminRequest{
		Type: adminpb.FetchPartitionEntries,
		FetchPartitionEntries: &adminpb.FetchPartitionEntriesRequest{
			Partitions:  partitions,
			Store:       store,
			Filter:      toFilterSpec(spec),
			FetchValues: fetchValues,
		},
	}

	payload, err := req.Marshal()
	if err != nil {
		c.discard(conn)
		return nil, adminerrors.Encoding(err)
	}
	if err := wire.WriteMessage(conn.Writer, payload); err != nil {
		c.discard(conn)
		return nil, adminerrors.Transport(err)
	}
	if err := conn.Writer.Flush(); err != nil {
		c.discard(conn)
		return nil, adminerrors.Transport(err)
	}
	return conn, nil
}

// Next reads one record. It returns (_, false, nil) once the stream is
// exhausted, after which the pooled connection has already been
// returned. A non-nil error also returns the connection.
func (s *EntryStream) Next(ctx context.Context) (PartitionEntry, bool, error) {
	if s.done {
		return PartitionEntry{}, false, nil
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = s.conn.SetReadDeadline(deadline)
	} else if s.client.cfg.Pool.SocketTimeout > 0 {
		_ = s.conn.SetReadDeadline(time.Now().Add(s.client.cfg.Pool.SocketTimeout))
	}

	data, eof, err := wire.ReadRecord(s.conn.Reader)
	if err != nil {
		s.done = true
		s.client.discard(s.conn)
		return PartitionEntry{}, false, adminerrors.Transport(err)
	}
	if eof {
		s.done = true
		s.client.pool.Checkin(s.conn)
		return PartitionEntry{}, false, nil
	}

	resp, err := adminpb.UnmarshalFetchPartitionEntriesResponse(data)
	if err != nil {
		s.done = true
		s.client.discard(s.conn)
		return PartitionEntry{}, false, adminerrors.Encoding(err)
	}
	if resp.HasError() {
		s.done = true
		s.client.pool.Checkin(s.conn)
		return PartitionEntry{}, false, s.client.mapProtocolError(resp.Error.ErrorCode, resp.Error.ErrorMessage)
	}

	if s.client.metrics != nil {
		s.client.metrics.RecordEntriesReceived(1)
	}
	return fromPartitionEntryPB(resp.PartitionEntry), true, nil
}

// Close abandons the stream, returning its connection to the pool if it
// has not already been returned by a prior Next call reaching EOS or an
// error.
func (s *EntryStream) Close() error {
	if s.done {
		return nil
	}
	s.done = true
	s.client.discard(s.conn)
	return nil
}

// All adapts the stream into a range-over-func sequence of (entry, error)
// pairs, closing the stream if the caller stops iterating early.
func (s *EntryStream) All(ctx context.Context) iter.Seq2[PartitionEntry, error] {
	return func(yield func(PartitionEntry, error) bool) {
		for {
			entry, ok, err := s.Next(ctx)
			if err != nil {
				yield(PartitionEntry{}, err)
				return
			}
			if !ok {
				return
			}
			if !yield(entry, nil) {
				s.Close()
				return
			}
		}
	}
}

// KeyStream is FetchKeys' key-only counterpart to EntryStream.
type KeyStream struct {
	client *Client
	conn   *transport.Conn
	done   bool
}

// FetchKeys opens a download stream of keys only, skipping value/version
// transport on the wire (FetchValues=false).
func (c *Client) FetchKeys(ctx context.Context, nodeID int32, store string, partitions []int32, spec *filter.Spec) (*KeyStream, error) {
	conn, err := c.openDownload(ctx, nodeID, store, partitions, spec, false)
	if err != nil {
		return nil, err
	}
	return &KeyStream{client: c, conn: conn}, nil
}

// Next reads one key. It returns (_, false, nil) once the stream is
// exhausted, after which the pooled connection has already been
// returned.
func (s *KeyStream) Next(ctx context.Context) ([]byte, bool, error) {
	if s.done {
		return nil, false, nil
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = s.conn.SetReadDeadline(deadline)
	} else if s.client.cfg.Pool.SocketTimeout > 0 {
		_ = s.conn.SetReadDeadline(time.Now().Add(s.client.cfg.Pool.SocketTimeout))
	}

	data, eof, err := wire.ReadRecord(s.conn.Reader)
	if err != nil {
		s.done = true
		s.client.discard(s.conn)
		return nil, false, adminerrors.Transport(err)
	}
	if eof {
		s.done = true
		s.client.pool.Checkin(s.conn)
		return nil, false, nil
	}

	resp, err := adminpb.UnmarshalFetchPartitionEntriesResponse(data)
	if err != nil {
		s.done = true
		s.client.discard(s.conn)
		return nil, false, adminerrors.Encoding(err)
	}
	if resp.HasError() {
		s.done = true
		s.client.pool.Checkin(s.conn)
		return nil, false, s.client.mapProtocolError(resp.Error.ErrorCode, resp.Error.ErrorMessage)
	}

	if s.client.metrics != nil {
		s.client.metrics.RecordEntriesReceived(1)
	}
	return resp.Key, true, nil
}

// Close abandons the stream, returning its connection to the pool if not
// already returned.
func (s *KeyStream) Close() error {
	if s.done {
		return nil
	}
	s.done = true
	s.client.discard(s.conn)
	return nil
}

// All adapts the stream into a range-over-func sequence of (key, error)
// pairs, closing the stream if the caller stops iterating early.
func (s *KeyStream) All(ctx context.Context) iter.Seq2[[]byte, error] {
	return func(yield func([]byte, error) bool) {
		for {
			key, ok, err := s.Next(ctx)
			if err != nil {
				yield(nil, err)
				return
			}
			if !ok {
				return
			}
			if !yield(key, nil) {
				s.Close()
				return
			}
		}
	}
}
