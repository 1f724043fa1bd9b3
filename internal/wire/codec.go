// Package wire implements the two framings the admin protocol mixes on a
// raw TCP connection. Every request envelope, every response, and every
// bare record sent during an upload stream is a protobuf-style
// varint-length-prefixed frame, matching the encoding of the payload it
// carries. A download stream runs the opposite direction: the admin node
// pushes a long, open-ended sequence of same-shaped records as fast as it
// can marshal them, and a fixed 4-byte big-endian int32 prefix lets the
// client distinguish the end-of-stream sentinel (-1) cheaply, without
// decoding a varint to find out it wasn't one.
//
// Both directions terminate a stream with a sentinel written in place of
// a length prefix, but the sentinel's shape follows its own framing: a
// reserved varint value ends a varint stream, and the int32 -1 ends a
// fixed-framed stream. The varint sentinel cannot be zero, because a
// message with every field at its zero value (an UpdatePartitionEntriesResponse
// carrying no error, in particular) legitimately marshals to zero bytes;
// instead it is a value far past maxMessageSize, which no real length
// prefix can reach.
package wire

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"

	"google.golang.org/protobuf/encoding/protowire"
)

// EndOfStream is the sentinel length value that terminates a fixed-framed
// download stream: instead of another int32 length prefix, the sender
// writes this value in place of one.
const EndOfStream int32 = -1

// maxMessageSize bounds how large a single length-prefixed payload this
// client will allocate for, guarding against a corrupted or hostile
// length prefix causing an unbounded allocation.
const maxMessageSize = 64 * 1024 * 1024

// varintEndOfStream is the reserved varint length value that terminates a
// varint-framed stream. It is comfortably larger than maxMessageSize, so
// it can never be produced by WriteMessage framing a real payload.
const varintEndOfStream = uint64(1) << 40

// WriteMessage writes data as one varint-length-prefixed frame: a request
// envelope, a response, or a bare record during an upload stream.
func WriteMessage(w *bufio.Writer, data []byte) error {
	if len(data) > maxMessageSize {
		return fmt.Errorf("wire: message of %d bytes exceeds max %d", len(data), maxMessageSize)
	}
	if _, err := w.Write(protowire.AppendVarint(nil, uint64(len(data)))); err != nil {
		return fmt.Errorf("wire: write varint length prefix: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("wire: write payload: %w", err)
	}
	return nil
}

// WriteMessageEnd writes the reserved varint frame that terminates a
// varint-framed stream, i.e. the upload side of UpdateEntries. It does
// not flush; the caller flushes once the stream is fully drained.
func WriteMessageEnd(w *bufio.Writer) error {
	if _, err := w.Write(protowire.AppendVarint(nil, varintEndOfStream)); err != nil {
		return fmt.Errorf("wire: write end-of-stream varint: %w", err)
	}
	return nil
}

// ReadMessage reads one varint-length-prefixed frame: a request envelope,
// a response, or a bare record during an upload stream. It returns (nil,
// true, nil) if the frame it read was the end-of-stream sentinel instead
// of a real payload.
func ReadMessage(r *bufio.Reader) (data []byte, eof bool, err error) {
	length, err := readVarint(r)
	if err != nil {
		return nil, false, err
	}
	if length == varintEndOfStream {
		return nil, true, nil
	}
	if length > uint64(maxMessageSize) {
		return nil, false, fmt.Errorf("wire: message of %d bytes exceeds max %d", length, maxMessageSize)
	}
	buf := make([]byte, length)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, false, fmt.Errorf("wire: read payload: %w", err)
	}
	return buf, false, nil
}

// readVarint decodes one protobuf-style varint length directly off r,
// one byte at a time, so it never reads past the end of the length
// prefix into the payload that follows.
func readVarint(r *bufio.Reader) (uint64, error) {
	var buf []byte
	for {
		b, err := r.ReadByte()
		if err != nil {
			return 0, fmt.Errorf("wire: read varint length prefix: %w", err)
		}
		buf = append(buf, b)
		if b&0x80 == 0 {
			break
		}
		if len(buf) > binary.MaxVarintLen64 {
			return 0, fmt.Errorf("wire: varint length prefix exceeds %d bytes", binary.MaxVarintLen64)
		}
	}
	value, n := protowire.ConsumeVarint(buf)
	if n < 0 {
		return 0, fmt.Errorf("wire: malformed varint length prefix")
	}
	if value > varintEndOfStream {
		return 0, fmt.Errorf("wire: varint length prefix %d exceeds max %d", value, maxMessageSize)
	}
	return value, nil
}

// WriteRecord writes data as one fixed 4-byte big-endian int32
// length-prefixed record, the framing a download stream uses for every
// record it pushes.
func WriteRecord(w *bufio.Writer, data []byte) error {
	if len(data) > maxMessageSize {
		return fmt.Errorf("wire: record of %d bytes exceeds max %d", len(data), maxMessageSize)
	}
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(data)))
	if _, err := w.Write(lenBuf[:]); err != nil {
		return fmt.Errorf("wire: write record length prefix: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("wire: write record payload: %w", err)
	}
	return nil
}

// ReadRecord reads one fixed 4-byte big-endian int32 length-prefixed
// record, the framing a download stream uses for every record it sends.
// It returns (nil, true, nil) if the frame it read was the end-of-stream
// sentinel instead of a real record.
func ReadRecord(r *bufio.Reader) (data []byte, eof bool, err error) {
	length, err := ReadInt32(r)
	if err != nil {
		return nil, false, err
	}
	if length == EndOfStream {
		return nil, true, nil
	}
	if length < 0 {
		return nil, false, fmt.Errorf("wire: negative record length %d", length)
	}
	if int(length) > maxMessageSize {
		return nil, false, fmt.Errorf("wire: record of %d bytes exceeds max %d", length, maxMessageSize)
	}
	buf := make([]byte, length)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, false, fmt.Errorf("wire: read record payload: %w", err)
	}
	return buf, false, nil
}

// WriteEndOfStream writes the four-byte int32 -1 sentinel that terminates
// a fixed-framed download stream, without flushing; the caller flushes
// once the stream is fully drained. Its counterpart reader is ReadRecord,
// not the varint-framed ReadMessage.
func WriteEndOfStream(w *bufio.Writer) error {
	var buf [4]byte
	sentinel := EndOfStream
	binary.BigEndian.PutUint32(buf[:], uint32(sentinel))
	if _, err := w.Write(buf[:]); err != nil {
		return fmt.Errorf("wire: write end-of-stream sentinel: %w", err)
	}
	return nil
}

// ReadInt32 reads one big-endian int32 directly off the stream, used for
// fixed-framed record length prefixes and for the end-of-stream sentinel
// that terminates a fixed-framed download stream.
func ReadInt32(r *bufio.Reader) (int32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, fmt.Errorf("wire: read int32: %w", err)
	}
	return int32(binary.BigEndian.Uint32(buf[:])), nil
}
