package metadata

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecord() Record {
	return Record{
		Version:       RecordVersion,
		GroupID:       "0123456789abcdef",
		Filename:      "report.pdf",
		FileSize:      25,
		MD5:           "0123456789abcdef0123456789abcdef",
		Modified:      1700000000,
		Permissions:   0o644,
		TotalChunks:   3,
		ChunkIndex:    1,
		ChunkOffset:   10,
		ChunkDataSize: 10,
	}
}

func TestFrameRoundTrip(t *testing.T) {
	record := sampleRecord()

	frame, err := record.Frame()
	require.NoError(t, err)

	declared := binary.LittleEndian.Uint32(frame[:4])
	assert.Equal(t, int(declared), len(frame)-4)

	var sink bytes.Buffer

	framer := NewFramer(&sink)

	payload := []byte("file data after the record")
	_, err = framer.Write(append(frame, payload...))
	require.NoError(t, err)

	parsed, err := framer.Record()
	require.NoError(t, err)
	assert.Equal(t, record, parsed)
	assert.Equal(t, payload, sink.Bytes())
}

func TestFramerOneByteAtATime(t *testing.T) {
	record := sampleRecord()

	frame, err := record.Frame()
	require.NoError(t, err)

	var sink bytes.Buffer

	framer := NewFramer(&sink)

	payload := []byte{0xde, 0xad, 0xbe, 0xef}

	for _, b := range append(frame, payload...) {
		_, err := framer.Write([]byte{b})
		require.NoError(t, err)
	}

	parsed, err := framer.Record()
	require.NoError(t, err)
	assert.Equal(t, record, parsed)
	assert.Equal(t, payload, sink.Bytes())
}

func TestFramerIncomplete(t *testing.T) {
	frame, err := sampleRecord().Frame()
	require.NoError(t, err)

	framer := NewFramer(&bytes.Buffer{})

	// Nothing consumed yet.
	_, err = framer.Record()
	require.ErrorIs(t, err, ErrIncompleteMetadata)

	// Length prefix only.
	_, err = framer.Write(frame[:3])
	require.NoError(t, err)

	_, err = framer.Record()
	require.ErrorIs(t, err, ErrIncompleteMetadata)

	// Record body short by one byte.
	_, err = framer.Write(frame[3 : len(frame)-1])
	require.NoError(t, err)

	_, err = framer.Record()
	require.ErrorIs(t, err, ErrIncompleteMetadata)

	// Final byte completes the record.
	_, err = framer.Write(frame[len(frame)-1:])
	require.NoError(t, err)

	_, err = framer.Record()
	require.NoError(t, err)
}

func TestFramerAbsurdLength(t *testing.T) {
	framer := NewFramer(&bytes.Buffer{})

	prefix := make([]byte, 4)
	binary.LittleEndian.PutUint32(prefix, maxRecordSize+1)

	_, err := framer.Write(prefix)
	require.ErrorIs(t, err, ErrMalformed)
}

func TestFramerMalformedBody(t *testing.T) {
	body := []byte("not json at all")

	frame := make([]byte, 4, 4+len(body))
	binary.LittleEndian.PutUint32(frame, uint32(len(body)))
	frame = append(frame, body...)

	framer := NewFramer(&bytes.Buffer{})

	_, err := framer.Write(frame)
	require.NoError(t, err)

	_, err = framer.Record()
	require.ErrorIs(t, err, ErrMalformed)
}

func TestRecordToleratesUnknownFields(t *testing.T) {
	body := []byte(`{"version":2,"group_id":"00112233aabbccdd","filename":"a.txt",` +
		`"file_size":1,"md5":"","modified":0,"permissions":420,"total_chunks":1,` +
		`"chunk_index":0,"chunk_offset":0,"chunk_data_size":1,"future_field":"x"}`)

	frame := make([]byte, 4, 4+len(body))
	binary.LittleEndian.PutUint32(frame, uint32(len(body)))
	frame = append(frame, body...)

	framer := NewFramer(&bytes.Buffer{})

	_, err := framer.Write(frame)
	require.NoError(t, err)

	record, err := framer.Record()
	require.NoError(t, err)
	assert.Equal(t, "a.txt", record.Filename)
	assert.Equal(t, uint32(1), record.TotalChunks)
}
