package metadata

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
)

// RecordVersion is the metadata record version.
const RecordVersion = uint32(2)

// Record is the provenance metadata embedded in every chunk. All chunks of a
// group carry the same file-level fields; only the chunk_* fields differ.
// The record is serialized as JSON so unknown fields from newer writers are
// tolerated.
type Record struct {
	Version       uint32 `json:"version"`
	GroupID       string `json:"group_id"`
	Filename      string `json:"filename"`
	FileSize      uint64 `json:"file_size"`
	MD5           string `json:"md5"`
	Modified      int64  `json:"modified"`
	Permissions   uint32 `json:"permissions"`
	TotalChunks   uint32 `json:"total_chunks"`
	ChunkIndex    uint32 `json:"chunk_index"`
	ChunkOffset   uint64 `json:"chunk_offset"`
	ChunkDataSize uint64 `json:"chunk_data_size"`
}

// Frame serializes the record and prefixes it with its 4-byte little-endian
// length. The frame concatenated with the chunk's file-data bytes is exactly
// what gets encrypted.
func (r Record) Frame() ([]byte, error) {
	body, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("serializing metadata: %w", err)
	}

	frame := make([]byte, lengthPrefixSize, lengthPrefixSize+len(body))
	binary.LittleEndian.PutUint32(frame, uint32(len(body)))

	return append(frame, body...), nil
}
