// Package naming implements the chunk file naming scheme: random group ids,
// four-letter base-26 sequence labels, the filename grammar, and directory
// grouping of chunk files.
package naming

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tink-crypto/tink-go/v2/subtle/random"
)

const (
	// Ext is the extension of every chunk file.
	Ext = ".cokacenc"

	// GroupIDLen is the length of a hex-encoded group id.
	GroupIDLen   = 16
	groupIDBytes = 8

	// SeqLen is the length of a sequence label.
	SeqLen = 4
	// MaxSeqIndex is the highest addressable sequence index ("zzzz").
	MaxSeqIndex = 26*26*26*26 - 1

	// maxGroupIDAttempts caps the collision-retry loop so a saturated
	// namespace fails distinctly instead of spinning forever.
	maxGroupIDAttempts = 64
)

var (
	// ErrSeqOverflow is returned when a sequence index exceeds the
	// addressable range.
	ErrSeqOverflow = errors.New("sequence index out of range")
	// ErrGroupIDSpace is returned when no unused group id could be generated.
	ErrGroupIDSpace = errors.New("could not generate a unique group id")
)

// SeqLabel converts an index to its four-letter label: 0 → "aaaa",
// MaxSeqIndex → "zzzz". Out-of-range indices fail, never truncate.
func SeqLabel(index int) (string, error) {
	if index < 0 || index > MaxSeqIndex {
		return "", fmt.Errorf("%w: %d", ErrSeqOverflow, index)
	}

	label := []byte{
		'a' + byte(index/(26*26*26)),
		'a' + byte(index/(26*26)%26),
		'a' + byte(index/26%26),
		'a' + byte(index%26),
	}

	return string(label), nil
}

// ParseSeqLabel converts a four-letter label back to its index.
func ParseSeqLabel(s string) (int, error) {
	if len(s) != SeqLen {
		return 0, fmt.Errorf("invalid sequence label %q", s)
	}

	index := 0

	for i := 0; i < SeqLen; i++ {
		c := s[i]
		if c < 'a' || c > 'z' {
			return 0, fmt.Errorf("invalid sequence label %q", s)
		}

		index = index*26 + int(c-'a')
	}

	return index, nil
}

// ChunkFilename composes the name of one chunk: `<group_id>_<seq><ext>`.
func ChunkFilename(groupID string, seq int) (string, error) {
	label, err := SeqLabel(seq)
	if err != nil {
		return "", err
	}

	return groupID + "_" + label + Ext, nil
}

// ChunkFile is one parsed chunk file entry.
type ChunkFile struct {
	GroupID string
	Seq     int
	Path    string
}

// ParseChunkFilename splits a chunk filename into its group id and sequence
// index. Names not matching the grammar report ok=false rather than erroring,
// so foreign files in the directory are simply skipped.
func ParseChunkFilename(name string) (groupID string, seq int, ok bool) {
	base, found := strings.CutSuffix(name, Ext)
	if !found {
		return "", 0, false
	}

	if len(base) != GroupIDLen+1+SeqLen || base[GroupIDLen] != '_' {
		return "", 0, false
	}

	groupID = base[:GroupIDLen]
	if !isLowerHex(groupID) {
		return "", 0, false
	}

	seq, err := ParseSeqLabel(base[GroupIDLen+1:])
	if err != nil {
		return "", 0, false
	}

	return groupID, seq, true
}

func isLowerHex(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}

	return true
}

// GenerateGroupID returns a random group id that does not collide with any
// chunk file already present in dir. The retry loop is bounded; exhaustion
// fails with ErrGroupIDSpace.
func GenerateGroupID(dir string) (string, error) {
	existing, err := existingGroupIDs(dir)
	if err != nil {
		return "", err
	}

	for attempt := 0; attempt < maxGroupIDAttempts; attempt++ {
		id := hex.EncodeToString(random.GetRandomBytes(groupIDBytes))
		if _, taken := existing[id]; !taken {
			return id, nil
		}
	}

	return "", ErrGroupIDSpace
}

// existingGroupIDs collects the group ids of every chunk file in dir.
func existingGroupIDs(dir string) (map[string]struct{}, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading directory %q: %w", dir, err)
	}

	ids := make(map[string]struct{})

	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}

		if groupID, _, ok := ParseChunkFilename(entry.Name()); ok {
			ids[groupID] = struct{}{}
		}
	}

	return ids, nil
}

// GroupChunkFiles scans dir (non-recursively) for chunk files and buckets
// them by group id, each bucket sorted by sequence index ascending.
func GroupChunkFiles(dir string) (map[string][]ChunkFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading directory %q: %w", dir, err)
	}

	groups := make(map[string][]ChunkFile)

	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}

		groupID, seq, ok := ParseChunkFilename(entry.Name())
		if !ok {
			continue
		}

		groups[groupID] = append(groups[groupID], ChunkFile{
			GroupID: groupID,
			Seq:     seq,
			Path:    filepath.Join(dir, entry.Name()),
		})
	}

	for _, files := range groups {
		sort.Slice(files, func(i, j int) bool { return files[i].Seq < files[j].Seq })
	}

	return groups, nil
}
