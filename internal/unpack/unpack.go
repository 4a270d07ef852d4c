// Package unpack implements the per-group decode pipeline: decrypt a group's
// chunks in sequence order, demultiplex the embedded metadata, merge the file
// data into a temp file, verify the declared hash and size, and commit the
// result under the original filename.
package unpack

import (
	"bufio"
	"crypto/md5" //nolint:gosec // content hash for integrity, not authentication
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/idelchi/cokacenc/internal/chunk"
	"github.com/idelchi/cokacenc/internal/fileutil"
	"github.com/idelchi/cokacenc/internal/metadata"
	"github.com/idelchi/cokacenc/internal/naming"
)

const copyBufferSize = 64 * 1024

// Unpacker decrypts and merges chunk groups found in Dir.
type Unpacker struct {
	// Dir is the directory holding the chunk files and receiving the output.
	Dir string

	// Password is the trimmed key file content.
	Password []byte

	// Force allows overwriting an existing output file.
	Force bool
}

// Result describes one committed unpack unit.
type Result struct {
	// Filename is the restored original filename.
	Filename string

	// Size is the merged file size in bytes.
	Size uint64

	// Verified reports whether a declared content hash was checked.
	Verified bool

	// Warning carries a non-fatal post-commit failure, such as not being
	// able to restore permissions.
	Warning error
}

// UnpackGroup decrypts one group into its original file. Any failure removes
// the temp merge file and leaves the chunk files untouched. Deleting the
// chunks after success is the caller's decision.
func (u *Unpacker) UnpackGroup(groupID string, files []naming.ChunkFile) (result *Result, err error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: group %s has no chunks", ErrMissingChunk, groupID)
	}

	// Sequence indices must form the exact contiguous range [0, len).
	for ordinal, file := range files {
		if file.Seq != ordinal {
			label, labelErr := naming.SeqLabel(ordinal)
			if labelErr != nil {
				return nil, labelErr
			}

			return nil, fmt.Errorf("%w: expected %s_%s%s", ErrMissingChunk, groupID, label, naming.Ext)
		}
	}

	tempPath := filepath.Join(u.Dir, "."+groupID+".unpacking")

	const ownerReadWrite = 0o600

	temp, err := os.OpenFile(tempPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, ownerReadWrite) //nolint:gosec // path is derived, not user input
	if err != nil {
		return nil, fmt.Errorf("creating temp file: %w", err)
	}
	defer temp.Close()

	var rollback fileutil.Rollback

	rollback.Add(tempPath)
	defer rollback.CleanupOnError(&err)

	writer := bufio.NewWriterSize(temp, copyBufferSize)
	hasher := md5.New() //nolint:gosec // content hash for integrity, not authentication
	sink := io.MultiWriter(writer, hasher)

	var first metadata.Record

	for ordinal, file := range files {
		record, err := u.decryptChunk(file.Path, sink)
		if err != nil {
			return nil, fmt.Errorf("chunk %q: %w", filepath.Base(file.Path), err)
		}

		if ordinal == 0 {
			first = record
		}

		if err := validateRecord(record, first, ordinal, groupID, len(files)); err != nil {
			return nil, fmt.Errorf("chunk %q: %w", filepath.Base(file.Path), err)
		}
	}

	if err := writer.Flush(); err != nil {
		return nil, fmt.Errorf("flushing temp file: %w", err)
	}

	if err := temp.Close(); err != nil {
		return nil, fmt.Errorf("closing temp file: %w", err)
	}

	verified := false

	if first.MD5 != "" {
		actual := hex.EncodeToString(hasher.Sum(nil))
		if actual != first.MD5 {
			return nil, fmt.Errorf("%w: MD5 mismatch: declared %s, computed %s", ErrIntegrity, first.MD5, actual)
		}

		verified = true
	}

	merged, err := os.Stat(tempPath)
	if err != nil {
		return nil, fmt.Errorf("stat temp file: %w", err)
	}

	if uint64(merged.Size()) != first.FileSize { //nolint:gosec // regular file sizes are non-negative
		return nil, fmt.Errorf("%w: size mismatch: declared %d, merged %d", ErrIntegrity, first.FileSize, merged.Size())
	}

	outPath, err := u.commitPath(first.Filename)
	if err != nil {
		return nil, err
	}

	if err := os.Rename(tempPath, outPath); err != nil {
		return nil, fmt.Errorf("renaming output file: %w", err)
	}

	// The unit is committed; the temp path must not be cleaned up anymore.
	rollback.Forget(tempPath)

	result = &Result{Filename: first.Filename, Size: first.FileSize, Verified: verified}

	// Best-effort attribute restore; the unit is already committed.
	perm := os.FileMode(first.Permissions) & os.ModePerm
	if attrErr := fileutil.RestoreAttrs(outPath, perm, time.Unix(first.Modified, 0)); attrErr != nil {
		result.Warning = attrErr
	}

	return result, nil
}

// commitPath validates the declared filename and refuses to clobber an
// existing file unless forced.
func (u *Unpacker) commitPath(filename string) (string, error) {
	if filename == "" || filename != filepath.Base(filename) {
		return "", fmt.Errorf("%w: unsafe filename %q", ErrMetadataMismatch, filename)
	}

	outPath := filepath.Join(u.Dir, filename)

	if !u.Force {
		if _, err := os.Lstat(outPath); err == nil {
			return "", fmt.Errorf("%w: %q", ErrOutputExists, outPath)
		}
	}

	return outPath, nil
}

// deferredSink forwards writes to an inner writer but records the first
// failure instead of propagating it, accepting and discarding everything
// after. A wrong key produces garbage plaintext that trips the framer long
// before the final block; deferring the framer's verdict lets decryption run
// to completion so padding validation decides whether the key was wrong.
type deferredSink struct {
	inner io.Writer
	err   error
}

func (s *deferredSink) Write(p []byte) (int, error) {
	if s.err != nil {
		return len(p), nil
	}

	if _, err := s.inner.Write(p); err != nil {
		s.err = err
	}

	return len(p), nil
}

// decryptChunk streams one chunk file through the decryptor and metadata
// framer, forwarding the file-data phase to sink, and returns the chunk's
// embedded record.
func (u *Unpacker) decryptChunk(path string, sink io.Writer) (metadata.Record, error) {
	var record metadata.Record

	file, err := os.Open(filepath.Clean(path))
	if err != nil {
		return record, fmt.Errorf("opening chunk: %w", err)
	}
	defer file.Close()

	reader := bufio.NewReaderSize(file, copyBufferSize)

	header, err := chunk.ReadHeader(reader)
	if err != nil {
		return record, err
	}

	framer := metadata.NewFramer(sink)
	deferred := &deferredSink{inner: framer}

	decryptor, err := chunk.NewDecryptor(chunk.DeriveKey(u.Password, header.Salt[:]), header.IV[:], deferred)
	if err != nil {
		return record, err
	}

	if _, err := io.Copy(decryptor, reader); err != nil {
		return record, fmt.Errorf("decrypting: %w", err)
	}

	// Padding validation rules first: an invalid final block means a wrong
	// key or corrupt ciphertext no matter what the plaintext looked like to
	// the framer.
	if err := decryptor.Close(); err != nil {
		return record, err
	}

	if deferred.err != nil {
		if errors.Is(deferred.err, metadata.ErrMalformed) {
			return record, fmt.Errorf("%w: %w", ErrMetadataMismatch, deferred.err)
		}

		return record, deferred.err
	}

	record, err = framer.Record()
	if err != nil {
		return record, fmt.Errorf("%w: %w", ErrMetadataMismatch, err)
	}

	return record, nil
}

// validateRecord enforces the cross-chunk invariants: the index matches the
// ordinal, the group id matches the filename-derived one, and every
// file-level field agrees with chunk 0.
func validateRecord(record, first metadata.Record, ordinal int, groupID string, count int) error {
	if record.ChunkIndex != uint32(ordinal) { //nolint:gosec // ordinal is bounded by MaxSeqIndex
		return fmt.Errorf("%w: chunk_index %d, expected %d", ErrMetadataMismatch, record.ChunkIndex, ordinal)
	}

	if record.GroupID != groupID {
		return fmt.Errorf("%w: group_id %q does not match filename group %q", ErrMetadataMismatch, record.GroupID, groupID)
	}

	if int(record.TotalChunks) != count {
		return fmt.Errorf("%w: total_chunks %d, group has %d", ErrMetadataMismatch, record.TotalChunks, count)
	}

	if record.Filename != first.Filename ||
		record.FileSize != first.FileSize ||
		record.MD5 != first.MD5 ||
		record.Modified != first.Modified ||
		record.Permissions != first.Permissions {
		return fmt.Errorf("%w: file metadata differs from chunk 0", ErrMetadataMismatch)
	}

	return nil
}
