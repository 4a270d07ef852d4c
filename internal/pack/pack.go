// Package pack implements the two-pass per-file encode pipeline: gather file
// info (optionally hashing the content), then split the file into
// independently encrypted chunks that each embed the full metadata record.
package pack

import (
	"bufio"
	"crypto/md5" //nolint:gosec // content hash for integrity, not authentication
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/idelchi/cokacenc/internal/chunk"
	"github.com/idelchi/cokacenc/internal/fileutil"
	"github.com/idelchi/cokacenc/internal/metadata"
	"github.com/idelchi/cokacenc/internal/naming"
)

const copyBufferSize = 64 * 1024

// Packer encrypts single files into chunk groups inside Dir.
type Packer struct {
	// Dir is the directory receiving the chunk files.
	Dir string

	// Password is the trimmed key file content.
	Password []byte

	// SplitSize is the maximum plaintext bytes per chunk; 0 disables
	// splitting.
	SplitSize uint64

	// ComputeMD5 enables the first-pass content hash.
	ComputeMD5 bool
}

// Result describes one committed pack unit.
type Result struct {
	GroupID string
	Chunks  int
	Size    uint64
}

// PackFile encrypts one file into a fresh chunk group. Any failure removes
// every chunk file created by this invocation and leaves the source
// untouched. Deleting the source after success is the caller's decision.
func (p *Packer) PackFile(path string) (result *Result, err error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %q: %w", path, err)
	}

	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%q is not a regular file", path)
	}

	size := uint64(info.Size()) //nolint:gosec // regular file sizes are non-negative

	var contentMD5 string

	if p.ComputeMD5 {
		contentMD5, err = hashFile(path)
		if err != nil {
			return nil, err
		}
	}

	total := uint64(1)
	if p.SplitSize > 0 && size > 0 {
		total = (size + p.SplitSize - 1) / p.SplitSize
	}

	if total > naming.MaxSeqIndex+1 {
		return nil, fmt.Errorf("%w: %q needs %d chunks", naming.ErrSeqOverflow, path, total)
	}

	groupID, err := naming.GenerateGroupID(p.Dir)
	if err != nil {
		return nil, err
	}

	src, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("opening %q: %w", path, err)
	}
	defer src.Close()

	reader := bufio.NewReaderSize(src, copyBufferSize)

	var rollback fileutil.Rollback
	defer rollback.CleanupOnError(&err)

	for index := uint64(0); index < total; index++ {
		offset := index * p.SplitSize

		dataSize := size - offset
		if p.SplitSize > 0 && dataSize > p.SplitSize {
			dataSize = p.SplitSize
		}

		record := metadata.Record{
			Version:       metadata.RecordVersion,
			GroupID:       groupID,
			Filename:      filepath.Base(path),
			FileSize:      size,
			MD5:           contentMD5,
			Modified:      info.ModTime().Unix(),
			Permissions:   uint32(info.Mode().Perm()),
			TotalChunks:   uint32(total), //nolint:gosec // bounded by MaxSeqIndex
			ChunkIndex:    uint32(index), //nolint:gosec // bounded by MaxSeqIndex
			ChunkOffset:   offset,
			ChunkDataSize: dataSize,
		}

		name, err := naming.ChunkFilename(groupID, int(index)) //nolint:gosec // bounded by MaxSeqIndex
		if err != nil {
			return nil, err
		}

		if err := p.writeChunk(reader, record, filepath.Join(p.Dir, name), &rollback); err != nil {
			return nil, fmt.Errorf("writing chunk %d of %q: %w", index, path, err)
		}
	}

	return &Result{GroupID: groupID, Chunks: int(total), Size: size}, nil
}

// writeChunk creates one chunk file: header, then the framed metadata record
// and the chunk's source byte range through the encryptor.
func (p *Packer) writeChunk(src io.Reader, record metadata.Record, outPath string, rollback *fileutil.Rollback) error {
	const ownerReadWrite = 0o600

	// O_EXCL backs the no-collision-at-creation guarantee.
	out, err := os.OpenFile(outPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, ownerReadWrite) //nolint:gosec // path is derived, not user input
	if err != nil {
		return fmt.Errorf("creating chunk file: %w", err)
	}
	defer out.Close()

	rollback.Add(outPath)

	writer := bufio.NewWriterSize(out, copyBufferSize)

	header := chunk.NewHeader()
	if err := chunk.WriteHeader(writer, header); err != nil {
		return err
	}

	encryptor, err := chunk.NewEncryptor(chunk.DeriveKey(p.Password, header.Salt[:]), header.IV[:])
	if err != nil {
		return err
	}

	frame, err := record.Frame()
	if err != nil {
		return err
	}

	if err := encryptTo(writer, encryptor, frame); err != nil {
		return err
	}

	buf := make([]byte, copyBufferSize)

	for remaining := record.ChunkDataSize; remaining > 0; {
		n := uint64(len(buf))
		if n > remaining {
			n = remaining
		}

		if _, err := io.ReadFull(src, buf[:n]); err != nil {
			return fmt.Errorf("reading source: %w", err)
		}

		if err := encryptTo(writer, encryptor, buf[:n]); err != nil {
			return err
		}

		remaining -= n
	}

	final, err := encryptor.Finalize()
	if err != nil {
		return err
	}

	if _, err := writer.Write(final); err != nil {
		return fmt.Errorf("writing final block: %w", err)
	}

	if err := writer.Flush(); err != nil {
		return fmt.Errorf("flushing chunk file: %w", err)
	}

	if err := out.Close(); err != nil {
		return fmt.Errorf("closing chunk file: %w", err)
	}

	return nil
}

// encryptTo runs one plaintext span through the encryptor and writes the
// resulting ciphertext.
func encryptTo(w io.Writer, encryptor *chunk.Encryptor, plaintext []byte) error {
	ciphertext, err := encryptor.Update(plaintext)
	if err != nil {
		return err
	}

	if len(ciphertext) == 0 {
		return nil
	}

	if _, err := w.Write(ciphertext); err != nil {
		return fmt.Errorf("writing ciphertext: %w", err)
	}

	return nil
}

// hashFile streams the whole file once, computing its MD5 hex digest.
func hashFile(path string) (string, error) {
	file, err := os.Open(filepath.Clean(path))
	if err != nil {
		return "", fmt.Errorf("opening %q: %w", path, err)
	}
	defer file.Close()

	hasher := md5.New() //nolint:gosec // content hash for integrity, not authentication

	if _, err := io.Copy(hasher, file); err != nil {
		return "", fmt.Errorf("hashing %q: %w", path, err)
	}

	return hex.EncodeToString(hasher.Sum(nil)), nil
}
