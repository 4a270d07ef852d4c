// Package logic implements the directory-level drivers for pack and unpack.
// Units (files for pack, groups for unpack) are processed strictly one after
// another; the first failing unit aborts the run, already committed units are
// never undone.
package logic

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/idelchi/cokacenc/internal/config"
	"github.com/idelchi/cokacenc/internal/filter"
	"github.com/idelchi/cokacenc/internal/keyfile"
	"github.com/idelchi/cokacenc/internal/naming"
	"github.com/idelchi/cokacenc/internal/pack"
	"github.com/idelchi/cokacenc/internal/unpack"
)

// RunPack encrypts every eligible file in the configured directory.
func RunPack(cfg *config.Config) error {
	password, err := keyfile.Load(cfg.KeyFile)
	if err != nil {
		return err
	}

	files, scanned, err := packCandidates(cfg)
	if err != nil {
		return err
	}

	if len(files) == 0 {
		if !cfg.Quiet {
			fmt.Printf("No files to pack in %q\n", cfg.Dir) //nolint:forbidigo
		}

		return nil
	}

	packer := &pack.Packer{
		Dir:        cfg.Dir,
		Password:   password,
		SplitSize:  cfg.SplitSize(),
		ComputeMD5: cfg.MD5,
	}

	start := time.Now()

	var (
		processed int
		totalSize uint64
	)

	for _, name := range files {
		path := filepath.Join(cfg.Dir, name)

		if !cfg.Quiet {
			fmt.Printf("Packing %q\n", name) //nolint:forbidigo
		}

		result, err := packer.PackFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error packing %q: %v\n", name, err)

			return fmt.Errorf("packing %q: %w", name, err)
		}

		if cfg.Delete {
			if err := os.Remove(path); err != nil {
				return fmt.Errorf("deleting %q: %w", name, err)
			}
		}

		processed++
		totalSize += result.Size

		if !cfg.Quiet {
			fmt.Printf("  → group %s, %d chunk(s), %s\n", //nolint:forbidigo
				result.GroupID, result.Chunks, humanize.IBytes(result.Size))
		}
	}

	if cfg.Stats {
		printStats(scanned, scanned-len(files), processed, totalSize, time.Since(start))
	}

	return nil
}

// RunUnpack decrypts and merges every chunk group in the configured directory.
func RunUnpack(cfg *config.Config) error {
	password, err := keyfile.Load(cfg.KeyFile)
	if err != nil {
		return err
	}

	groups, err := naming.GroupChunkFiles(cfg.Dir)
	if err != nil {
		return err
	}

	if len(groups) == 0 {
		if !cfg.Quiet {
			fmt.Printf("No %s files found in %q\n", naming.Ext, cfg.Dir) //nolint:forbidigo
		}

		return nil
	}

	// Deterministic group order.
	ids := make([]string, 0, len(groups))
	for id := range groups {
		ids = append(ids, id)
	}

	sort.Strings(ids)

	unpacker := &unpack.Unpacker{
		Dir:      cfg.Dir,
		Password: password,
		Force:    cfg.Force,
	}

	start := time.Now()

	var (
		processed int
		totalSize uint64
	)

	for _, groupID := range ids {
		files := groups[groupID]

		if !cfg.Quiet {
			fmt.Printf("Unpacking group %s (%d chunk(s))\n", groupID, len(files)) //nolint:forbidigo
		}

		result, err := unpacker.UnpackGroup(groupID, files)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error unpacking group %s: %v\n", groupID, err)

			return fmt.Errorf("unpacking group %s: %w", groupID, err)
		}

		if result.Warning != nil {
			fmt.Fprintf(os.Stderr, "Warning for %q: %v\n", result.Filename, result.Warning)
		}

		if cfg.Delete {
			for _, file := range files {
				if err := os.Remove(file.Path); err != nil {
					return fmt.Errorf("deleting %q: %w", file.Path, err)
				}
			}
		}

		processed++
		totalSize += result.Size

		if !cfg.Quiet {
			status := "not verified"
			if result.Verified {
				status = "MD5 verified"
			}

			fmt.Printf("  → %q, %s (%s)\n", result.Filename, humanize.IBytes(result.Size), status) //nolint:forbidigo
		}
	}

	if cfg.Stats {
		printStats(len(ids), 0, processed, totalSize, time.Since(start))
	}

	return nil
}

// packCandidates lists regular, non-hidden, non-chunk files in the target
// directory, applies the include/exclude filters, and sorts by name for
// deterministic processing order.
func packCandidates(cfg *config.Config) (files []string, scanned int, err error) {
	excludes := append([]string{}, cfg.Exclude...)

	if cfg.ExcludeFrom != "" {
		patterns, err := filter.LoadPatterns(cfg.ExcludeFrom)
		if err != nil {
			return nil, 0, fmt.Errorf("loading exclude patterns: %w", err)
		}

		excludes = append(excludes, patterns...)
	}

	flt, err := filter.New(cfg.Include, excludes)
	if err != nil {
		return nil, 0, err
	}

	entries, err := os.ReadDir(cfg.Dir)
	if err != nil {
		return nil, 0, fmt.Errorf("reading directory %q: %w", cfg.Dir, err)
	}

	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}

		name := entry.Name()
		if strings.HasPrefix(name, ".") || strings.HasSuffix(name, naming.Ext) {
			continue
		}

		scanned++

		if !flt.Match(name) {
			continue
		}

		files = append(files, name)
	}

	sort.Strings(files)

	return files, scanned, nil
}

func printStats(scanned, excluded, processed int, totalSize uint64, duration time.Duration) {
	fmt.Fprintf(os.Stderr, "\nStats\n")
	fmt.Fprintf(os.Stderr, "  Scanned:   %d\n", scanned)
	fmt.Fprintf(os.Stderr, "  Excluded:  %d\n", excluded)
	fmt.Fprintf(os.Stderr, "  Processed: %d\n", processed)
	fmt.Fprintf(os.Stderr, "  Size:      %s\n", humanize.IBytes(totalSize))
	fmt.Fprintf(os.Stderr, "  Duration:  %s\n", duration.Round(time.Millisecond))
}
