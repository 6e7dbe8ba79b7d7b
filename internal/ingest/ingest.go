package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/procurement-tracker/constants"
)

// MaxFileBytes bounds what Load reads into memory.
const MaxFileBytes = 64 << 20

// File is one discovered source document.
type File struct {
	Path   string
	Size   int64
	SHA256 string
}

// DirStats summarizes a directory scan.
type DirStats struct {
	Scanned      uint32
	Matched      uint32
	Deduplicated uint32
	Failed       uint32
}

type ScanOptions struct {
	SkipHidden bool
	// Exts overrides constants.AllowedExtensions (lowercase, without '.').
	Exts []string
}

// Scan walks root and returns the accepted files in lexical order. Files whose content
// hash was already seen are counted as deduplicated and left out. Unreadable entries are
// counted and skipped.
func Scan(ctx context.Context, root string, opts ScanOptions) ([]File, DirStats, error) {
	var stats DirStats
	if strings.TrimSpace(root) == "" {
		return nil, stats, errors.New("root path is required")
	}
	exts := constants.AllowedExtensions
	if len(opts.Exts) > 0 {
		exts = make(map[string]struct{}, len(opts.Exts))
		for _, e := range opts.Exts {
			if e = constants.NormalizeExt(e); e != "" {
				exts[e] = struct{}{}
			}
		}
	}

	var out []File
	seen := map[string]string{}
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		stats.Scanned++
		if walkErr != nil {
			stats.Failed++
			return nil
		}
		if opts.SkipHidden && path != root && IsHidden(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !allowed(path, exts) {
			return nil
		}
		stats.Matched++

		sum, size, err := hashFile(path)
		if err != nil {
			stats.Failed++
			return nil
		}
		if _, dup := seen[sum]; dup {
			stats.Deduplicated++
			return nil
		}
		seen[sum] = path
		out = append(out, File{Path: path, Size: size, SHA256: sum})
		return nil
	})
	if err != nil {
		return out, stats, fmt.Errorf("walk: %w", err)
	}
	return out, stats, nil
}

// Load reads a file, refusing anything above MaxFileBytes.
func Load(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, MaxFileBytes+1))
	if err != nil {
		return nil, err
	}
	if len(data) > MaxFileBytes {
		return nil, fmt.Errorf("%s exceeds %d bytes", path, MaxFileBytes)
	}
	return data, nil
}

func hashFile(path string) (string, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", 0, err
	}
	defer f.Close()
	h := sha256.New()
	n, err := io.Copy(h, f)
	if err != nil {
		return "", 0, err
	}
	return hex.EncodeToString(h.Sum(nil)), n, nil
}

// IsHidden checks if a file or directory is hidden (starts with '.').
func IsHidden(path string) bool {
	return strings.HasPrefix(filepath.Base(path), ".")
}

func allowed(path string, exts map[string]struct{}) bool {
	_, ok := exts[constants.NormalizeExt(filepath.Ext(path))]
	return ok
}
