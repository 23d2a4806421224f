// Productrec - Neighbor-Based Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/productrec

package storage

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/gob"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/tomtom215/productrec/internal/recommend"
)

const fileSuffix = ".gob.gz"

// FileStore keeps one gob-encoded, gzip-compressed file per model version.
type FileStore struct {
	baseDir string
	name    string
	mu      sync.RWMutex

	// Versions present on disk
	versions map[int]struct{}
}

// storedFile is the on-disk format for model files.
type storedFile struct {
	Metadata       Metadata
	CompressedData []byte
}

// NewFileStore creates a file store in baseDir, creating it if needed, and
// indexes the model files already present.
func NewFileStore(baseDir, name string) (*FileStore, error) {
	if baseDir == "" {
		return nil, fmt.Errorf("file store path is required")
	}
	if name == "" {
		name = DefaultModelName
	}

	if err := os.MkdirAll(baseDir, 0o750); err != nil { //nolint:gosec // 0750 is acceptable for model storage
		return nil, fmt.Errorf("create storage directory: %w", err)
	}

	s := &FileStore{
		baseDir:  baseDir,
		name:     name,
		versions: make(map[int]struct{}),
	}

	if err := s.scanModels(); err != nil {
		return nil, fmt.Errorf("scan existing models: %w", err)
	}

	return s, nil
}

// scanModels indexes files matching {name}_v{version}.gob.gz.
func (s *FileStore) scanModels() error {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name, version := parseModelFilename(entry.Name())
		if name != s.name {
			continue
		}
		s.versions[version] = struct{}{}
	}

	return nil
}

// parseModelFilename extracts the model name and version from a filename
// like "knn_v3.gob.gz".
func parseModelFilename(filename string) (name string, version int) {
	base, ok := strings.CutSuffix(filename, fileSuffix)
	if !ok {
		return "", 0
	}

	idx := strings.LastIndex(base, "_v")
	if idx < 1 {
		return "", 0
	}

	version, err := strconv.Atoi(base[idx+2:])
	if err != nil || version < 1 {
		return "", 0
	}
	return base[:idx], version
}

// Save writes snap as a new version file. The file is written to a
// temporary name and renamed into place.
func (s *FileStore) Save(ctx context.Context, snap *recommend.Snapshot) error {
	if err := validateSnapshot(snap); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	var raw bytes.Buffer
	if err := gob.NewEncoder(&raw).Encode(snap); err != nil {
		return fmt.Errorf("encode model: %w", err)
	}

	var compressed bytes.Buffer
	gzw := gzip.NewWriter(&compressed)
	if _, err := gzw.Write(raw.Bytes()); err != nil {
		return fmt.Errorf("compress model: %w", err)
	}
	if err := gzw.Close(); err != nil {
		return fmt.Errorf("finalize compression: %w", err)
	}

	meta := newMetadata(s.name, snap, raw.Bytes())
	meta.SizeBytes = int64(compressed.Len())

	s.mu.Lock()
	defer s.mu.Unlock()

	tmp, err := os.CreateTemp(s.baseDir, "."+s.name+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create model file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }() //nolint:errcheck // temp file is gone after a successful rename

	sf := storedFile{Metadata: meta, CompressedData: compressed.Bytes()}
	if err := gob.NewEncoder(tmp).Encode(sf); err != nil {
		_ = tmp.Close() //nolint:errcheck // write error takes precedence
		return fmt.Errorf("write model file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close model file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.modelPath(snap.Version)); err != nil {
		return fmt.Errorf("rename model file: %w", err)
	}

	s.versions[snap.Version] = struct{}{}
	return nil
}

// LoadLatest returns the newest stored snapshot.
func (s *FileStore) LoadLatest(ctx context.Context) (*recommend.Snapshot, error) {
	return s.Load(ctx, 0)
}

// Load reads a version from disk. Version 0 means latest.
func (s *FileStore) Load(ctx context.Context, version int) (*recommend.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if version == 0 {
		version = s.latestLocked()
		if version == 0 {
			return nil, recommend.ErrNoStoredModel
		}
	}

	sf, err := s.readFile(version)
	if err != nil {
		return nil, err
	}

	gzr, err := gzip.NewReader(bytes.NewReader(sf.CompressedData))
	if err != nil {
		return nil, fmt.Errorf("%w: decompress model: %v", recommend.ErrCorruptModel, err)
	}
	defer func() { _ = gzr.Close() }() //nolint:errcheck // error on gzip close after read is not actionable

	raw, err := io.ReadAll(gzr)
	if err != nil {
		return nil, fmt.Errorf("%w: read decompressed data: %v", recommend.ErrCorruptModel, err)
	}

	if err := verifyChecksum(&sf.Metadata, raw); err != nil {
		return nil, err
	}

	var snap recommend.Snapshot
	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(&snap); err != nil {
		return nil, fmt.Errorf("%w: decode model: %v", recommend.ErrCorruptModel, err)
	}
	return &snap, nil
}

// readFile decodes the outer file envelope for a version.
func (s *FileStore) readFile(version int) (*storedFile, error) {
	f, err := os.Open(s.modelPath(version))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("model version %d: %w", version, recommend.ErrNoStoredModel)
	}
	if err != nil {
		return nil, fmt.Errorf("open model file: %w", err)
	}
	defer func() { _ = f.Close() }() //nolint:errcheck // error on close after read is not actionable

	var sf storedFile
	if err := gob.NewDecoder(f).Decode(&sf); err != nil {
		return nil, fmt.Errorf("%w: read model file: %v", recommend.ErrCorruptModel, err)
	}
	return &sf, nil
}

// LatestVersion returns the newest version on disk, or 0.
func (s *FileStore) LatestVersion(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latestLocked(), nil
}

func (s *FileStore) latestLocked() int {
	latest := 0
	for v := range s.versions {
		if v > latest {
			latest = v
		}
	}
	return latest
}

// List returns metadata for all readable model files, newest first.
func (s *FileStore) List(_ context.Context) ([]Metadata, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	versions := s.versionsLocked()
	sortVersionsDesc(versions)

	models := make([]Metadata, 0, len(versions))
	for _, v := range versions {
		sf, err := s.readFile(v)
		if err != nil {
			continue
		}
		models = append(models, sf.Metadata)
	}
	return models, nil
}

// Delete removes a specific model version.
func (s *FileStore) Delete(_ context.Context, version int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.modelPath(version)); err != nil {
		return fmt.Errorf("delete model: %w", err)
	}
	delete(s.versions, version)
	return nil
}

// Prune removes old model versions, keeping only the latest keep versions.
func (s *FileStore) Prune(_ context.Context, keep int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for _, v := range pruneVersions(s.versionsLocked(), keep) {
		if err := os.Remove(s.modelPath(v)); err != nil && !errors.Is(err, os.ErrNotExist) {
			return removed, fmt.Errorf("delete model version %d: %w", v, err)
		}
		delete(s.versions, v)
		removed++
	}
	return removed, nil
}

// Close is a no-op; files are closed after every operation.
func (s *FileStore) Close() error { return nil }

func (s *FileStore) versionsLocked() []int {
	versions := make([]int, 0, len(s.versions))
	for v := range s.versions {
		versions = append(versions, v)
	}
	return versions
}

// modelPath returns the file path for a model version.
func (s *FileStore) modelPath(version int) string {
	return filepath.Join(s.baseDir, fmt.Sprintf("%s_v%d%s", s.name, version, fileSuffix))
}
