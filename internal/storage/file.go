package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// FileStore keeps the whole collection as one JSON document on disk.
type FileStore struct {
	path string
}

// NewFileStore returns a store writing to path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// LoadCommissions reads the collection. A missing file is an empty ledger.
func (f *FileStore) LoadCommissions(_ context.Context) ([]CommissionRecord, error) {
	if f == nil || f.path == "" {
		return nil, ErrNotConfigured
	}
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []CommissionRecord{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read ledger file: %w", err)
	}
	return decodeCommissions(data)
}

// SaveCommissions replaces the file atomically via a temp file and rename.
func (f *FileStore) SaveCommissions(_ context.Context, records []CommissionRecord) error {
	if f == nil || f.path == "" {
		return ErrNotConfigured
	}
	data, err := encodeCommissions(records)
	if err != nil {
		return err
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create ledger dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create ledger temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write ledger temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync ledger temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close ledger temp file: %w", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		return fmt.Errorf("replace ledger file: %w", err)
	}
	return nil
}

func encodeCommissions(records []CommissionRecord) ([]byte, error) {
	if records == nil {
		records = []CommissionRecord{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode commissions: %w", err)
	}
	return data, nil
}

func decodeCommissions(data []byte) ([]CommissionRecord, error) {
	records := make([]CommissionRecord, 0)
	if len(data) == 0 {
		return records, nil
	}
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode commissions: %w", err)
	}
	return records, nil
}

// MemoryStore keeps records in process memory only.
type MemoryStore struct {
	records []CommissionRecord
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// LoadCommissions returns a copy of the stored records.
func (m *MemoryStore) LoadCommissions(_ context.Context) ([]CommissionRecord, error) {
	out := make([]CommissionRecord, len(m.records))
	copy(out, m.records)
	return out, nil
}

// SaveCommissions replaces the stored records with a copy.
func (m *MemoryStore) SaveCommissions(_ context.Context, records []CommissionRecord) error {
	m.records = make([]CommissionRecord, len(records))
	copy(m.records, records)
	return nil
}

var (
	_ CommissionStore = (*FileStore)(nil)
	_ CommissionStore = (*MemoryStore)(nil)
)
