// Package noncestore persists the single last-accepted authentication nonce
// across power cycles.
//
// In production the Store is a file at a fixed path, read and written with
// os.OpenFile/os.ReadFile, the persistence idiom TamaGo itself demonstrates.
// This package does not provide or mount the storage that file lives on.
// Tests use the in-memory implementation below.
package noncestore

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Store is the single persistent slot holding one unsigned 32-bit
// last-accepted nonce.
type Store interface {
	Load() (uint32, error)
	Save(nonce uint32) error
}

// Memory is an in-memory Store, used by tests and by SKIP_AUTH/unit-test
// builds that have no eMMC to persist to.
type Memory struct {
	nonce uint32
}

// NewMemory returns a Memory store seeded at the given last-accepted nonce.
func NewMemory(seed uint32) *Memory {
	return &Memory{nonce: seed}
}

func (m *Memory) Load() (uint32, error) {
	return m.nonce, nil
}

func (m *Memory) Save(nonce uint32) error {
	m.nonce = nonce
	return nil
}

// File is a Store backed by a single fixed-path text file: one slot holding
// the last-accepted nonce at a fixed address in non-volatile storage, over
// TamaGo's mounted filesystem rather than a raw flash/OTP address.
type File struct {
	Path string
}

// NewFile returns a File-backed Store at path.
func NewFile(path string) *File {
	return &File{Path: path}
}

func (f *File) Load() (uint32, error) {
	data, err := os.ReadFile(f.Path)
	if os.IsNotExist(err) {
		// No prior boot has written the slot yet: treat as nonce 0, the
		// same value a reset wipes it to.
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	n, err := strconv.ParseUint(strings.TrimSpace(string(data)), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("noncestore: corrupt slot at %s: %w", f.Path, err)
	}

	return uint32(n), nil
}

func (f *File) Save(nonce uint32) error {
	tmp := f.Path + ".tmp"

	if err := os.WriteFile(tmp, []byte(strconv.FormatUint(uint64(nonce), 10)), 0600); err != nil {
		return err
	}

	return os.Rename(tmp, f.Path)
}

// Reset wipes the slot to 0, honoring the reset-timestamp compile-time
// configuration option.
func Reset(s Store) error {
	return s.Save(0)
}
