/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package autochecks persists discovered services per host and resolves them
// into configured services.
package autochecks

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/carverauto/autochecks/pkg/models"
)

const (
	autochecksSuffix = ".json"
	lockSuffix       = ".lock"
)

// Store is the on-disk autochecks file of a single host.
type Store struct {
	hostname string
	path     string
	lockPath string
}

// NewStore returns the store of hostname below dir. No I/O happens until a
// method is called.
func NewStore(dir, hostname string) (*Store, error) {
	path, err := HostPath(dir, hostname, autochecksSuffix)
	if err != nil {
		return nil, err
	}

	return &Store{
		hostname: hostname,
		path:     path,
		lockPath: path + lockSuffix,
	}, nil
}

// Path returns the file backing the store.
func (s *Store) Path() string {
	return s.path
}

// Read returns the persisted entries. A missing file yields no entries.
func (s *Store) Read() ([]models.AutocheckEntry, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []models.AutocheckEntry{}, nil
		}

		return nil, fmt.Errorf("failed to read file '%s': %w", s.path, err)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return []models.AutocheckEntry{}, nil
	}

	var entries []models.AutocheckEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrCorruptAutochecks, s.path, err)
	}

	for i, entry := range entries {
		if err := entry.CheckPluginName.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %s: entry %d: %w", ErrCorruptAutochecks, s.path, i, err)
		}

		if entry.ServiceLabels == nil {
			entries[i].ServiceLabels = models.ServiceLabels{}
		}
	}

	return entries, nil
}

// Write sorts entries by service ID and atomically replaces the file.
func (s *Store) Write(entries []models.AutocheckEntry) error {
	data, err := Encode(entries)
	if err != nil {
		return err
	}

	return WriteFileAtomic(s.path, data)
}

// Clear removes the file; an absent file is not an error.
func (s *Store) Clear() error {
	return removeIfExists(s.path)
}

// WithLock runs fn while holding the host's advisory lock.
func (s *Store) WithLock(ctx context.Context, fn func() error) error {
	lock, err := acquireLock(ctx, s.lockPath)
	if err != nil {
		return err
	}

	fnErr := fn()

	if err := lock.release(); err != nil && fnErr == nil {
		return fmt.Errorf("unlock %s: %w", s.lockPath, err)
	}

	return fnErr
}

// Encode renders entries in the persisted format: one JSON array sorted by
// service ID, one record per line.
func Encode(entries []models.AutocheckEntry) ([]byte, error) {
	sorted := make([]models.AutocheckEntry, len(entries))
	copy(sorted, entries)

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ID().Less(sorted[j].ID())
	})

	var buf bytes.Buffer

	buf.WriteString("[\n")

	for i, entry := range sorted {
		if entry.ServiceLabels == nil {
			entry.ServiceLabels = models.ServiceLabels{}
		}

		line, err := json.Marshal(entry)
		if err != nil {
			return nil, fmt.Errorf("encode autocheck entry %s: %w", entry.ID(), err)
		}

		buf.WriteString("  ")
		buf.Write(line)

		if i < len(sorted)-1 {
			buf.WriteByte(',')
		}

		buf.WriteByte('\n')
	}

	buf.WriteString("]\n")

	return buf.Bytes(), nil
}
