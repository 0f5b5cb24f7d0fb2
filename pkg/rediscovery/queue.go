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

package rediscovery

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/carverauto/autochecks/pkg/autochecks"
)

const (
	queueDirPerms  = 0o750
	queueFilePerms = 0o640
)

// Queue is the autodiscovery directory: one empty flag file per host marked
// for unattended rediscovery. A flag's mtime is the time it was first queued.
type Queue struct {
	dir string
}

func NewQueue(dir string) *Queue {
	return &Queue{dir: dir}
}

func (q *Queue) Dir() string {
	return q.dir
}

// Add flags host. An existing flag keeps its original timestamp.
func (q *Queue) Add(host string) error {
	path, err := autochecks.HostPath(q.dir, host, "")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(q.dir, queueDirPerms); err != nil {
		return fmt.Errorf("create autodiscovery directory %s: %w", q.dir, err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE, queueFilePerms)
	if err != nil {
		return fmt.Errorf("flag %s for rediscovery: %w", host, err)
	}

	return f.Close()
}

// Remove drops the flag of host; a missing flag is not an error.
func (q *Queue) Remove(host string) error {
	path, err := autochecks.HostPath(q.dir, host, "")
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove rediscovery flag of %s: %w", host, err)
	}

	return nil
}

// Has reports whether host is flagged.
func (q *Queue) Has(host string) bool {
	path, err := autochecks.HostPath(q.dir, host, "")
	if err != nil {
		return false
	}

	_, err = os.Stat(path)

	return err == nil
}

// QueuedHosts lists the flagged hosts in sorted order. A missing directory
// means nothing is queued.
func (q *Queue) QueuedHosts() ([]string, error) {
	entries, err := os.ReadDir(q.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}

		return nil, fmt.Errorf("list autodiscovery directory %s: %w", q.dir, err)
	}

	hosts := make([]string, 0, len(entries))

	for _, e := range entries {
		if e.Type().IsRegular() {
			hosts = append(hosts, e.Name())
		}
	}

	return hosts, nil
}

// Oldest returns the earliest flag timestamp, or now when it is earlier
// than every flag.
func (q *Queue) Oldest(now time.Time) (time.Time, error) {
	entries, err := os.ReadDir(q.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return now, nil
		}

		return now, fmt.Errorf("list autodiscovery directory %s: %w", q.dir, err)
	}

	oldest := now

	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}

		info, err := e.Info()
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}

			return now, err
		}

		if info.ModTime().Before(oldest) {
			oldest = info.ModTime()
		}
	}

	return oldest, nil
}
