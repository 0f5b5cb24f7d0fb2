package sections

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/carverauto/autochecks/pkg/autochecks"
	"github.com/carverauto/autochecks/pkg/models"
)

const cacheSuffix = ".json"

type cacheFile struct {
	FetchedAt time.Time       `json:"fetched_at"`
	Sections  models.Sections `json:"sections"`
}

// FileCache keeps the last parsed sections of each host as JSON, one file
// per host and source type. Agent data is deposited here by the fetchers.
type FileCache struct {
	hostDir string
	mgmtDir string
	now     func() time.Time
}

func NewFileCache(hostDir, mgmtDir string) *FileCache {
	return &FileCache{hostDir: hostDir, mgmtDir: mgmtDir, now: time.Now}
}

func (c *FileCache) path(host string, source models.SourceType) (string, error) {
	dir := c.hostDir
	if source == models.SourceManagement {
		dir = c.mgmtDir
	}

	return autochecks.HostPath(dir, host, cacheSuffix)
}

// Load returns the cached sections of host. ok is false when nothing is cached.
func (c *FileCache) Load(host string, source models.SourceType) (sections models.Sections, fetchedAt time.Time, ok bool, err error) {
	path, err := c.path(host, source)
	if err != nil {
		return nil, time.Time{}, false, err
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, time.Time{}, false, nil
	}

	if err != nil {
		return nil, time.Time{}, false, fmt.Errorf("read section cache: %w", err)
	}

	var f cacheFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, time.Time{}, false, fmt.Errorf("%w %s: %w", ErrCorruptCache, path, err)
	}

	if f.Sections == nil {
		f.Sections = models.Sections{}
	}

	return f.Sections, f.FetchedAt, true, nil
}

// Store replaces the cached sections of host.
func (c *FileCache) Store(host string, source models.SourceType, sections models.Sections) error {
	path, err := c.path(host, source)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(cacheFile{FetchedAt: c.now().UTC(), Sections: sections}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode sections of %s: %w", host, err)
	}

	return autochecks.WriteFileAtomic(path, data)
}
