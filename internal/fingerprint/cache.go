package fingerprint

import (
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/vmihailenco/msgpack/v5"
)

// Bump when the payload layout or any scope grammar table changes.
const cacheSchemaVersion uint16 = 1

var (
	zstdEncoder, _ = zstd.NewWriter(nil)
	zstdDecoder, _ = zstd.NewReader(nil)
)

// DiskCache stores computed fingerprints per source content digest.
// Thread-safe for concurrent access.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// cachePayload is the msgpack body of one cache file.
type cachePayload struct {
	Schema  uint16
	Entries map[string]string
}

// OpenDiskCache creates the cache directory if needed.
func OpenDiskCache(dir string) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	return &DiskCache{dir: dir}, nil
}

// Dir returns the cache directory.
func (c *DiskCache) Dir() string {
	return c.dir
}

func (c *DiskCache) pathFor(digest string) string {
	prefix := "xx"
	if len(digest) >= 2 {
		prefix = digest[:2]
	}
	return filepath.Join(c.dir, prefix, digest+".mp.zst")
}

// Get returns the cached entries for a content digest. A missing file or a
// payload written by another schema version is a miss.
func (c *DiskCache) Get(digest string) (map[string]string, bool, error) {
	if c == nil {
		return nil, false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.read(digest)
}

// read loads one cache file. The caller holds c.mu.
func (c *DiskCache) read(digest string) (map[string]string, bool, error) {
	compressed, err := os.ReadFile(c.pathFor(digest))
	if err != nil {
		if stderrors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	raw, err := zstdDecoder.DecodeAll(compressed, nil)
	if err != nil {
		return nil, false, fmt.Errorf("corrupt cache entry %s: %w", digest, err)
	}

	var payload cachePayload
	if err := msgpack.Unmarshal(raw, &payload); err != nil {
		return nil, false, fmt.Errorf("corrupt cache entry %s: %w", digest, err)
	}
	if payload.Schema != cacheSchemaVersion {
		return nil, false, nil
	}
	return payload.Entries, true, nil
}

// Put merges entries into the cache file for digest. The read, merge and
// write happen under one lock so concurrent puts for the same digest keep
// each other's keys.
func (c *DiskCache) Put(digest string, entries map[string]string) error {
	if c == nil || len(entries) == 0 {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	merged := make(map[string]string, len(entries))
	if existing, ok, _ := c.read(digest); ok {
		for k, v := range existing {
			merged[k] = v
		}
	}
	for k, v := range entries {
		merged[k] = v
	}

	raw, err := msgpack.Marshal(&cachePayload{Schema: cacheSchemaVersion, Entries: merged})
	if err != nil {
		return err
	}
	compressed := zstdEncoder.EncodeAll(raw, nil)

	p := c.pathFor(digest)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	if _, err := f.Write(compressed); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, p); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

// DropAll removes every cached entry.
func (c *DiskCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	entries, err := os.ReadDir(c.dir)
	if err != nil {
		if stderrors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	for _, e := range entries {
		if err := os.RemoveAll(filepath.Join(c.dir, e.Name())); err != nil {
			return err
		}
	}
	return nil
}
