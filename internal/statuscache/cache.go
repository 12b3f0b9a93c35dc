package statuscache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/loomworks/loom/internal/ctxlog"
	"github.com/loomworks/loom/internal/model"
)

// entry is the on-disk representation of one cached probe result.
type entry struct {
	ConfigHash string                 `json:"config_hash"`
	CheckedAt  time.Time              `json:"checked_at"`
	Result     model.ToolStatusResult `json:"result"`
}

type fileFormat struct {
	Entries map[string]entry `json:"entries"`
}

// Cache holds probe results across runs, keyed by tool ID.
//
// Get and Put operate on the in-memory view; Load and Flush move that
// view to and from the backing file. The zero value is not usable, use
// New.
type Cache struct {
	path    string
	ttl     time.Duration
	entries map[string]entry
	dirty   bool

	// now is swapped out in tests to control expiry.
	now func() time.Time
}

// New returns a cache backed by the file at path. Entries older than
// ttl are treated as absent.
func New(path string, ttl time.Duration) *Cache {
	return &Cache{
		path:    path,
		ttl:     ttl,
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

// Load reads the backing file into memory. A missing file yields an
// empty cache. A file that cannot be read or parsed also yields an
// empty cache, logged once at warning level.
func (c *Cache) Load(ctx context.Context) {
	log := ctxlog.FromContext(ctx)

	raw, err := os.ReadFile(c.path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn("Tool status cache unreadable, starting empty", "path", c.path, "error", err)
		}
		return
	}

	var ff fileFormat
	if err := json.Unmarshal(raw, &ff); err != nil {
		log.Warn("Tool status cache corrupt, starting empty", "path", c.path, "error", err)
		return
	}
	if ff.Entries != nil {
		c.entries = ff.Entries
	}
}

// Get returns the cached result for the tool, or nil when there is no
// entry, the entry has expired, or the tool configuration changed since
// the entry was written.
func (c *Cache) Get(toolID string, cfg model.ToolConfig) *model.ToolStatusResult {
	e, ok := c.entries[toolID]
	if !ok {
		return nil
	}
	if e.ConfigHash != ConfigHash(cfg) {
		return nil
	}
	if c.ttl > 0 && c.now().Sub(e.CheckedAt) > c.ttl {
		return nil
	}
	res := e.Result
	return &res
}

// Put records a fresh probe result for the tool.
func (c *Cache) Put(toolID string, cfg model.ToolConfig, result model.ToolStatusResult) {
	c.entries[toolID] = entry{
		ConfigHash: ConfigHash(cfg),
		CheckedAt:  c.now(),
		Result:     result,
	}
	c.dirty = true
}

// Flush writes the in-memory view back to the backing file. It is a
// no-op when nothing changed since Load.
func (c *Cache) Flush(ctx context.Context) error {
	if !c.dirty {
		return nil
	}

	raw, err := json.MarshalIndent(fileFormat{Entries: c.entries}, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding tool status cache: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}
	if err := os.WriteFile(c.path, raw, 0o644); err != nil {
		return fmt.Errorf("writing tool status cache: %w", err)
	}

	c.dirty = false
	ctxlog.FromContext(ctx).Debug("Tool status cache flushed", "path", c.path, "entries", len(c.entries))
	return nil
}

// ConfigHash fingerprints the fields of a tool configuration that
// affect probe behavior. Field order is fixed here, so the hash is
// stable across runs regardless of how the config was assembled.
func ConfigHash(cfg model.ToolConfig) string {
	h := sha256.New()
	fields := []string{
		cfg.ID,
		cfg.RequiredVersion,
		cfg.VersionCommand,
		cfg.CheckCommand,
		cfg.CheckPath,
		cfg.Package,
		cfg.Expression,
		fmt.Sprintf("%t", cfg.Optional),
	}
	for _, f := range fields {
		h.Write([]byte(f))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
