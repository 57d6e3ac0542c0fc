// Package identity implements the client-side credential cache: the local
// persistent store of tokens previously issued to this running process for a
// given role. It is independent of the pairing registries, which live on the
// side that approves pairings.
package identity

import (
	"context"
	"encoding/json"
	"os"
	"sync"
	"time"

	"github.com/turtacn/pairgate/internal/domain/token"
	"github.com/turtacn/pairgate/internal/storage/statestore"
	"github.com/turtacn/pairgate/pkg/constants"
	"github.com/turtacn/pairgate/pkg/logger"
)

// CredentialEntry is one cached (deviceId, role) credential.
type CredentialEntry struct {
	Token       string   `json:"token"`
	Scopes      []string `json:"scopes"`
	UpdatedAtMs int64    `json:"updatedAtMs"`
}

// credentialFile is the on-disk document: a schema version, the device id the
// cache was created for, and one entry per role.
type credentialFile struct {
	Version  int                         `json:"version"`
	DeviceID string                      `json:"deviceId"`
	Tokens   map[string]*CredentialEntry `json:"tokens"`
}

// CredentialCache stores tokens in a single JSON file with the same atomic
// temp-file-rename + 0600 discipline as the pairing stores. The file is
// scoped to the device id recorded when it was first created: a file whose
// recorded id mismatches the caller's current id is treated as foreign and
// ignored, never partially merged. This guards against stale reuse after a
// device identity reset.
type CredentialCache struct {
	mu   sync.Mutex
	path string
	log  logger.Logger
	now  func() int64
}

// NewCredentialCache creates a cache backed by the file at path.
func NewCredentialCache(path string, log logger.Logger) *CredentialCache {
	if log == nil {
		log = logger.NewNoopLogger()
	}
	return &CredentialCache{
		path: path,
		log:  log.WithComponent("credential-cache"),
		now:  func() int64 { return time.Now().UnixMilli() },
	}
}

// WithClock overrides the millisecond clock. Test hook.
func (c *CredentialCache) WithClock(now func() int64) *CredentialCache {
	c.now = now
	return c
}

// Load returns the cached entry for (deviceID, role), or nil when absent. A
// missing, unreadable, foreign, or corrupt file all read as absent.
func (c *CredentialCache) Load(ctx context.Context, deviceID, role string) *CredentialEntry {
	c.mu.Lock()
	defer c.mu.Unlock()

	file := c.read(ctx)
	if file == nil || file.DeviceID != deviceID {
		return nil
	}
	return file.Tokens[role]
}

// Store overwrites the role's entry (last-write-wins, no merge), re-sorting
// and de-duplicating the scope list before persisting. A foreign file is
// replaced outright rather than merged.
func (c *CredentialCache) Store(ctx context.Context, deviceID, role, tokenValue string, scopes []string) (*CredentialEntry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	file := c.read(ctx)
	if file == nil || file.DeviceID != deviceID {
		file = &credentialFile{
			Version:  constants.CredentialCacheVersion,
			DeviceID: deviceID,
			Tokens:   make(map[string]*CredentialEntry),
		}
	}
	if file.Tokens == nil {
		file.Tokens = make(map[string]*CredentialEntry)
	}

	entry := &CredentialEntry{
		Token:       tokenValue,
		Scopes:      token.NormalizeScopes(scopes),
		UpdatedAtMs: c.now(),
	}
	file.Tokens[role] = entry

	if err := c.write(file); err != nil {
		return nil, err
	}
	return entry, nil
}

// Clear removes the role's entry. Clearing an absent entry, or a file scoped
// to a different device id, succeeds without change.
func (c *CredentialCache) Clear(ctx context.Context, deviceID, role string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	file := c.read(ctx)
	if file == nil || file.DeviceID != deviceID {
		return nil
	}
	if _, ok := file.Tokens[role]; !ok {
		return nil
	}

	delete(file.Tokens, role)
	return c.write(file)
}

func (c *CredentialCache) read(ctx context.Context) *credentialFile {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if !os.IsNotExist(err) {
			c.log.Warn(ctx, "credential cache unreadable, treating as absent", logger.Fields{
				"path":  c.path,
				"error": err.Error(),
			})
		}
		return nil
	}

	var file credentialFile
	if err := json.Unmarshal(data, &file); err != nil {
		c.log.Warn(ctx, "credential cache corrupt, treating as absent", logger.Fields{
			"path":  c.path,
			"error": err.Error(),
		})
		return nil
	}
	return &file
}

func (c *CredentialCache) write(file *credentialFile) error {
	data, err := statestore.MarshalState(file)
	if err != nil {
		return err
	}
	return statestore.WriteFileAtomic(c.path, data)
}

//Personal.AI order the ending
