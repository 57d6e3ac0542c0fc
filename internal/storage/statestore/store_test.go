package statestore_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/turtacn/pairgate/internal/storage/statestore"
	"github.com/turtacn/pairgate/pkg/constants"
	"github.com/turtacn/pairgate/pkg/logger"
)

type pendingRecord struct {
	ID string `json:"id"`
	TS int64  `json:"ts"`
}

func (r *pendingRecord) Timestamp() int64 {
	return r.TS
}

type pairedRecord struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

func newStore(t *testing.T) (*statestore.Store[*pendingRecord, *pairedRecord], string) {
	t.Helper()
	dir := t.TempDir()
	return statestore.New[*pendingRecord, *pairedRecord](dir, logger.NewNoopLogger()), dir
}

func TestStoreRoundTrip(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()
	nowMs := time.Now().UnixMilli()

	pending := map[string]*pendingRecord{
		"req-1": {ID: "req-1", TS: nowMs},
	}
	paired := map[string]*pairedRecord{
		"dev-1": {ID: "dev-1", Label: "workbench"},
	}
	require.NoError(t, store.Persist(ctx, pending, paired))

	gotPending, gotPaired := store.Load(ctx, nowMs)
	require.Len(t, gotPending, 1)
	assert.Equal(t, "req-1", gotPending["req-1"].ID)
	require.Len(t, gotPaired, 1)
	assert.Equal(t, "workbench", gotPaired["dev-1"].Label)
}

func TestStoreLoadEmptyOnFirstRun(t *testing.T) {
	store, _ := newStore(t)

	pending, paired := store.Load(context.Background(), time.Now().UnixMilli())
	assert.Empty(t, pending)
	assert.Empty(t, paired)
	assert.NotNil(t, pending)
	assert.NotNil(t, paired)
}

func TestStorePrunesExpiredPending(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()
	nowMs := time.Now().UnixMilli()

	stale := nowMs - (constants.PendingRequestTTL + time.Minute).Milliseconds()
	pending := map[string]*pendingRecord{
		"fresh": {ID: "fresh", TS: nowMs},
		"stale": {ID: "stale", TS: stale},
	}
	require.NoError(t, store.Persist(ctx, pending, nil))

	gotPending, _ := store.Load(ctx, nowMs)
	require.Len(t, gotPending, 1)
	assert.Contains(t, gotPending, "fresh")
	assert.NotContains(t, gotPending, "stale")
}

func TestStoreFailOpenOnCorruptFile(t *testing.T) {
	store, dir := newStore(t)
	ctx := context.Background()
	nowMs := time.Now().UnixMilli()

	require.NoError(t, store.Persist(ctx, map[string]*pendingRecord{
		"req-1": {ID: "req-1", TS: nowMs},
	}, map[string]*pairedRecord{
		"dev-1": {ID: "dev-1"},
	}))
	require.NoError(t, os.WriteFile(filepath.Join(dir, constants.PairedFileName), []byte("{not json"), 0o600))

	pending, paired := store.Load(ctx, nowMs)
	assert.Len(t, pending, 1)
	assert.Empty(t, paired)
}

func TestStoreFileMode(t *testing.T) {
	store, dir := newStore(t)

	require.NoError(t, store.Persist(context.Background(), nil, nil))

	for _, name := range []string{constants.PendingFileName, constants.PairedFileName} {
		info, err := os.Stat(filepath.Join(dir, name))
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(constants.StateFileMode), info.Mode().Perm())
	}
}

func TestWriteFileAtomicReplacesExisting(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.json")

	require.NoError(t, statestore.WriteFileAtomic(path, []byte("first")))
	require.NoError(t, statestore.WriteFileAtomic(path, []byte("second")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestMarshalStateStableFormatting(t *testing.T) {
	data, err := statestore.MarshalState(map[string]string{"b": "2", "a": "1"})
	require.NoError(t, err)

	assert.True(t, len(data) > 0 && data[len(data)-1] == '\n')
	assert.Contains(t, string(data), "  \"a\": \"1\"")
}
