package service

import (
	"context"
	"testing"

	"github.com/fsdevblog/smm-panel/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateKeeper_SkipsStaleSnapshot(t *testing.T) {
	persister := new(recordingPersister)
	keeper := newStateKeeper(memStores(100), persister, discardLogger().WithField("test", true))

	keeper.persist(t.Context(), domain.Snapshot{Version: 3})
	keeper.persist(t.Context(), domain.Snapshot{Version: 2})
	keeper.persist(t.Context(), domain.Snapshot{Version: 3})
	keeper.persist(t.Context(), domain.Snapshot{Version: 4})

	assert.Equal(t, []uint64{3, 4}, persister.saved())
}

func TestStateKeeper_PersistOutlivesCanceledRequest(t *testing.T) {
	persister := new(recordingPersister)
	keeper := newStateKeeper(memStores(100), persister, discardLogger().WithField("test", true))

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	err := keeper.mutate(ctx, func(c context.Context) error {
		return keeper.accounts.SetBalance(c, 50)
	})
	require.NoError(t, err)
	assert.Equal(t, []uint64{1}, persister.saved())
	assert.Equal(t, int64(50), persister.last.Account.Balance)
}

func TestFactory_RequiresStores(t *testing.T) {
	_, err := Factory(Stores{}, new(recordingPersister), discardLogger())
	require.Error(t, err)

	_, err = Factory(memStores(1), nil, discardLogger())
	require.Error(t, err)
}
