package form

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyedLocksFreeIdleEntries(t *testing.T) {
	l := newKeyedLocks()

	release := l.acquire(1)
	other := l.acquire(2)
	assert.Equal(t, 2, l.size())

	release()
	assert.Equal(t, 1, l.size())

	other()
	assert.Equal(t, 0, l.size(), "no entries left once every holder released")
}

func TestKeyedLocksSerializeSameKey(t *testing.T) {
	l := newKeyedLocks()

	var active, maxActive int
	var mu sync.Mutex
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release := l.acquire(7)
			defer release()

			mu.Lock()
			active++
			if active > maxActive {
				maxActive = active
			}
			mu.Unlock()

			mu.Lock()
			active--
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxActive, "one holder at a time per key")
	assert.Equal(t, 0, l.size())
}

func TestEngineReleasesUserLocks(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)

	require.NoError(t, fx.engine.Start(ctx, testUser))
	for _, answer := range validAnswers {
		require.NoError(t, fx.engine.HandleText(ctx, testUser, submitter, answer))
	}
	require.NoError(t, fx.engine.HandlePhoto(ctx, testUser, submitter, []AttachmentVariant{
		{FileID: "big", Width: 800, Height: 800},
	}))

	assert.Equal(t, 0, fx.engine.locks.size(), "no lock entry survives completion")

	require.NoError(t, fx.engine.Start(ctx, testUser))
	fx.engine.Cancel(ctx, testUser)
	assert.Equal(t, 0, fx.engine.locks.size(), "no lock entry survives cancel")
}
