package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/safarlabs/railsathi/internal/dialogue"
	"github.com/safarlabs/railsathi/internal/fares"
)

func testFactory() (*dialogue.Controller, error) {
	return dialogue.NewController(nil, nil, fares.NewSampleProvider(1, nil), zap.NewNop())
}

func TestNewStore(t *testing.T) {
	t.Run("requires a factory", func(t *testing.T) {
		_, err := NewStore(4, nil, nil)
		assert.Error(t, err)
	})

	t.Run("zero capacity uses the default", func(t *testing.T) {
		st, err := NewStore(0, testFactory, nil)
		require.NoError(t, err)
		assert.NotNil(t, st)
	})
}

func TestStore_GetOrCreate(t *testing.T) {
	st, err := NewStore(8, testFactory, zap.NewNop())
	require.NoError(t, err)

	t.Run("empty id mints a uuid", func(t *testing.T) {
		sess, err := st.GetOrCreate("")
		require.NoError(t, err)
		assert.NotEmpty(t, sess.ID)
	})

	t.Run("same id returns the same session", func(t *testing.T) {
		a, err := st.GetOrCreate("alpha")
		require.NoError(t, err)
		b, err := st.GetOrCreate("alpha")
		require.NoError(t, err)
		assert.Same(t, a, b)
	})

	t.Run("factory errors surface", func(t *testing.T) {
		broken, err := NewStore(8, func() (*dialogue.Controller, error) {
			return nil, errors.New("no provider configured")
		}, nil)
		require.NoError(t, err)
		_, err = broken.GetOrCreate("x")
		assert.Error(t, err)
	})
}

func TestStore_SessionStateIsPerID(t *testing.T) {
	st, err := NewStore(8, testFactory, zap.NewNop())
	require.NoError(t, err)
	ctx := context.Background()

	a, err := st.GetOrCreate("a")
	require.NoError(t, err)
	b, err := st.GetOrCreate("b")
	require.NoError(t, err)

	a.Process(ctx, "karachi se lahore")
	assert.Equal(t, dialogue.StageDate, a.Stage())
	assert.Equal(t, dialogue.StageInit, b.Stage())
}

func TestStore_Eviction(t *testing.T) {
	st, err := NewStore(2, testFactory, zap.NewNop())
	require.NoError(t, err)

	for _, id := range []string{"a", "b", "c"} {
		_, err := st.GetOrCreate(id)
		require.NoError(t, err)
	}
	assert.Equal(t, 2, st.Len())
	_, ok := st.Get("a")
	assert.False(t, ok, "oldest session must be evicted")
	_, ok = st.Get("c")
	assert.True(t, ok)
}

func TestStore_Delete(t *testing.T) {
	st, err := NewStore(8, testFactory, zap.NewNop())
	require.NoError(t, err)

	_, err = st.GetOrCreate("gone")
	require.NoError(t, err)
	assert.True(t, st.Delete("gone"))
	assert.False(t, st.Delete("gone"), "second delete finds nothing")
	assert.Zero(t, st.Len())
}

func TestStore_ConcurrentTurnsSerialize(t *testing.T) {
	st, err := NewStore(8, testFactory, zap.NewNop())
	require.NoError(t, err)
	sess, err := st.GetOrCreate("busy")
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			sess.Process(context.Background(), fmt.Sprintf("message %d", n))
		}(i)
	}
	wg.Wait()

	// Whatever the interleaving, the controller saw one turn at a time
	// and is still in a coherent stage.
	assert.NotEmpty(t, sess.Stage())
}
