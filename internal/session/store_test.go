package session

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"phewasview/domain/core"
	"phewasview/domain/phewas"
)

func TestStoreReplacesWholesale(t *testing.T) {
	s := NewStore()
	id := core.NewSessionID()

	_, err := s.Get(id)
	assert.True(t, core.IsNotFoundError(err))

	first := phewas.NewResultSet(phewas.SubsetBoth)
	first.Rows = make([]phewas.AssociationRow, 3)
	s.Put(id, first, &phewas.LoadReport{})

	second := phewas.NewResultSet(phewas.SubsetMaleOnly)
	s.Put(id, second, &phewas.LoadReport{})

	e, err := s.Get(id)
	require.NoError(t, err)
	assert.Same(t, second, e.ResultSet)
	assert.True(t, e.ResultSet.IsEmpty())
	assert.Equal(t, 1, s.Len())

	s.Delete(id)
	assert.Equal(t, 0, s.Len())
}

func TestStoreCleanupExpired(t *testing.T) {
	s := NewStore()
	clock := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return clock }

	old := core.NewSessionID()
	s.Put(old, phewas.NewResultSet(phewas.SubsetBoth), nil)
	clock = clock.Add(2 * time.Hour)
	fresh := core.NewSessionID()
	s.Put(fresh, phewas.NewResultSet(phewas.SubsetBoth), nil)

	assert.Equal(t, 1, s.CleanupExpired(time.Hour))
	_, err := s.Get(old)
	assert.Error(t, err)
	_, err = s.Get(fresh)
	assert.NoError(t, err)
}

func TestStoreConcurrentAccess(t *testing.T) {
	s := NewStore()
	ids := make([]core.SessionID, 8)
	for i := range ids {
		ids[i] = core.NewSessionID()
	}

	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := ids[i%len(ids)]
			s.Put(id, phewas.NewResultSet(phewas.SubsetBoth), nil)
			_, _ = s.Get(id)
		}(i)
	}
	wg.Wait()
	assert.Equal(t, len(ids), s.Len())
}
