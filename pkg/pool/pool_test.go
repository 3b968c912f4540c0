package pool

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPool_Parallelize(t *testing.T) {
	square := func(i int) interface{} { return i * i }
	for _, pl := range []*Pool{nil, NewPool(0), NewPool(3)} {
		results := pl.Parallelize(50, square)
		require.Len(t, results, 50)
		for i, r := range results {
			assert.Equal(t, i*i, r.(int))
		}
		pl.TearDown()
	}
}

func TestPool_Search(t *testing.T) {
	var ctr int64
	f := func() interface{} {
		v := atomic.AddInt64(&ctr, 1)
		if v%7 != 0 {
			return nil
		}
		return v
	}
	for _, pl := range []*Pool{nil, NewPool(4)} {
		results, err := pl.Search(context.Background(), 3, f)
		require.NoError(t, err)
		require.Len(t, results, 3)
		for _, r := range results {
			assert.Zero(t, r.(int64)%7)
		}
		pl.TearDown()
	}
}

func TestPool_Search_Cancel(t *testing.T) {
	never := func() interface{} {
		time.Sleep(time.Millisecond)
		return nil
	}
	for _, pl := range []*Pool{nil, NewPool(2)} {
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		_, err := pl.Search(ctx, 1, never)
		cancel()
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		pl.TearDown()
	}
}

func TestPool_Find(t *testing.T) {
	for _, pl := range []*Pool{nil, NewPool(1), NewPool(4)} {
		i, ok := pl.Find(100, func(i int) bool { return i >= 37 && i%3 == 0 })
		require.True(t, ok)
		assert.Equal(t, 39, i)

		_, ok = pl.Find(100, func(int) bool { return false })
		assert.False(t, ok)

		i, ok = pl.Find(1, func(int) bool { return true })
		require.True(t, ok)
		assert.Equal(t, 0, i)

		_, ok = pl.Find(0, func(int) bool { return true })
		assert.False(t, ok)
		pl.TearDown()
	}
}

func TestPool_Workers(t *testing.T) {
	var pl *Pool
	assert.Equal(t, 1, pl.Workers())
	pl = NewPool(5)
	defer pl.TearDown()
	assert.Equal(t, 5, pl.Workers())
}
