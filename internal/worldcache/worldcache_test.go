package worldcache

import (
	"context"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenDisabledWithEmptyPath(t *testing.T) {
	c, err := Open("")
	require.NoError(t, err)
	assert.Nil(t, c)

	// A nil cache must behave as an always-miss cache, not panic.
	entry, ok, err := c.Lookup(context.Background(), "anything")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, entry.TypeNames)
}

func TestStoreAndLookupRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "world_cache.db")
	c, err := Open(path)
	require.NoError(t, err)
	defer c.Close()

	digest := Digest([]string{"unit a", "unit b"}, []string{"net"})
	require.NoError(t, c.Store(context.Background(), Entry{
		Digest:        digest,
		TypeNames:     []string{"example::Age"},
		FunctionNames: []string{"net::reachable"},
	}))

	entry, ok, err := c.Lookup(context.Background(), digest)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []string{"example::Age"}, entry.TypeNames)
	assert.Equal(t, []string{"net::reachable"}, entry.FunctionNames)
}

func TestDigestIsOrderIndependent(t *testing.T) {
	a := Digest([]string{"x", "y"}, []string{"net", "grpc"})
	b := Digest([]string{"y", "x"}, []string{"grpc", "net"})
	assert.Equal(t, a, b)
}

func TestGetOrComputeComputesOnceThenHits(t *testing.T) {
	path := filepath.Join(t.TempDir(), "world_cache.db")
	c, err := Open(path)
	require.NoError(t, err)
	defer c.Close()

	var calls int64
	digest := Digest([]string{"u"}, nil)

	compute := func() (Entry, error) {
		atomic.AddInt64(&calls, 1)
		return Entry{TypeNames: []string{"example::Age"}}, nil
	}

	entry, err := c.GetOrCompute(context.Background(), digest, compute)
	require.NoError(t, err)
	assert.Equal(t, []string{"example::Age"}, entry.TypeNames)

	entry2, err := c.GetOrCompute(context.Background(), digest, compute)
	require.NoError(t, err)
	assert.Equal(t, []string{"example::Age"}, entry2.TypeNames)

	assert.Equal(t, int64(1), atomic.LoadInt64(&calls))
}

func TestGetOrComputeWithoutCache(t *testing.T) {
	var c *Cache
	calls := 0
	entry, err := c.GetOrCompute(context.Background(), "digest", func() (Entry, error) {
		calls++
		return Entry{TypeNames: []string{"a"}}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, []string{"a"}, entry.TypeNames)
}
