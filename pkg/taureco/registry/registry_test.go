package registry

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	r := New[string, int]()
	assert.NotNil(t, r)
	assert.Empty(t, r.Keys())
}

func TestRegisterAndGet(t *testing.T) {
	r := New[string, int]()

	require.NoError(t, r.Register("one", 1))
	require.NoError(t, r.Register("two", 2))

	v, ok := r.Get("one")
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	v, ok = r.Get("three")
	assert.False(t, ok)
	assert.Equal(t, 0, v)
}

func TestRegisterDuplicate(t *testing.T) {
	r := New[string, int]()
	require.NoError(t, r.Register("calo", 1))

	err := r.Register("calo", 2)
	require.ErrorIs(t, err, ErrDuplicate)

	v, _ := r.Get("calo")
	assert.Equal(t, 1, v, "first registration must be kept")
}

func TestMustRegister_Panics(t *testing.T) {
	r := New[string, int]()
	r.MustRegister("a", 1)
	assert.Panics(t, func() { r.MustRegister("a", 2) })
}

func TestPutOverwrites(t *testing.T) {
	r := New[string, string]()
	r.Put("k", "v1")
	r.Put("k", "v2")

	v, ok := r.Get("k")
	assert.True(t, ok)
	assert.Equal(t, "v2", v)
	assert.Equal(t, []string{"k"}, r.Keys())
}

func TestLookup(t *testing.T) {
	r := New[string, int]()
	r.Put("present", 7)

	v, err := r.Lookup("present")
	require.NoError(t, err)
	assert.Equal(t, 7, v)

	_, err = r.Lookup("absent")
	require.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "absent")
}

func TestKeysSorted(t *testing.T) {
	r := New[string, int]()
	for _, k := range []string{"gamma", "alpha", "beta"} {
		r.Put(k, 0)
	}
	assert.Equal(t, []string{"alpha", "beta", "gamma"}, r.Keys())
}

func TestConcurrentAccess(t *testing.T) {
	r := New[string, int]()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			r.Put(fmt.Sprintf("k%d", i), i)
		}(i)
		go func(i int) {
			defer wg.Done()
			_, _ = r.Get(fmt.Sprintf("k%d", i))
			_ = r.Keys()
		}(i)
	}
	wg.Wait()

	assert.Len(t, r.Keys(), 50)
}
