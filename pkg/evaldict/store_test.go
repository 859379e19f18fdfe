package evaldict_test

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lwmacct/251207-go-pkg-evaldict/pkg/evaldict"
)

func TestStore(t *testing.T) {
	s := evaldict.NewStore()
	s.Set("one", "1")
	s.Set("two", 2)
	s.Set("three", "{one}")

	assert.Equal(t, 3, s.Len())
	assert.True(t, s.Contains("two"))

	val, err := s.Get("three")
	require.NoError(t, err)
	assert.Equal(t, "{one}", val, "store returns raw values")

	s.Set("one", "uno")
	assert.Equal(t, []string{"one", "two", "three"}, slices.Collect(s.Keys()), "overwrite keeps position")

	require.NoError(t, s.Delete("two"))
	assert.Equal(t, []string{"one", "three"}, slices.Collect(s.Keys()))
	assert.False(t, s.Contains("two"))

	_, err = s.Get("two")
	assert.ErrorIs(t, err, evaldict.ErrKeyNotFound)
	assert.ErrorIs(t, s.Delete("two"), evaldict.ErrKeyNotFound)

	s.Set("two", "again")
	assert.Equal(t, []string{"one", "three", "two"}, slices.Collect(s.Keys()))
}

func TestStore_KeysEarlyStop(t *testing.T) {
	s := evaldict.NewStore()
	for _, k := range []string{"a", "b", "c"} {
		s.Set(k, k)
	}

	var seen []string
	for k := range s.Keys() {
		seen = append(seen, k)
		if k == "b" {
			break
		}
	}
	assert.Equal(t, []string{"a", "b"}, seen)
}
