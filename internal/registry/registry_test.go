package registry

import (
	"errors"
	"testing"

	"consult_crm/internal/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_RegisterAndGet(t *testing.T) {
	r := NewRegistry[int]()

	isNew, err := r.Register("a", 1)
	require.NoError(t, err)
	assert.True(t, isNew)

	isNew, err = r.Register("a", 2)
	require.NoError(t, err)
	assert.False(t, isNew, "ghi đè phải trả về isNew=false")

	v, ok := r.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 2, v)

	_, err = r.Register("", 3)
	assert.True(t, errors.Is(err, common.ErrRequiredField))
}

func TestRegistry_MustGetMissing(t *testing.T) {
	r := NewRegistry[string]()
	_, err := r.MustGet("nope")
	assert.True(t, errors.Is(err, common.ErrNotFound))
}

func TestRegistry_GetOrCreateOnlyOnce(t *testing.T) {
	r := NewRegistry[int]()
	calls := 0
	create := func() (int, error) {
		calls++
		return 42, nil
	}
	v1, err := r.GetOrCreate("x", create)
	require.NoError(t, err)
	v2, err := r.GetOrCreate("x", create)
	require.NoError(t, err)
	assert.Equal(t, 42, v1)
	assert.Equal(t, v1, v2)
	assert.Equal(t, 1, calls)
}
