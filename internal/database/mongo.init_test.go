package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

type indexedModel struct {
	ID        string `bson:"_id,omitempty"`
	Mou       string `bson:"mouNumber" index:"unique"`
	Owner     string `bson:"cssValue" index:"single:1,compound:owner_created"`
	Kind      string `bson:"kind" index:"compound:owner_kind_unique"`
	CreatedAt int64  `bson:"createdAt" index:"single:-1,compound:owner_created"`
	Other     string `bson:"other,omitempty"`
	Skip      string `bson:"-" index:"single:1"`
}

func TestBuildIndexSpecs(t *testing.T) {
	specs := buildIndexSpecs(indexedModel{})
	byName := map[string]indexSpec{}
	for _, s := range specs {
		byName[s.Name] = s
	}

	require.Contains(t, byName, "mouNumber_unique")
	assert.True(t, byName["mouNumber_unique"].Unique)

	require.Contains(t, byName, "createdAt_single")
	assert.Equal(t, bson.D{{Key: "createdAt", Value: -1}}, byName["createdAt_single"].Keys)

	require.Contains(t, byName, "owner_created")
	assert.Equal(t, bson.D{{Key: "cssValue", Value: 1}, {Key: "createdAt", Value: 1}}, byName["owner_created"].Keys)
	assert.False(t, byName["owner_created"].Unique)

	require.Contains(t, byName, "owner_kind_unique")
	assert.True(t, byName["owner_kind_unique"].Unique)

	assert.NotContains(t, byName, "-_single", "field bson:\"-\" phải bị bỏ qua")
}
