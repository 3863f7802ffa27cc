package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestSuburbIDFilterBareNameMatchesAnyState(t *testing.T) {
	cond, ok := suburbIDFilter("footscray")
	require.True(t, ok)
	assert.Equal(t, bson.M{"$regex": "-footscray$", "$options": "i"}, cond)
}

func TestSuburbIDFilterQualifiedIDMatchesExactly(t *testing.T) {
	cond, ok := suburbIDFilter("VIC-footscray")
	require.True(t, ok)
	assert.Equal(t, bson.M{"$regex": "^VIC-footscray$", "$options": "i"}, cond)
}

func TestSuburbIDFilterEscapesRegexMetacharacters(t *testing.T) {
	cond, ok := suburbIDFilter("st.kilda")
	require.True(t, ok)
	assert.Equal(t, "-st\\.kilda$", cond["$regex"])
}

func TestSuburbIDFilterEmptyInput(t *testing.T) {
	_, ok := suburbIDFilter("")
	assert.False(t, ok)

	_, ok = suburbIDFilter("   ")
	assert.False(t, ok)
}

func TestSearchQueryCombinesRegionAndPriceRange(t *testing.T) {
	query := searchQuery("footscray", 500000, 900000)

	assert.Equal(t, bson.M{"$gte": 500000.0, "$lte": 900000.0}, query["price"])
	assert.Contains(t, query, "suburbId")
}

func TestSearchQueryWithoutRegion(t *testing.T) {
	query := searchQuery("", 0, 1000000)

	assert.NotContains(t, query, "suburbId")
	assert.Equal(t, bson.M{"$gte": 0.0, "$lte": 1000000.0}, query["price"])
}
