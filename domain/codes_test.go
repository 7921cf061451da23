package domain

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodeSets(t *testing.T) {
	assert.Len(t, Reporters, 28)
	assert.Len(t, Partners, 9)
	assert.Len(t, Products, 5)

	assert.Equal(t, "Germany", Reporters["DE"])
	assert.Equal(t, "China", Partners["CN"])
	assert.Equal(t, "pine", Products["440711"])
}

func TestVolumeMultiplier(t *testing.T) {
	assert.Equal(t, 0.1888, VolumeMultiplier("440711"))
	assert.Equal(t, 0.2128, VolumeMultiplier("440712"))
	assert.Equal(t, 0.2, VolumeMultiplier("440719"))
	assert.Equal(t, 0.2, VolumeMultiplier("999999"))
}

func TestMonths(t *testing.T) {
	months := Months()
	assert.Len(t, months, 16)
	assert.Equal(t, "2024-01", months[0])
	assert.Equal(t, "2024-08", months[7])
	assert.Equal(t, "2025-01", months[8])
	assert.Equal(t, "2025-08", months[15])
	assert.True(t, sort.StringsAreSorted(months))
}

func TestIsKeyField(t *testing.T) {
	for _, f := range KeyFields {
		assert.True(t, IsKeyField(f), f)
	}
	assert.False(t, IsKeyField("obs_value"))
	assert.False(t, IsKeyField("REPORTER"))
	assert.False(t, IsKeyField(""))
}

func TestSortedCodes(t *testing.T) {
	codes := SortedCodes(Partners)
	assert.Len(t, codes, 9)
	assert.True(t, sort.StringsAreSorted(codes))
	assert.Equal(t, "AE", codes[0])
}
