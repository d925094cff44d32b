package floorplan

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPropCaseInsensitive(t *testing.T) {
	f := Feature{Props: map[string]string{"TYPE": "room", "Name": "Kitchen"}}

	v, ok := f.Prop("type")
	assert.True(t, ok)
	assert.Equal(t, "room", v)

	v, ok = f.Prop("NAME")
	assert.True(t, ok)
	assert.Equal(t, "Kitchen", v)

	_, ok = f.Prop("category")
	assert.False(t, ok)
}

func TestPropExactMatchWins(t *testing.T) {
	f := Feature{Props: map[string]string{"type": "exact", "TYPE": "loud"}}
	v, ok := f.Prop("type")
	assert.True(t, ok)
	assert.Equal(t, "exact", v)
}

func TestPropDeterministicAcrossCalls(t *testing.T) {
	// 同一 map 多次查询必须得到同一候选键的值
	f := Feature{Props: map[string]string{"Type": "a", "tYpe": "b", "TYPE": "c"}}
	first, ok := f.Prop("typ" + "e")
	assert.True(t, ok)
	for i := 0; i < 50; i++ {
		v, ok := f.Prop("type")
		assert.True(t, ok)
		assert.Equal(t, first, v)
	}
}

func TestPropEmptyMap(t *testing.T) {
	var f Feature
	_, ok := f.Prop("type")
	assert.False(t, ok)
}
