package store

import (
	"path/filepath"
	"testing"

	"floorplan-api/internal/floorplan"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGridStoreMissingFile(t *testing.T) {
	s := NewGridStore(filepath.Join(t.TempDir(), "floorlayouts.json"))
	doc, err := s.Load()
	require.NoError(t, err)
	assert.Len(t, doc, 0)

	_, ok, err := s.Get("77_floor_1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGridStorePutGetRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "floorlayouts.json")
	s := NewGridStore(path)

	fl := floorplan.GridFloor{Apartments: map[string]floorplan.GridApartment{
		"a1": {
			Grid: floorplan.GridSize{Cols: 4, Rows: 3},
			Rooms: []floorplan.GridRoom{
				{ID: "r1", Type: "kitchen", Name: "K", X: 0, Y: 0, Width: 2, Height: 1},
			},
		},
	}}
	require.NoError(t, s.Put("77_floor_1", fl))
	require.NoError(t, s.Put("77_floor_2", floorplan.GridFloor{}))

	// 重新打开读取，验证落盘而非仅内存
	got, ok, err := NewGridStore(path).Get("77_floor_1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Contains(t, got.Apartments, "a1")
	a := got.Apartments["a1"]
	assert.InDelta(t, 4, a.Grid.Cols, 1e-9)
	require.Len(t, a.Rooms, 1)
	assert.Equal(t, "kitchen", a.Rooms[0].Type)

	doc, err := s.Load()
	require.NoError(t, err)
	assert.Len(t, doc, 2)
}

func TestGridStorePutOverwritesFloor(t *testing.T) {
	s := NewGridStore(filepath.Join(t.TempDir(), "floorlayouts.json"))
	require.NoError(t, s.Put("9_floor_1", floorplan.GridFloor{Apartments: map[string]floorplan.GridApartment{
		"a": {Rooms: []floorplan.GridRoom{{ID: "old"}}},
	}}))
	require.NoError(t, s.Put("9_floor_1", floorplan.GridFloor{Apartments: map[string]floorplan.GridApartment{
		"a": {Rooms: []floorplan.GridRoom{{ID: "new"}}},
	}}))

	got, ok, err := s.Get("9_floor_1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "new", got.Apartments["a"].Rooms[0].ID)
}
