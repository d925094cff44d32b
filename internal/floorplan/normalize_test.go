package floorplan

import (
	"strings"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeUnitSquare(t *testing.T) {
	building := Feature{Rings: rect(100, 30, 102, 32)}
	rooms := []Feature{
		{Rings: rect(100, 30, 101, 31), Props: map[string]string{"id": "r1", "name": "Kitchen", "room_type": "kitchen"}},
		{Rings: rect(101, 31, 102, 32), Props: map[string]string{"room_id": "r2"}},
	}
	layout, err := Normalize(building, rooms)
	require.NoError(t, err)
	require.Len(t, layout.Rooms, 2)
	assert.Equal(t, BBox{100, 30, 102, 32}, layout.Bounds)

	r1 := layout.Rooms[0]
	assert.Equal(t, "r1", r1.ID)
	assert.Equal(t, "Kitchen", r1.Name)
	assert.Equal(t, "kitchen", r1.Type)
	assert.InDelta(t, 0, r1.Bounds.X, 1e-9)
	assert.InDelta(t, 0, r1.Bounds.Y, 1e-9)
	assert.InDelta(t, 0.5, r1.Bounds.Width, 1e-9)
	assert.InDelta(t, 0.5, r1.Bounds.Height, 1e-9)
	assert.InDelta(t, 0.25, r1.PNIU.X, 1e-9)
	assert.InDelta(t, 0.25, r1.PNIU.Y, 1e-9)
	assert.Nil(t, r1.Polygon)

	r2 := layout.Rooms[1]
	assert.Equal(t, "r2", r2.ID)
	assert.InDelta(t, 0.5, r2.Bounds.X, 1e-9)
	assert.InDelta(t, 0.5, r2.Bounds.Y, 1e-9)
}

func TestNormalizeBoundsWithinUnitRange(t *testing.T) {
	building := Feature{Rings: rect(-10, -10, 10, 10)}
	rooms := []Feature{
		{Rings: rect(-10, -10, -2, 3)},
		{Rings: rect(0, 0, 10, 10)},
		{Rings: rect(-5, -5, 5, 5)},
	}
	layout, err := Normalize(building, rooms)
	require.NoError(t, err)
	const eps = 1e-9
	for _, r := range layout.Rooms {
		assert.GreaterOrEqual(t, r.Bounds.X, 0.0)
		assert.GreaterOrEqual(t, r.Bounds.Y, 0.0)
		assert.GreaterOrEqual(t, r.Bounds.Width, 0.0)
		assert.GreaterOrEqual(t, r.Bounds.Height, 0.0)
		assert.LessOrEqual(t, r.Bounds.X+r.Bounds.Width, 1.0+eps)
		assert.LessOrEqual(t, r.Bounds.Y+r.Bounds.Height, 1.0+eps)
	}
}

func TestNormalizeSynthesizedFallbacks(t *testing.T) {
	building := Feature{Rings: rect(0, 0, 1, 1)}
	rooms := []Feature{{Rings: rect(0, 0, 0.5, 0.5), Props: map[string]string{}}}
	layout, err := Normalize(building, rooms)
	require.NoError(t, err)
	require.Len(t, layout.Rooms, 1)
	r := layout.Rooms[0]
	assert.True(t, strings.HasPrefix(r.ID, "room-"), "id=%s", r.ID)
	assert.Equal(t, "Room 1", r.Name)
	assert.Equal(t, "room", r.Type)
}

func TestNormalizeDegenerateWidth(t *testing.T) {
	// 楼栋外环所有经度相同：包围盒宽度为零
	building := Feature{Rings: []orb.Ring{{{5, 0}, {5, 1}, {5, 2}, {5, 0}}}}
	_, err := Normalize(building, []Feature{{Rings: rect(0, 0, 1, 1)}})
	assert.ErrorIs(t, err, ErrDegenerateBounds)
}

func TestNormalizeDegenerateHeight(t *testing.T) {
	building := Feature{Rings: []orb.Ring{{{0, 7}, {1, 7}, {2, 7}, {0, 7}}}}
	_, err := Normalize(building, nil)
	assert.ErrorIs(t, err, ErrDegenerateBounds)
}

func TestNormalizeZeroRoomsYieldsEmptyArray(t *testing.T) {
	building := Feature{Rings: rect(0, 0, 1, 1)}
	layout, err := Normalize(building, nil)
	require.NoError(t, err)
	assert.NotNil(t, layout.Rooms)
	assert.Len(t, layout.Rooms, 0)
}

func TestNormalizeTypePriorityOrder(t *testing.T) {
	building := Feature{Rings: rect(0, 0, 1, 1)}
	rooms := []Feature{
		{Rings: rect(0, 0, 0.5, 0.5), Props: map[string]string{"room_type": "Bedroom", "type": "room", "category": "x"}},
		{Rings: rect(0, 0, 0.5, 0.5), Props: map[string]string{"type": "Bath"}},
		{Rings: rect(0, 0, 0.5, 0.5), Props: map[string]string{"category": "Storage"}},
	}
	layout, err := Normalize(building, rooms)
	require.NoError(t, err)
	assert.Equal(t, "bedroom", layout.Rooms[0].Type)
	assert.Equal(t, "bath", layout.Rooms[1].Type)
	assert.Equal(t, "storage", layout.Rooms[2].Type)
}
