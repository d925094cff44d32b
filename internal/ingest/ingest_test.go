package ingest

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"floorplan-api/internal/floorplan"
	"floorplan-api/internal/store"

	shp "github.com/jonas-p/go-shp"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type archFeature struct {
	minX, minY, maxX, maxY float64
	typ, name              string
}

// buildArchive：产出内存中的 zip shapefile 上传物
func buildArchive(t *testing.T, feats []archFeature) []byte {
	t.Helper()
	dir := t.TempDir()
	w, err := shp.Create(filepath.Join(dir, "plan.shp"), shp.POLYGON)
	require.NoError(t, err)
	w.SetFields([]shp.Field{
		shp.StringField("type", 32),
		shp.StringField("name", 64),
	})
	for i, f := range feats {
		pts := []shp.Point{
			{X: f.minX, Y: f.minY}, {X: f.maxX, Y: f.minY},
			{X: f.maxX, Y: f.maxY}, {X: f.minX, Y: f.maxY}, {X: f.minX, Y: f.minY},
		}
		w.Write(&shp.Polygon{
			Box:       shp.Box{MinX: f.minX, MinY: f.minY, MaxX: f.maxX, MaxY: f.maxY},
			NumParts:  1,
			NumPoints: int32(len(pts)),
			Parts:     []int32{0},
			Points:    pts,
		})
		w.WriteAttribute(i, 0, f.typ)
		w.WriteAttribute(i, 1, f.name)
	}
	w.Close()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range []string{"plan.shp", "plan.shx", "plan.dbf"} {
		b, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err)
		zf, err := zw.Create(name)
		require.NoError(t, err)
		_, err = zf.Write(b)
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func newPipeline(t *testing.T) (*Pipeline, string) {
	t.Helper()
	dir := t.TempDir()
	return &Pipeline{
		Layouts:  store.NewFileLayoutStore(filepath.Join(dir, "layouts.json")),
		Grid:     store.NewGridStore(filepath.Join(dir, "floorlayouts.json")),
		Metadata: store.NewMetadataStore(filepath.Join(dir, "buildings.json")),
	}, dir
}

func planArchive(t *testing.T) []byte {
	return buildArchive(t, []archFeature{
		{0, 0, 10, 10, "building", "Tower A"},
		{1, 1, 3, 3, "room", "Kitchen"},
		{4, 4, 8, 8, "room", "Bedroom"},
	})
}

func TestRunFullIngest(t *testing.T) {
	p, _ := newPipeline(t)
	ctx := context.Background()

	layout, err := p.Run(ctx, "77", planArchive(t))
	require.NoError(t, err)
	require.Len(t, layout.Rooms, 2)
	assert.Equal(t, floorplan.BBox{0, 0, 10, 10}, layout.Bounds)
	for _, r := range layout.Rooms {
		assert.GreaterOrEqual(t, r.Bounds.X, 0.0)
		assert.LessOrEqual(t, r.Bounds.X+r.Bounds.Width, 1.0)
		assert.GreaterOrEqual(t, r.Bounds.Y, 0.0)
		assert.LessOrEqual(t, r.Bounds.Y+r.Bounds.Height, 1.0)
	}

	feat, err := p.Layouts.Get(ctx, "77")
	require.NoError(t, err)
	require.NotNil(t, feat)
	rooms, ok := feat.Properties["rooms"].([]interface{})
	require.True(t, ok)
	assert.Len(t, rooms, 2)
	assert.Nil(t, feat.Properties["buildingDetails"])
}

func TestRunIdempotentReingest(t *testing.T) {
	p, _ := newPipeline(t)
	ctx := context.Background()
	archive := planArchive(t)

	_, err := p.Run(ctx, "77", archive)
	require.NoError(t, err)
	_, err = p.Run(ctx, "77", archive)
	require.NoError(t, err)

	fc, err := p.Layouts.All(ctx)
	require.NoError(t, err)
	assert.Len(t, fc.Features, 1)
}

func TestRunUpsertReplacesRooms(t *testing.T) {
	p, _ := newPipeline(t)
	ctx := context.Background()

	_, err := p.Run(ctx, "77", planArchive(t))
	require.NoError(t, err)
	_, err = p.Run(ctx, "77", buildArchive(t, []archFeature{
		{0, 0, 10, 10, "building", "Tower A"},
		{2, 2, 5, 5, "room", "Studio"},
	}))
	require.NoError(t, err)

	feat, err := p.Layouts.Get(ctx, "77")
	require.NoError(t, err)
	require.NotNil(t, feat)
	rooms, ok := feat.Properties["rooms"].([]interface{})
	require.True(t, ok)
	assert.Len(t, rooms, 1)

	fc, err := p.Layouts.All(ctx)
	require.NoError(t, err)
	assert.Len(t, fc.Features, 1)
}

func TestRunFallbackSynthesis(t *testing.T) {
	p, _ := newPipeline(t)
	ctx := context.Background()

	// 网格存量：55 号楼 2 层有两间房
	require.NoError(t, p.Grid.Put("55_floor_2", floorplan.GridFloor{Apartments: map[string]floorplan.GridApartment{
		"a1": {
			Grid: floorplan.GridSize{Cols: 2, Rows: 2},
			Rooms: []floorplan.GridRoom{
				{ID: "g1", X: 0, Y: 0, Width: 1, Height: 1},
				{ID: "g2", X: 1, Y: 1, Width: 1, Height: 1},
			},
		},
	}}))

	// 压缩包只有楼栋轮廓，零房间触发回退
	layout, err := p.Run(ctx, "55", buildArchive(t, []archFeature{
		{0, 0, 10, 10, "building", "Tower B"},
	}))
	require.NoError(t, err)
	require.Len(t, layout.Rooms, 2)
	assert.Equal(t, "g1", layout.Rooms[0].ID)
	assert.InDelta(t, 0.5, layout.Rooms[0].Bounds.Width, 1e-9)
}

func TestRunFallbackWithoutGridYieldsEmpty(t *testing.T) {
	p, _ := newPipeline(t)
	layout, err := p.Run(context.Background(), "55", buildArchive(t, []archFeature{
		{0, 0, 10, 10, "building", "Tower B"},
	}))
	require.NoError(t, err)
	assert.NotNil(t, layout.Rooms)
	assert.Len(t, layout.Rooms, 0)
}

func TestRunMetadataOverride(t *testing.T) {
	p, dir := newPipeline(t)
	ctx := context.Background()

	meta := geojson.NewFeature(orb.Polygon{{{10, 20}, {30, 20}, {30, 40}, {10, 40}, {10, 20}}})
	meta.Properties["BID"] = "77"
	meta.Properties["NAME"] = "Registry Tower"
	meta.Properties["height"] = 99.5
	meta.Properties["floors"] = 12
	fc := geojson.NewFeatureCollection()
	fc.Append(meta)
	b, err := json.Marshal(fc)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "buildings.json"), b, 0o644))

	layout, err := p.Run(ctx, "77", planArchive(t))
	require.NoError(t, err)
	// 元数据轮廓覆盖解析包围盒
	assert.Equal(t, floorplan.BBox{10, 20, 30, 40}, layout.Bounds)

	feat, err := p.Layouts.Get(ctx, "77")
	require.NoError(t, err)
	require.NotNil(t, feat)
	details, ok := feat.Properties["buildingDetails"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "Registry Tower", details["name"])
}

func TestRunBadArchiveLeavesStoreUntouched(t *testing.T) {
	p, _ := newPipeline(t)
	ctx := context.Background()

	_, err := p.Run(ctx, "77", []byte("garbage"))
	require.Error(t, err)
	assert.True(t, ClientError(err))
	assert.Equal(t, "archive_parse", Kind(err))

	fc, err := p.Layouts.All(ctx)
	require.NoError(t, err)
	assert.Len(t, fc.Features, 0)
}

func TestKindAndClientError(t *testing.T) {
	cases := []struct {
		err    error
		kind   string
		client bool
	}{
		{floorplan.ErrMissingBuilding, "missing_building", true},
		{floorplan.ErrDegenerateBounds, "degenerate_bounds", true},
		{store.ErrPersistence, "persistence", false},
		{context.Canceled, "internal", false},
	}
	for _, c := range cases {
		assert.Equal(t, c.kind, Kind(c.err))
		assert.Equal(t, c.client, ClientError(c.err))
	}
}
