// 包 ingest：楼层布局摄取流水线，串联装载、分类、归一化、回退合成与落库
package ingest

import (
	"context"
	"errors"
	"time"

	"floorplan-api/internal/floorplan"
	"floorplan-api/internal/logger"
	"floorplan-api/internal/metrics"
	"floorplan-api/internal/shapefile"
	"floorplan-api/internal/store"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/redis/go-redis/v9"
)

// Pipeline：一次摄取所需的全部依赖；每个请求独立执行，错误在请求内收敛
type Pipeline struct {
	Layouts  store.LayoutStore
	Grid     *store.GridStore
	Metadata *store.MetadataStore
	Cache    *redis.Client
}

// 文档注释：执行完整摄取
// 背景：压缩包 → 要素 → 楼栋/房间划分 →（几何归一化 | 网格回退合成）→ 元数据合并 → upsert
// 约束：全程无内部重试；任一阶段失败整次请求失败，存量记录不动
func (p *Pipeline) Run(ctx context.Context, bid string, archive []byte) (*floorplan.Layout, error) {
	t0 := time.Now()
	metrics.IngestTotal.Inc()
	layout, err := p.run(ctx, bid, archive)
	if err != nil {
		metrics.IngestFailuresTotal.WithLabelValues(Kind(err)).Inc()
		return nil, err
	}
	metrics.IngestDurationMs.Observe(float64(time.Since(t0).Milliseconds()))
	return layout, nil
}

func (p *Pipeline) run(ctx context.Context, bid string, archive []byte) (*floorplan.Layout, error) {
	feats, err := shapefile.Load(archive)
	if err != nil {
		return nil, err
	}
	building, roomFeats, err := floorplan.Classify(feats)
	if err != nil {
		return nil, err
	}
	layout, err := floorplan.Normalize(building, roomFeats)
	if err != nil {
		return nil, err
	}

	// 回退合成：仅在压缩包产出零房间时启用
	if len(layout.Rooms) == 0 {
		metrics.FallbackSynthTotal.Inc()
		doc, err := p.Grid.Load()
		if err != nil {
			return nil, err
		}
		layout.Rooms = floorplan.SynthesizeRooms(bid, doc)
		logger.L().Info("fallback_synthesis", "bid", bid, "rooms", len(layout.Rooms))
	}

	if err := p.upsert(ctx, bid, layout, building); err != nil {
		return nil, err
	}
	return layout, nil
}

// upsert：合并元数据并落库
// 背景：元数据库中的既有轮廓优先于解析几何；描述字段逐项可空透传
func (p *Pipeline) upsert(ctx context.Context, bid string, layout *floorplan.Layout, building floorplan.Feature) error {
	meta, err := p.Metadata.FindByBID(bid)
	if err != nil {
		return err
	}
	var geometry orb.Geometry = building.Polygon()
	var details *floorplan.BuildingDetails
	if meta != nil {
		details = &floorplan.BuildingDetails{
			Name:            meta.Properties["NAME"],
			Height:          meta.Properties["height"],
			Floors:          meta.Properties["floors"],
			ApartmentCounts: meta.Properties["apartmentCounts"],
		}
		if meta.Geometry != nil {
			b := meta.Geometry.Bound()
			layout.Bounds = floorplan.BBox{b.Min[0], b.Min[1], b.Max[0], b.Max[1]}
			geometry = meta.Geometry
		}
	}

	feat := geojson.NewFeature(geometry)
	feat.Properties["BID"] = bid
	feat.Properties["bounds"] = layout.Bounds
	feat.Properties["rooms"] = layout.Rooms
	if details != nil {
		feat.Properties["buildingDetails"] = details
	} else {
		feat.Properties["buildingDetails"] = nil
	}

	if err := p.Layouts.Upsert(ctx, bid, feat); err != nil {
		return err
	}
	metrics.UpsertsTotal.Inc()
	if p.Cache != nil {
		_ = p.Cache.Del(ctx, "layout:"+bid).Err()
	}
	logger.L().Info("ingest_done", "bid", bid, "rooms", len(layout.Rooms), "meta", meta != nil)
	return nil
}

// Kind：错误种类标签，供指标与入口层响应码使用
func Kind(err error) string {
	switch {
	case errors.Is(err, shapefile.ErrArchiveParse):
		return "archive_parse"
	case errors.Is(err, shapefile.ErrEmptyFeatureSet):
		return "empty_feature_set"
	case errors.Is(err, floorplan.ErrMissingBuilding):
		return "missing_building"
	case errors.Is(err, floorplan.ErrDegenerateBounds):
		return "degenerate_bounds"
	case errors.Is(err, store.ErrPersistence):
		return "persistence"
	default:
		return "internal"
	}
}

// ClientError：客户端可纠正的输入问题（上传内容本身不合格）
func ClientError(err error) bool {
	switch Kind(err) {
	case "archive_parse", "empty_feature_set", "missing_building", "degenerate_bounds":
		return true
	}
	return false
}
