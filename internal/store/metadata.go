package store

import (
	"fmt"
	"os"

	"floorplan-api/internal/logger"

	"github.com/paulmach/orb/geojson"
)

// 文档注释：楼栋元数据文档，既有楼栋轮廓的要素集合，properties.BID 为查找键
// 背景：摄取时优先采用其几何与描述信息（名称/高度/层数/户数）覆盖解析产物
// 约束：对本服务只读；文件缺失按空集合处理，不视为错误
type MetadataStore struct {
	path string
}

func NewMetadataStore(path string) *MetadataStore {
	return &MetadataStore{path: path}
}

func (s *MetadataStore) load() (*geojson.FeatureCollection, error) {
	b, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return geojson.NewFeatureCollection(), nil
		}
		return nil, fmt.Errorf("%w: read %s: %v", ErrPersistence, s.path, err)
	}
	fc, err := geojson.UnmarshalFeatureCollection(b)
	if err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", ErrPersistence, s.path, err)
	}
	return fc, nil
}

// FindByBID：按 BID 查找元数据要素；未命中返回 (nil, nil)
func (s *MetadataStore) FindByBID(bid string) (*geojson.Feature, error) {
	fc, err := s.load()
	if err != nil {
		return nil, err
	}
	for _, f := range fc.Features {
		if BIDString(f.Properties["BID"]) == bid {
			logger.L().Debug("metadata_hit", "bid", bid)
			return f, nil
		}
	}
	return nil, nil
}
