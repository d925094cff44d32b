package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"floorplan-api/internal/logger"

	"github.com/paulmach/orb/geojson"
)

// 文档注释：文件后端的布局仓储，整份 GeoJSON 要素集合常驻单文件
// 背景：部署形态以单进程文件存储为主；读-改-写全程持锁串行化，避免并发摄取互相吞写
// 约束：写入走临时文件+重命名，读取方不会看到半写状态；锁粒度为整份文档（文档即写入单位）
type FileLayoutStore struct {
	path string
	mu   sync.Mutex
}

func NewFileLayoutStore(path string) *FileLayoutStore {
	return &FileLayoutStore{path: path}
}

// load：读取整份集合；文件缺失视为空集合（首次运行）
func (s *FileLayoutStore) load() (*geojson.FeatureCollection, error) {
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

func (s *FileLayoutStore) Get(_ context.Context, bid string) (*geojson.Feature, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fc, err := s.load()
	if err != nil {
		return nil, err
	}
	for _, f := range fc.Features {
		if BIDString(f.Properties["BID"]) == bid {
			return f, nil
		}
	}
	return nil, nil
}

func (s *FileLayoutStore) All(_ context.Context) (*geojson.FeatureCollection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// Upsert：同 BID 原地替换，否则追加；整份集合回写
func (s *FileLayoutStore) Upsert(_ context.Context, bid string, feat *geojson.Feature) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	fc, err := s.load()
	if err != nil {
		return err
	}
	replaced := false
	for i, f := range fc.Features {
		if BIDString(f.Properties["BID"]) == bid {
			fc.Features[i] = feat
			replaced = true
			break
		}
	}
	if !replaced {
		fc.Append(feat)
	}
	b, err := json.Marshal(fc)
	if err != nil {
		return fmt.Errorf("%w: encode: %v", ErrPersistence, err)
	}
	if err := writeAtomic(s.path, b); err != nil {
		return fmt.Errorf("%w: write %s: %v", ErrPersistence, s.path, err)
	}
	logger.L().Debug("layout_upsert_written", "bid", bid, "replaced", replaced, "records", len(fc.Features))
	return nil
}

// writeAtomic：临时文件落盘后重命名替换，避免读取方观察到半写文件
func writeAtomic(path string, b []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
