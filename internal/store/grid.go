package store

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"floorplan-api/internal/floorplan"
	"floorplan-api/internal/logger"
)

// 文档注释：网格布局存量文档，键形如 "{BID}_floor_{N}"
// 背景：网格编辑器的历史数据；摄取流水线在无几何房间时以其为回退来源
// 约束：对流水线只读；编辑器端点与离线导入的写入复用原子替换纪律
type GridStore struct {
	path string
	mu   sync.Mutex
}

func NewGridStore(path string) *GridStore {
	return &GridStore{path: path}
}

// Load：整份文档读入内存；文件缺失视为空文档
func (s *GridStore) Load() (map[string]floorplan.GridFloor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *GridStore) load() (map[string]floorplan.GridFloor, error) {
	b, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]floorplan.GridFloor{}, nil
		}
		return nil, fmt.Errorf("%w: read %s: %v", ErrPersistence, s.path, err)
	}
	var doc map[string]floorplan.GridFloor
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", ErrPersistence, s.path, err)
	}
	if doc == nil {
		doc = map[string]floorplan.GridFloor{}
	}
	return doc, nil
}

// Get：读取单层；未命中返回 (zero, false, nil)
func (s *GridStore) Get(key string) (floorplan.GridFloor, bool, error) {
	doc, err := s.Load()
	if err != nil {
		return floorplan.GridFloor{}, false, err
	}
	fl, ok := doc[key]
	return fl, ok, err
}

// Put：写入单层并整份回写
func (s *GridStore) Put(key string, fl floorplan.GridFloor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.load()
	if err != nil {
		return err
	}
	doc[key] = fl
	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode: %v", ErrPersistence, err)
	}
	if err := writeAtomic(s.path, b); err != nil {
		return fmt.Errorf("%w: write %s: %v", ErrPersistence, s.path, err)
	}
	logger.L().Debug("grid_put", "key", key, "floors", len(doc))
	return nil
}
