// 包 store：楼层布局的持久化存取层，含文件与 PostgreSQL 两种后端及只读外部文档
package store

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/paulmach/orb/geojson"
)

// ErrPersistence：存储读写失败；入口层据此映射为 5xx
var ErrPersistence = errors.New("layout store failure")

// LayoutStore：按 BID 维护楼栋布局记录的仓储契约
// 背景：读-改-写在共享文档上不具原子性，写入纪律由实现承担：
// 文件后端以互斥串行化写入并用临时文件+重命名原子替换；PG 后端依赖行级 upsert
// 约束：同一 BID 至多一条记录；Get 未命中返回 (nil, nil)
type LayoutStore interface {
	Get(ctx context.Context, bid string) (*geojson.Feature, error)
	All(ctx context.Context) (*geojson.FeatureCollection, error)
	Upsert(ctx context.Context, bid string, f *geojson.Feature) error
}

// BIDString：properties.BID 可能以字符串或数字落库，统一成文本键比较
func BIDString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		if t == math.Trunc(t) && !math.IsInf(t, 0) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	default:
		return fmt.Sprint(t)
	}
}
