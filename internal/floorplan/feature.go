package floorplan

import (
	"sort"
	"strings"

	"github.com/paulmach/orb"
)

// Feature：解析得到的几何要素；Rings 第一环为外环，属性为 DBF 的字符串键值
// 背景：来源数据无规范 schema，属性名大小写与拼写各异，语义解释留给分类与归一化阶段
type Feature struct {
	Rings []orb.Ring
	Props map[string]string
}

// Prop：按键名大小写不敏感查找属性
// 背景：同一语义字段在不同制图来源下常见 Type/TYPE/featureType 等变体
// 约束：不修改输入；键按字典序扫描，保证同一 map 下结果确定
func (f Feature) Prop(key string) (string, bool) {
	if len(f.Props) == 0 {
		return "", false
	}
	if v, ok := f.Props[key]; ok {
		return v, true
	}
	keys := make([]string, 0, len(f.Props))
	for k := range f.Props {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if strings.EqualFold(k, key) {
			return f.Props[k], true
		}
	}
	return "", false
}

// OuterRing：外环；几何为空时返回 nil
func (f Feature) OuterRing() orb.Ring {
	if len(f.Rings) == 0 {
		return nil
	}
	return f.Rings[0]
}

// Polygon：转为 orb 多边形视图（不复制坐标）
func (f Feature) Polygon() orb.Polygon {
	return orb.Polygon(f.Rings)
}
