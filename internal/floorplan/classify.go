package floorplan

import (
	"floorplan-api/internal/logger"
	"math"
	"strings"

	"github.com/paulmach/orb/planar"
)

// 文档注释：要素分类，从要素集中选出楼栋多边形与房间多边形集合
// 背景：来源数据没有规范 schema，只能按显式标注优先、面积兜底的启发式规则划分
// 约束：显式标注按输入顺序首个命中；面积兜底在并列时同样取输入顺序首个，保证可重复

// semanticType：要素语义类型，type 优先，featureType 兜底，统一小写；两者皆无返回空串
func semanticType(f Feature) string {
	if v, ok := f.Prop("type"); ok {
		return strings.ToLower(strings.TrimSpace(v))
	}
	if v, ok := f.Prop("featureType"); ok {
		return strings.ToLower(strings.TrimSpace(v))
	}
	return ""
}

// featureArea：要素的平面几何面积（经纬坐标直接按平面计算，取绝对值）
// 约束：无法计算（环缺失或顶点不足）按 0 处理，不中断分类
func featureArea(f Feature) float64 {
	if len(f.Rings) == 0 || len(f.Rings[0]) < 3 {
		return 0
	}
	a := planar.Area(f.Polygon())
	if math.IsNaN(a) || math.IsInf(a, 0) {
		return 0
	}
	return math.Abs(a)
}

// Classify：划分楼栋与房间
// 返回：楼栋要素、房间要素列表；要素集为空时返回 ErrMissingBuilding
func Classify(feats []Feature) (Feature, []Feature, error) {
	if len(feats) == 0 {
		return Feature{}, nil, ErrMissingBuilding
	}

	// 楼栋：显式标注优先，否则取最大面积（并列取首个）
	buildingIdx := -1
	for i, f := range feats {
		if semanticType(f) == "building" {
			buildingIdx = i
			break
		}
	}
	if buildingIdx == -1 {
		best := -1.0
		for i, f := range feats {
			if a := featureArea(f); a > best {
				best = a
				buildingIdx = i
			}
		}
	}
	if buildingIdx == -1 {
		return Feature{}, nil, ErrMissingBuilding
	}

	// 房间：非楼栋要素中，显式 room、带其他类型标注、或无标注者均视为房间
	var rooms []Feature
	for i, f := range feats {
		if i == buildingIdx {
			continue
		}
		st := semanticType(f)
		switch {
		case st == "room":
			rooms = append(rooms, f)
		case st != "" && st != "building":
			rooms = append(rooms, f)
		case st == "":
			rooms = append(rooms, f)
		}
	}
	logger.L().Debug("classify_done", "features", len(feats), "building_idx", buildingIdx, "rooms", len(rooms))
	return feats[buildingIdx], rooms, nil
}
