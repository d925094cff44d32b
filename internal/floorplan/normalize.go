package floorplan

import (
	"floorplan-api/internal/logger"
	"fmt"
	"strings"
	"time"
)

// 文档注释：坐标归一化，把房间几何映射进楼栋包围盒定义的单位空间
// 背景：下游渲染与点位摆放只认单位坐标；包围矩形足够支撑当前产品形态，真实形状存储为非目标
// 约束：楼栋包围盒宽或高为零时归一化除法产生非有限值，必须报 ErrDegenerateBounds 而不是落库

// BoundsOf：取要素外环的地理包围盒 [minLon, minLat, maxLon, maxLat]
func BoundsOf(f Feature) BBox {
	b := f.Polygon().Bound()
	return BBox{b.Min[0], b.Min[1], b.Max[0], b.Max[1]}
}

// Normalize：将房间要素集合归一化为单位空间布局
// 参数：building 决定参考系；rooms 可为空，产物的 rooms 恒为数组
func Normalize(building Feature, rooms []Feature) (*Layout, error) {
	bb := BoundsOf(building)
	w := bb[2] - bb[0]
	h := bb[3] - bb[1]
	if w == 0 || h == 0 {
		return nil, fmt.Errorf("%w: width=%v height=%v", ErrDegenerateBounds, w, h)
	}

	ts := time.Now().UnixMilli()
	out := &Layout{Bounds: bb, Rooms: make([]Room, 0, len(rooms))}
	for i, rf := range rooms {
		ring := rf.OuterRing()
		if len(ring) == 0 {
			continue
		}
		minX, minY := 1.0, 1.0
		maxX, maxY := 0.0, 0.0
		first := true
		for _, pt := range ring {
			x := (pt[0] - bb[0]) / w
			y := (pt[1] - bb[1]) / h
			if first {
				minX, maxX, minY, maxY = x, x, y, y
				first = false
				continue
			}
			if x < minX {
				minX = x
			}
			if x > maxX {
				maxX = x
			}
			if y < minY {
				minY = y
			}
			if y > maxY {
				maxY = y
			}
		}
		r := Room{
			ID:     roomID(rf, ts, i),
			Type:   roomType(rf),
			Name:   roomName(rf, i),
			Bounds: Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY},
		}
		// pniu 取矩形中心：近似内点，非真实质心
		r.PNIU = PointXY{X: minX + r.Bounds.Width/2, Y: minY + r.Bounds.Height/2}
		out.Rooms = append(out.Rooms, r)
	}
	logger.L().Debug("normalize_done", "rooms_in", len(rooms), "rooms_out", len(out.Rooms))
	return out, nil
}

// roomID：id 或 room_id 属性，缺省合成 room-{时间戳}-{序号}
func roomID(f Feature, ts int64, idx int) string {
	if v, ok := f.Prop("id"); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	if v, ok := f.Prop("room_id"); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return fmt.Sprintf("room-%d-%d", ts, idx)
}

// roomName：name 或 room_name 属性，缺省合成 Room {序号+1}
func roomName(f Feature, idx int) string {
	if v, ok := f.Prop("name"); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	if v, ok := f.Prop("room_name"); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return fmt.Sprintf("Room %d", idx+1)
}

// roomType：room_type/type/category 属性依序兜底，缺省 "room"
func roomType(f Feature) string {
	for _, key := range []string{"room_type", "type", "category"} {
		if v, ok := f.Prop(key); ok && strings.TrimSpace(v) != "" {
			return strings.ToLower(strings.TrimSpace(v))
		}
	}
	return "room"
}
