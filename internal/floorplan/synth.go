package floorplan

import (
	"floorplan-api/internal/logger"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// 文档注释：网格存量回退合成，在压缩包中无房间几何时从编辑器存量布局推导房间列表
// 背景：历史楼栋只有网格编辑器数据，无测绘几何；以网格列行数为分母可复用同一单位空间
// 约束：按楼层号升序做显式有序搜索，首个产出房间的楼层即终止，楼层之间从不合并

// floorKeyPrefix：网格文档键形如 "{BID}_floor_{N}"
const floorKeySep = "_floor_"

// SynthesizeRooms：从网格存量文档合成房间列表
// 返回：首个有房间楼层的归一化房间；无可用楼层时返回空切片
func SynthesizeRooms(bid string, doc map[string]GridFloor) []Room {
	type floorRef struct {
		key string
		n   int
	}
	prefix := bid + floorKeySep
	var floors []floorRef
	for k := range doc {
		if !strings.HasPrefix(k, prefix) {
			continue
		}
		n, err := strconv.Atoi(k[len(prefix):])
		if err != nil {
			continue
		}
		floors = append(floors, floorRef{key: k, n: n})
	}
	sort.Slice(floors, func(i, j int) bool { return floors[i].n < floors[j].n })

	for _, fl := range floors {
		rooms := synthesizeFloor(doc[fl.key])
		if len(rooms) > 0 {
			logger.L().Debug("synth_floor_selected", "bid", bid, "floor", fl.n, "rooms", len(rooms))
			return rooms
		}
	}
	return []Room{}
}

// synthesizeFloor：单层内逐户型展开房间，按户型网格归一化
func synthesizeFloor(fl GridFloor) []Room {
	aptKeys := make([]string, 0, len(fl.Apartments))
	for k := range fl.Apartments {
		aptKeys = append(aptKeys, k)
	}
	sort.Strings(aptKeys)

	var out []Room
	for _, ak := range aptKeys {
		apt := fl.Apartments[ak]
		cols := apt.Grid.Cols
		if cols == 0 {
			cols = 1
		}
		rows := apt.Grid.Rows
		if rows == 0 {
			rows = 1
		}
		for i, gr := range apt.Rooms {
			r := Room{
				ID:   gr.ID,
				Type: gr.Type,
				Name: gr.Name,
				Bounds: Rect{
					X:      gr.X / cols,
					Y:      gr.Y / rows,
					Width:  gr.Width / cols,
					Height: gr.Height / rows,
				},
			}
			if r.ID == "" {
				r.ID = "room-" + uuid.NewString()
			}
			if r.Type == "" {
				r.Type = "room"
			}
			if r.Name == "" {
				r.Name = "Room " + strconv.Itoa(i+1)
			}
			if gr.PNIU != nil {
				r.PNIU = PointXY{X: gr.PNIU.X / cols, Y: gr.PNIU.Y / rows}
			} else {
				r.PNIU = PointXY{X: r.Bounds.X + r.Bounds.Width/2, Y: r.Bounds.Y + r.Bounds.Height/2}
			}
			out = append(out, r)
		}
	}
	return out
}
