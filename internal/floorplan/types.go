// 包 floorplan：楼层布局的领域模型与归一化流水线（分类、归一化、网格回退合成）
package floorplan

// 文档注释：单位坐标系下的房间与布局结构
// 背景：房间几何统一归一化到楼栋包围盒定义的 [0,1]×[0,1] 单位空间，前端渲染与点位摆放均基于该坐标系
// 约束：bounds 各分量在几何来源下均落在 [0,1]；polygon 预留为 null，真实形状存储不在本服务范围

// Rect：单位空间下的包围矩形
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// PointXY：单位空间下的点位
type PointXY struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Room：归一化后的房间；pniu 为代表性内点（取包围矩形中心，非真实质心）
type Room struct {
	ID      string  `json:"id"`
	Type    string  `json:"type"`
	Name    string  `json:"name"`
	Bounds  Rect    `json:"bounds"`
	Polygon any     `json:"polygon"`
	PNIU    PointXY `json:"pniu"`
}

// BBox：地理包围盒，序列为 [minLon, minLat, maxLon, maxLat]
type BBox [4]float64

// Layout：一次转换的产物，bounds 为楼栋地理包围盒或元数据库的覆盖值
type Layout struct {
	Bounds BBox   `json:"bounds"`
	Rooms  []Room `json:"rooms"`
}

// BuildingDetails：来自楼栋元数据库的描述信息；各字段独立可空，按原样透传
type BuildingDetails struct {
	Name            any `json:"name"`
	Height          any `json:"height"`
	Floors          any `json:"floors"`
	ApartmentCounts any `json:"apartmentCounts"`
}

// 网格布局存量文档的结构：键形如 "{BID}_floor_{N}"

// GridSize：网格列行数；0 或缺省按 1 处理
type GridSize struct {
	Cols float64 `json:"cols"`
	Rows float64 `json:"rows"`
}

// GridRoom：网格坐标系下的房间（编辑器存量格式）
type GridRoom struct {
	ID     string   `json:"id,omitempty"`
	Type   string   `json:"type,omitempty"`
	Name   string   `json:"name,omitempty"`
	X      float64  `json:"x"`
	Y      float64  `json:"y"`
	Width  float64  `json:"width"`
	Height float64  `json:"height"`
	PNIU   *PointXY `json:"pniu,omitempty"`
}

// GridApartment：单套户型的网格与房间列表
type GridApartment struct {
	Grid  GridSize   `json:"grid"`
	Rooms []GridRoom `json:"rooms"`
}

// GridFloor：单层的户型集合
type GridFloor struct {
	Apartments map[string]GridApartment `json:"apartments"`
}
