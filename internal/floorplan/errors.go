package floorplan

import "errors"

// 错误种类：在入口层按 errors.Is 映射为 4xx/5xx；流水线内部只包装不吞错
var (
	// ErrMissingBuilding：要素集中选不出楼栋多边形（集合为空或无可用面积）
	ErrMissingBuilding = errors.New("no building polygon selectable")
	// ErrDegenerateBounds：楼栋包围盒宽或高为零，归一化除法会产生非有限值
	ErrDegenerateBounds = errors.New("degenerate building bounds")
)
