package api

import "floorplan-api/internal/floorplan"

// 文档注释：转换接口返回结构（对外）
// 背景：统一对外序列化模型；成功携带布局，失败携带机读错误码，便于前端分支处理
// 约束：字段稳定；error 取值为固定错误码集合，新增需评估前端依赖
type convertResult struct {
	Success bool              `json:"success"`
	Layout  *floorplan.Layout `json:"layout,omitempty"`
	Error   string            `json:"error,omitempty"`
}
