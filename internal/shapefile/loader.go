// 包 shapefile：压缩包要素装载，把 zip 形式的 shapefile 解出为内存要素集合
package shapefile

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"floorplan-api/internal/floorplan"
	"floorplan-api/internal/logger"

	shp "github.com/jonas-p/go-shp"
	"github.com/paulmach/orb"
)

// 错误种类：入口层按 errors.Is 区分客户端可纠正的上传问题
var (
	// ErrArchiveParse：压缩包损坏、缺少必备成员文件或记录不可读
	ErrArchiveParse = errors.New("archive parse failed")
	// ErrEmptyFeatureSet：解析成功但没有任何要素
	ErrEmptyFeatureSet = errors.New("archive contains no features")
)

// 文档注释：装载压缩包并提取全部要素
// 背景：上传物为打包的 .shp/.dbf/.shx 等成员；几何与属性分别存于 .shp 与 .dbf，两者缺一不可
// 约束：纯字节变换，无副作用；不解释属性键的语义；坐标按 X=经度 Y=纬度 读取
func Load(buf []byte) ([]floorplan.Feature, error) {
	zr, err := zip.NewReader(bytes.NewReader(buf), int64(len(buf)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrArchiveParse, err)
	}
	var shpData, dbfData []byte
	for _, zf := range zr.File {
		if strings.HasPrefix(zf.Name, "__MACOSX") {
			continue
		}
		name := path.Base(zf.Name)
		if strings.HasPrefix(name, ".") {
			continue
		}
		switch strings.ToLower(path.Ext(name)) {
		case ".shp":
			if shpData == nil {
				if shpData, err = readEntry(zf); err != nil {
					return nil, fmt.Errorf("%w: %v", ErrArchiveParse, err)
				}
			}
		case ".dbf":
			if dbfData == nil {
				if dbfData, err = readEntry(zf); err != nil {
					return nil, fmt.Errorf("%w: %v", ErrArchiveParse, err)
				}
			}
		}
	}
	if shpData == nil {
		return nil, fmt.Errorf("%w: missing .shp member", ErrArchiveParse)
	}
	if dbfData == nil {
		return nil, fmt.Errorf("%w: missing .dbf member", ErrArchiveParse)
	}

	sr := shp.SequentialReaderFromExt(
		io.NopCloser(bytes.NewReader(shpData)),
		io.NopCloser(bytes.NewReader(dbfData)),
	)
	defer sr.Close()

	fields := sr.Fields()
	var feats []floorplan.Feature
	for sr.Next() {
		_, shape := sr.Shape()
		rings := ringsOf(shape)
		if rings == nil {
			continue
		}
		props := make(map[string]string, len(fields))
		for i, fld := range fields {
			props[fld.String()] = strings.TrimSpace(sr.Attribute(i))
		}
		feats = append(feats, floorplan.Feature{Rings: rings, Props: props})
	}
	if err := sr.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrArchiveParse, err)
	}
	if len(feats) == 0 {
		return nil, ErrEmptyFeatureSet
	}
	logger.L().Debug("archive_loaded", "features", len(feats), "fields", len(fields))
	return feats, nil
}

func readEntry(zf *zip.File) ([]byte, error) {
	rc, err := zf.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// ringsOf：从 shape 记录提取环列表；Parts 为各环在 Points 中的起始下标
func ringsOf(shape shp.Shape) []orb.Ring {
	var points []shp.Point
	var parts []int32
	switch s := shape.(type) {
	case *shp.Polygon:
		points, parts = s.Points, s.Parts
	case *shp.PolyLine:
		points, parts = s.Points, s.Parts
	default:
		return nil
	}
	if len(points) == 0 {
		return nil
	}
	if len(parts) == 0 {
		parts = []int32{0}
	}
	rings := make([]orb.Ring, 0, len(parts))
	for i, start := range parts {
		end := int32(len(points))
		if i+1 < len(parts) {
			end = parts[i+1]
		}
		if start < 0 || start >= end || end > int32(len(points)) {
			continue
		}
		ring := make(orb.Ring, 0, end-start)
		for _, p := range points[start:end] {
			ring = append(ring, orb.Point{p.X, p.Y})
		}
		rings = append(rings, ring)
	}
	if len(rings) == 0 {
		return nil
	}
	return rings
}
