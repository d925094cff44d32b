// 包 api：集中注册 HTTP API 路由以解耦主入口，便于后续扩展与替换
package api

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"floorplan-api/internal/floorplan"
	"floorplan-api/internal/ingest"
	"floorplan-api/internal/logger"
	"floorplan-api/internal/metrics"
)

// 上传体积上限：建筑轮廓级 shapefile 远小于此值，超限直接拒绝
const maxUploadBytes = 32 << 20

// 进程内统计：摄取次数与失败次数，供 /stats 快速读取
var (
	ingestCount  atomic.Int64
	ingestFailed atomic.Int64
)

// 构建并返回 API 路由：独立 ServeMux 便于在主入口挂载到 /api 前缀
func BuildRoutes(p *ingest.Pipeline) *http.ServeMux {
	apiMux := http.NewServeMux()

	// 文档注释：压缩包转换入口
	// 背景：表单携带 zip 压缩包与 BID；解析失败属客户端可纠正问题返回 400，落库失败返回 500
	// 约束：不做内部重试，重试策略交给调用方
	apiMux.HandleFunc("/layout/convert", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		ingestCount.Add(1)
		r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			ingestFailed.Add(1)
			writeJSON(w, http.StatusBadRequest, convertResult{Error: "bad_multipart"})
			return
		}
		bid := strings.TrimSpace(r.FormValue("bid"))
		if bid == "" {
			ingestFailed.Add(1)
			writeJSON(w, http.StatusBadRequest, convertResult{Error: "missing_bid"})
			return
		}
		file, _, err := r.FormFile("file")
		if err != nil {
			ingestFailed.Add(1)
			writeJSON(w, http.StatusBadRequest, convertResult{Error: "missing_file"})
			return
		}
		defer file.Close()
		buf, err := io.ReadAll(file)
		if err != nil {
			ingestFailed.Add(1)
			writeJSON(w, http.StatusBadRequest, convertResult{Error: "unreadable_file"})
			return
		}

		layout, err := p.Run(r.Context(), bid, buf)
		if err != nil {
			ingestFailed.Add(1)
			kind := ingest.Kind(err)
			logger.L().Error("convert_failed", "bid", bid, "kind", kind, "err", err)
			status := http.StatusInternalServerError
			if ingest.ClientError(err) {
				status = http.StatusBadRequest
			}
			writeJSON(w, status, convertResult{Error: kind})
			return
		}
		writeJSON(w, http.StatusOK, convertResult{Success: true, Layout: layout})
	})

	// 单楼栋布局读取：Redis 读穿缓存，upsert 时失效
	apiMux.HandleFunc("/layout", func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		bid := r.URL.Query().Get("bid")
		if bid == "" {
			writeJSON(w, http.StatusBadRequest, convertResult{Error: "missing_bid"})
			return
		}
		if p.Cache != nil {
			if s, _ := p.Cache.Get(ctx, "layout:"+bid).Result(); s != "" {
				metrics.CacheHitsTotal.Inc()
				w.Header().Set("content-type", "application/json; charset=utf-8")
				w.Header().Set("cache-control", "no-store")
				_, _ = w.Write([]byte(s))
				return
			}
			metrics.CacheMissesTotal.Inc()
		}
		feat, err := p.Layouts.Get(ctx, bid)
		if err != nil {
			logger.L().Error("layout_get_failed", "bid", bid, "err", err)
			writeJSON(w, http.StatusInternalServerError, convertResult{Error: "persistence"})
			return
		}
		if feat == nil {
			writeJSON(w, http.StatusNotFound, convertResult{Error: "not_found"})
			return
		}
		b, err := json.Marshal(feat)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, convertResult{Error: "internal"})
			return
		}
		if p.Cache != nil {
			_ = p.Cache.Set(ctx, "layout:"+bid, string(b), time.Hour).Err()
		}
		w.Header().Set("content-type", "application/json; charset=utf-8")
		w.Header().Set("cache-control", "no-store")
		_, _ = w.Write(b)
	})

	// 全量布局集合
	apiMux.HandleFunc("/layouts", func(w http.ResponseWriter, r *http.Request) {
		fc, err := p.Layouts.All(r.Context())
		if err != nil {
			logger.L().Error("layouts_list_failed", "err", err)
			writeJSON(w, http.StatusInternalServerError, convertResult{Error: "persistence"})
			return
		}
		w.Header().Set("content-type", "application/json; charset=utf-8")
		w.Header().Set("cache-control", "no-store")
		_ = json.NewEncoder(w).Encode(fc)
	})

	// 网格布局编辑器存量端点：回退合成的输入来源
	apiMux.HandleFunc("/grid", func(w http.ResponseWriter, r *http.Request) {
		key := r.URL.Query().Get("key")
		if !validGridKey(key) {
			writeJSON(w, http.StatusBadRequest, convertResult{Error: "bad_grid_key"})
			return
		}
		switch r.Method {
		case http.MethodGet:
			fl, ok, err := p.Grid.Get(key)
			if err != nil {
				writeJSON(w, http.StatusInternalServerError, convertResult{Error: "persistence"})
				return
			}
			if !ok {
				writeJSON(w, http.StatusNotFound, convertResult{Error: "not_found"})
				return
			}
			w.Header().Set("content-type", "application/json; charset=utf-8")
			_ = json.NewEncoder(w).Encode(fl)
		case http.MethodPut:
			var fl floorplan.GridFloor
			if err := json.NewDecoder(r.Body).Decode(&fl); err != nil {
				writeJSON(w, http.StatusBadRequest, convertResult{Error: "bad_body"})
				return
			}
			if err := p.Grid.Put(key, fl); err != nil {
				logger.L().Error("grid_put_failed", "key", key, "err", err)
				writeJSON(w, http.StatusInternalServerError, convertResult{Error: "persistence"})
				return
			}
			w.WriteHeader(http.StatusNoContent)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})

	apiMux.HandleFunc("/stats", func(w http.ResponseWriter, r *http.Request) {
		var records int
		if fc, err := p.Layouts.All(r.Context()); err == nil {
			records = len(fc.Features)
		}
		m := map[string]any{
			"layouts":         records,
			"ingests_total":   ingestCount.Load(),
			"ingest_failures": ingestFailed.Load(),
		}
		w.Header().Set("content-type", "application/json; charset=utf-8")
		w.Header().Set("cache-control", "no-store")
		_ = json.NewEncoder(w).Encode(m)
	})

	return apiMux
}

// validGridKey：键形如 "{BID}_floor_{N}"，楼层号必须是整数
func validGridKey(key string) bool {
	i := strings.LastIndex(key, "_floor_")
	if i <= 0 {
		return false
	}
	_, err := strconv.Atoi(key[i+len("_floor_"):])
	return err == nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("content-type", "application/json; charset=utf-8")
	w.Header().Set("cache-control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
