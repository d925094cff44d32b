// 离线工具：把网格布局文档批量导入存量文件，供回退合成使用
// 背景：历史编辑器数据以导出 JSON 交接；导入前校验键名与网格，拒绝脏数据入库
package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"floorplan-api/internal/floorplan"
	"floorplan-api/internal/logger"
	"floorplan-api/internal/store"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load(".env")
	l := logger.Setup()
	if len(os.Args) < 2 {
		l.Error("usage", "args", "grid-import <document.json>")
		os.Exit(2)
	}
	src := os.Args[1]
	b, err := os.ReadFile(src)
	if err != nil {
		l.Error("read_error", "path", src, "err", err)
		os.Exit(1)
	}
	var doc map[string]floorplan.GridFloor
	if err := json.Unmarshal(b, &doc); err != nil {
		l.Error("decode_error", "path", src, "err", err)
		os.Exit(1)
	}

	dataDir := os.Getenv("DATA_DIR")
	if dataDir == "" {
		dataDir = "data"
	}
	gs := store.NewGridStore(filepath.Join(dataDir, "grid", "floorlayouts.json"))

	imported := 0
	for key, fl := range doc {
		if !validKey(key) {
			l.Error("skip_bad_key", "key", key)
			continue
		}
		if err := gs.Put(key, fl); err != nil {
			l.Error("put_error", "key", key, "err", err)
			os.Exit(1)
		}
		imported++
	}
	l.Info("import_done", "src", src, "floors", imported)
}

// validKey：键形如 "{BID}_floor_{N}"
func validKey(key string) bool {
	i := strings.LastIndex(key, "_floor_")
	if i <= 0 {
		return false
	}
	_, err := strconv.Atoi(key[i+len("_floor_"):])
	return err == nil
}
