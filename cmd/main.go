// 程序入口：仅负责读取配置、初始化依赖并启动服务；API 注册在 internal/api 以便扩展
package main

import (
	"context"
	"net/http"
	"os"
	"path/filepath"

	"floorplan-api/internal/api"
	"floorplan-api/internal/ingest"
	"floorplan-api/internal/logger"
	"floorplan-api/internal/metrics"
	"floorplan-api/internal/middleware"
	"floorplan-api/internal/migrate"
	"floorplan-api/internal/store"
	"floorplan-api/internal/utils"
	"floorplan-api/internal/version"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join("data", "env", ".env"))
	l := logger.Setup()
	l.Debug("log_init_ok", "commit", version.Commit)

	apiBase := os.Getenv("API_BASE")
	if apiBase == "" {
		apiBase = "/api"
	}
	l.Debug("config_api_base", "base", apiBase)

	dataDir := os.Getenv("DATA_DIR")
	if dataDir == "" {
		dataDir = "data"
	}
	layoutDir := filepath.Join(dataDir, "layouts")
	gridDir := filepath.Join(dataDir, "grid")
	metaDir := filepath.Join(dataDir, "metadata")
	if err := utils.EnsureDirs(layoutDir, gridDir, metaDir); err != nil {
		l.Error("data_dir_error", "err", err)
		os.Exit(1)
	}
	l.Debug("config_data_dir", "dir", dataDir)

	// 布局仓储后端：默认单文件；多副本部署配置 LAYOUT_STORE=postgres 走行级 upsert
	var layouts store.LayoutStore
	if os.Getenv("LAYOUT_STORE") == "postgres" {
		db, err := utils.OpenPostgresFromEnv()
		if err != nil {
			l.Error("db_open_error", "err", err)
			os.Exit(1)
		}
		defer db.Close()
		if err := db.Ping(); err != nil {
			l.Error("db_ping_error", "err", err)
		} else {
			l.Info("db_ping_ok")
		}
		if err := migrate.EnsureSchema(db); err != nil {
			l.Error("schema_error", "err", err)
			os.Exit(1)
		}
		layouts = store.AttachDB(db)
		l.Info("layout_store", "backend", "postgres")
	} else {
		layouts = store.NewFileLayoutStore(filepath.Join(layoutDir, "layouts.json"))
		l.Info("layout_store", "backend", "file")
	}

	rc := utils.OpenRedisFromEnv()
	if rc == nil {
		l.Info("redis_disabled")
	} else if err := rc.Ping(context.Background()).Err(); err != nil {
		l.Error("redis_ping_error", "err", err)
	} else {
		l.Info("redis_ping_ok")
	}

	pipe := &ingest.Pipeline{
		Layouts:  layouts,
		Grid:     store.NewGridStore(filepath.Join(gridDir, "floorlayouts.json")),
		Metadata: store.NewMetadataStore(filepath.Join(metaDir, "buildings.json")),
		Cache:    rc,
	}

	mux := http.NewServeMux()
	apiMux := api.BuildRoutes(pipe)
	mux.Handle(apiBase+"/", http.StripPrefix(apiBase, apiMux))
	mux.Handle(apiBase+"/metrics", metrics.Handler())

	addr := os.Getenv("ADDR")
	if addr == "" {
		addr = ":8080"
	}
	handler := logger.AccessMiddleware(l)(mux)
	handler = middleware.Wrap(handler)
	s := &http.Server{Addr: addr, Handler: handler}

	tlsEnable := os.Getenv("TLS_ENABLE")
	if tlsEnable == "true" {
		certPath := os.Getenv("TLS_CERT_PATH")
		keyPath := os.Getenv("TLS_KEY_PATH")
		if certPath == "" {
			certPath = filepath.Join(dataDir, "certs", "server.crt")
		}
		if keyPath == "" {
			keyPath = filepath.Join(dataDir, "certs", "server.key")
		}
		_ = utils.EnsureSelfSignedCert(certPath, keyPath, "floorplan-api.local")
		l.Info("listening_tls", "addr", addr, "cert", certPath)
		_ = s.ListenAndServeTLS(certPath, keyPath)
		return
	}
	l.Info("listening", "addr", addr)
	_ = s.ListenAndServe()
}
