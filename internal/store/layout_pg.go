package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"floorplan-api/internal/logger"

	_ "github.com/lib/pq"
	"github.com/paulmach/orb/geojson"
)

// 文档注释：PostgreSQL 后端的布局仓储
// 背景：多副本部署下文件锁不跨进程，行级 upsert 把并发安全交给数据库事务
// 约束：记录整体以 JSONB 存取，不拆列；同 BID 冲突走 ON CONFLICT 覆盖
type PGLayoutStore struct {
	db *sql.DB
}

func AttachDB(db *sql.DB) *PGLayoutStore { return &PGLayoutStore{db: db} }

func (s *PGLayoutStore) Get(ctx context.Context, bid string) (*geojson.Feature, error) {
	row := s.db.QueryRowContext(ctx, "SELECT record FROM _floor_layouts WHERE bid=$1", bid)
	var b []byte
	if err := row.Scan(&b); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: pg get: %v", ErrPersistence, err)
	}
	f, err := geojson.UnmarshalFeature(b)
	if err != nil {
		return nil, fmt.Errorf("%w: pg decode bid=%s: %v", ErrPersistence, bid, err)
	}
	return f, nil
}

func (s *PGLayoutStore) All(ctx context.Context) (*geojson.FeatureCollection, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT record FROM _floor_layouts ORDER BY bid")
	if err != nil {
		return nil, fmt.Errorf("%w: pg list: %v", ErrPersistence, err)
	}
	defer rows.Close()
	fc := geojson.NewFeatureCollection()
	for rows.Next() {
		var b []byte
		if err := rows.Scan(&b); err != nil {
			return nil, fmt.Errorf("%w: pg scan: %v", ErrPersistence, err)
		}
		f, err := geojson.UnmarshalFeature(b)
		if err != nil {
			return nil, fmt.Errorf("%w: pg decode: %v", ErrPersistence, err)
		}
		fc.Append(f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: pg rows: %v", ErrPersistence, err)
	}
	return fc, nil
}

func (s *PGLayoutStore) Upsert(ctx context.Context, bid string, feat *geojson.Feature) error {
	b, err := json.Marshal(feat)
	if err != nil {
		return fmt.Errorf("%w: encode: %v", ErrPersistence, err)
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO _floor_layouts(bid, record) VALUES($1, $2)
        ON CONFLICT (bid) DO UPDATE SET record=EXCLUDED.record, updated_at=now()`, bid, b)
	if err != nil {
		return fmt.Errorf("%w: pg upsert bid=%s: %v", ErrPersistence, bid, err)
	}
	logger.L().Debug("layout_upsert_pg", "bid", bid)
	return nil
}
