// Package db はローカルデータストアへの接続を提供します。
package db

import (
	"fmt"
	"log"
	"os"
	"time"

	conceptentity "stock_sync/internal/feature/concepts/domain/entity"
	instrumententity "stock_sync/internal/feature/instruments/domain/entity"
	priceadapters "stock_sync/internal/feature/prices/adapters"
	recordentity "stock_sync/internal/feature/records/domain/entity"

	gpostgres "gorm.io/driver/postgres"
	gsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DefaultSQLitePath は DB_PATH 未指定時のSQLiteファイルです。
const DefaultSQLitePath = "stock_data.db"

// OpenDB は環境変数に従ってデータストアを開きます。
//
//   - DB_DRIVER=postgres と DB_DSN が設定されていれば PostgreSQL
//   - それ以外は DB_PATH（既定 stock_data.db）のSQLite
//
// 接続後、スキーマをAutoMigrateで作成します。受動テーブル
// （model_training_records, user_feedback）もここで作られます。
func OpenDB(path string) (*gorm.DB, error) {
	cfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)}

	var (
		conn *gorm.DB
		err  error
	)
	if os.Getenv("DB_DRIVER") == "postgres" {
		dsn := os.Getenv("DB_DSN")
		if dsn == "" {
			return nil, fmt.Errorf("DB_DRIVER=postgres requires DB_DSN")
		}
		deadline := time.Now().Add(60 * time.Second)
		for {
			conn, err = gorm.Open(gpostgres.Open(dsn), cfg)
			if err == nil {
				break
			}
			if time.Now().After(deadline) {
				return nil, fmt.Errorf("DB connect failed after 60s: %w", err)
			}
			log.Printf("DB connect failed, retrying...: %v", err)
			time.Sleep(3 * time.Second)
		}
	} else {
		if path == "" {
			path = os.Getenv("DB_PATH")
		}
		if path == "" {
			path = DefaultSQLitePath
		}
		conn, err = gorm.Open(gsqlite.Open(path), cfg)
		if err != nil {
			return nil, fmt.Errorf("open sqlite %s: %w", path, err)
		}
	}

	if err := conn.AutoMigrate(
		&instrumententity.Instrument{},
		&priceadapters.PriceModel{},
		&conceptentity.ConceptTag{},
		&recordentity.TrainingRecord{},
		&recordentity.Feedback{},
	); err != nil {
		return nil, fmt.Errorf("migrate schema: %w", err)
	}

	return conn, nil
}
