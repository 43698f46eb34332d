package repo

import (
	"TuneRelay/config"
	"TuneRelay/model"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	gormMysql "gorm.io/driver/mysql"
	"gorm.io/gorm"
)

var Db *gorm.DB

// autoMigrateAll migrates all database models.
func autoMigrateAll(db *gorm.DB) {
	db.AutoMigrate(&model.User{})
	db.AutoMigrate(&model.CachedPart{})
}

// InitDB opens the durable store. SQLite under DATA_DIR is the default;
// setting DB_HOST switches to MySQL.
func InitDB() {
	if config.AppConfig.DBHost != "" {
		initMysql()
		return
	}
	initSqlite()
}

func initSqlite() {
	dataDir := config.AppConfig.DataDir
	if dataDir != "" && dataDir != "." {
		if err := os.MkdirAll(dataDir, 0o755); err != nil {
			log.Fatal("create data dir fail: ", err)
		}
	}
	path := filepath.Join(dataDir, "tunerelay.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		log.Fatal("init sqlite fail: ", err)
	}
	autoMigrateAll(db)
	log.Println("init sqlite success:", path)
	Db = db
}

func initMysql() {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		config.AppConfig.DBUser,
		config.AppConfig.DBPass,
		config.AppConfig.DBHost,
		config.AppConfig.DBPort,
		config.AppConfig.DBName,
	)
	db, err := gorm.Open(gormMysql.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("init mysql fail: ", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatal("get sql db fail: ", err)
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	autoMigrateAll(db)
	log.Println("init mysql success")
	Db = db
}
