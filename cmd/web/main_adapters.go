package main

import (
	"path/filepath"

	"github.com/go-while/go-advice/internal/config"
	"github.com/go-while/go-advice/internal/database"
)

// dbConfigFromApp maps the database section of the app config onto the
// storage layer's own config, keeping its pool and cache defaults
func dbConfigFromApp(cfg *config.AppConfig) *database.DBConfig {
	dbConfig := database.DefaultDBConfig()
	dbConfig.DataDir = filepath.Clean(cfg.Database.DataDir)
	dbConfig.WALMode = cfg.Database.WALMode
	dbConfig.SyncMode = cfg.Database.SyncMode
	return dbConfig
}
