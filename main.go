package main

import (
	"context"
	"log"

	"github.com/cppla/fileupload/config"
	"github.com/cppla/fileupload/models"
	"github.com/cppla/fileupload/routes"
	"github.com/cppla/fileupload/storage"
	"github.com/cppla/fileupload/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = utils.Logger.Sync() }()

	store, err := openStore(cfg)
	if err != nil {
		utils.Sugar.Fatalf("open storage: %v", err)
	}

	var journal storage.Journal = storage.NopJournal{}
	db, err := config.OpenDatabase(cfg, &models.FileMeta{})
	if err != nil {
		utils.Sugar.Fatalf("open database: %v", err)
	}
	if db != nil {
		journal = storage.NewGormJournal(db)
		utils.Sugar.Infof("metadata journal enabled (%s)", cfg.DBDriver)
	}

	r := routes.SetupRouter(cfg, store, journal)

	utils.Sugar.Infof("Server running at http://localhost:%s (storage=%s)", cfg.AppPort, store.Driver())
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}

func openStore(cfg config.AppConfig) (storage.Store, error) {
	if cfg.StorageDriver == config.StorageS3 {
		return storage.NewS3Store(context.Background(), storage.S3Config{
			Region:    cfg.S3Region,
			Bucket:    cfg.S3Bucket,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Endpoint:  cfg.S3Endpoint,
			Prefix:    cfg.S3Prefix,
		})
	}
	store, err := storage.NewLocalStore(cfg.UploadDir)
	if err != nil {
		return nil, err
	}
	utils.Sugar.Infof("storing uploads in %s", store.Dir())
	return store, nil
}
