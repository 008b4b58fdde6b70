package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/skovric/filedrop"
	"github.com/skovric/filedrop/config"
	"github.com/skovric/filedrop/database"
	"github.com/skovric/filedrop/signer"
)

// buildService wires the metadata backend and the URL signer into a
// ready filedrop.Service. The returned cleanup closes the database
// connection.
func buildService(ctx context.Context, cfg *config.Config) (*filedrop.Service, func(), error) {
	repo, cleanup, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("connect database: %w", err)
	}
	slog.Info("connected to database", "type", cfg.Database.Type)

	store, err := signer.New(ctx, cfg.Storage)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("create signer: %w", err)
	}

	service, err := filedrop.NewService(repo, store, filedrop.ServiceConfig{
		UploadExpiry: time.Duration(cfg.Service.UploadExpiry) * time.Second,
		DownloadTTL:  time.Duration(cfg.Service.DownloadTTL) * time.Second,
		Logger:       slog.Default(),
	})
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("create service: %w", err)
	}

	return service, cleanup, nil
}
