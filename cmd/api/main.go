package main

import (
	"context"
	"log"

	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/jazbelrose/mylg-backend/config"
	"github.com/jazbelrose/mylg-backend/internal/auth/idp"
	"github.com/jazbelrose/mylg-backend/internal/bootstrap"
	collabrepo "github.com/jazbelrose/mylg-backend/internal/collab/repository"
	"github.com/jazbelrose/mylg-backend/internal/janitor"
	projectrepo "github.com/jazbelrose/mylg-backend/internal/projects/repository"
	"github.com/jazbelrose/mylg-backend/internal/realtime"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	bootstrap.SetGinMode(cfg.App.Environment)

	db, err := bootstrap.OpenDB(ctx, bootstrap.DBOptions{
		DSN:      cfg.Database.DSN(),
		MaxConns: int32(cfg.Database.MaxConns),
	})
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	rdb, err := bootstrap.OpenRedis(ctx, &cfg.Redis)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}
	defer rdb.Close()

	awsCfg, err := awscfg.LoadDefaultConfig(ctx, awscfg.WithRegion(cfg.AWS.Region))
	if err != nil {
		log.Fatalf("aws config: %v", err)
	}

	hub := realtime.NewHub(rdb)
	go func() {
		if err := hub.Run(ctx); err != nil && err != context.Canceled {
			log.Printf("realtime hub stopped: %v", err)
		}
	}()

	jan := janitor.New(projectrepo.NewRepo(db), collabrepo.NewInviteRepository(db))
	jan.Start()
	defer jan.Stop()

	r := bootstrap.BuildRouter(bootstrap.RouterDeps{
		ServiceName:    "mylg-backend",
		Version:        cfg.App.Version,
		JWTSecret:      cfg.Auth.JWTSecret,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		DB:             db,
		Redis:          rdb,
		Hub:            hub,
		Dynamo:         dynamodb.NewFromConfig(awsCfg),
		MessagesTable:  cfg.AWS.MessagesTable,
		S3:             s3.NewFromConfig(awsCfg),
		UploadsBucket:  cfg.AWS.UploadsBucket,
		PublicBaseURL:  cfg.AWS.PublicBaseURL,
		IDP:            idp.NewDev(),
	})

	log.Printf("listening on :%s", cfg.Server.Port)
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("server: %v", err)
	}
}
