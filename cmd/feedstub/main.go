package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/feedupload/internal/buildinfo"
	"github.com/dmitrijs2005/feedupload/internal/feedstub"
	"github.com/dmitrijs2005/feedupload/internal/logging"
)

func main() {
	buildinfo.PrintBuildData(os.Stdout)

	cfg, err := feedstub.LoadConfig(os.Args[1:])
	if err != nil {
		log.Fatalf("%v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := logging.New(os.Stderr, "info", "json")

	opts := []feedstub.ServerOption{
		feedstub.WithLogger(logger),
		feedstub.WithPublicURL(cfg.PublicURL),
	}
	if cfg.S3Bucket != "" {
		p, err := feedstub.NewS3Presigner(ctx, cfg)
		if err != nil {
			log.Fatalf("%v", err)
		}
		opts = append(opts, feedstub.WithPresigner(p))
		logger.Info(ctx, "using S3 presigned uploads", "bucket", cfg.S3Bucket, "endpoint", cfg.S3BaseEndpoint)
	}

	srv := feedstub.NewServer(feedstub.NewStore(), cfg.APIKey, opts...)
	if err := srv.ListenAndServe(ctx, cfg.Addr); err != nil {
		log.Fatalf("%v", err)
	}
}
