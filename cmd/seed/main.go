// Seeds the document store and object storage with placeholder images so the
// sampling endpoint has data to serve during local development.
package main

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"log"
	"log/slog"
	"math/rand/v2"

	"github.com/caarlos0/env/v11"
	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"

	"trashsort-backend/cmd"
	"trashsort-backend/internal/config"
	"trashsort-backend/internal/database"
	"trashsort-backend/internal/storage"
)

type seedConfig struct {
	Count int `env:"SEED_COUNT" envDefault:"40"`
}

func placeholderImage() ([]byte, error) {
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	c := color.RGBA{R: uint8(rand.IntN(256)), G: uint8(rand.IntN(256)), B: uint8(rand.IntN(256)), A: 255}
	for x := 0; x < 8; x++ {
		for y := 0; y < 8; y++ {
			img.Set(x, y, c)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func main() {
	cmd.LoadEnvFile()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("error loading config: %v", err)
	}

	var seedCfg seedConfig
	if err := env.Parse(&seedCfg); err != nil {
		log.Fatalf("error parsing seed config: %v", err)
	}

	if !cfg.HasDatabase() {
		log.Fatalf("DATABASE_URL must be configured to seed documents")
	}

	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	docs := database.NewDocumentStore(db)

	var store storage.Provider
	if cfg.HasS3() {
		store, err = storage.NewS3Provider(&storage.S3ProviderConfig{
			S3EndpointURL:     cfg.S3EndpointURL,
			S3AccessKeyID:     cfg.S3AccessKeyID,
			S3SecretAccessKey: cfg.S3SecretAccessKey,
			S3Region:          cfg.S3Region,
		})
	} else {
		store, err = storage.NewLocalProvider(cfg.LocalStorageDir)
	}
	if err != nil {
		log.Fatalf("Failed to create storage client: %v", err)
	}

	ctx := context.Background()
	if err := store.CreateBucket(ctx, cfg.ImageBucket); err != nil {
		log.Fatalf("Failed to create image bucket: %v", err)
	}

	bar := progressbar.NewOptions(seedCfg.Count,
		progressbar.OptionSetDescription("seeding images"),
		progressbar.OptionSetWidth(30),
		progressbar.OptionClearOnFinish(),
	)

	for i := 0; i < seedCfg.Count; i++ {
		data, err := placeholderImage()
		if err != nil {
			log.Fatalf("Failed to generate placeholder image: %v", err)
		}

		key := fmt.Sprintf("classification-%s.png", uuid.New().String())
		if err := store.PutObject(ctx, cfg.ImageBucket, key, bytes.NewReader(data)); err != nil {
			log.Fatalf("Failed to upload image %s: %v", key, err)
		}
		if _, err := docs.CreateDocument(ctx, key); err != nil {
			log.Fatalf("Failed to create document for %s: %v", key, err)
		}

		_ = bar.Add(1)
	}

	slog.Info("seeding complete", "count", seedCfg.Count, "bucket", cfg.ImageBucket)
}
