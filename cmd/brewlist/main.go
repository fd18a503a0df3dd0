package main

import (
	"context"
	"log"
	"net/http"

	"github.com/joho/godotenv"

	"github.com/mwhite7112/woodpantry-brewlist/internal/api"
	"github.com/mwhite7112/woodpantry-brewlist/internal/blob"
	"github.com/mwhite7112/woodpantry-brewlist/internal/clients"
	"github.com/mwhite7112/woodpantry-brewlist/internal/config"
	"github.com/mwhite7112/woodpantry-brewlist/internal/logger"
	"github.com/mwhite7112/woodpantry-brewlist/internal/maltdb"
	"github.com/mwhite7112/woodpantry-brewlist/internal/metrics"
	"github.com/mwhite7112/woodpantry-brewlist/internal/service"
	"github.com/mwhite7112/woodpantry-brewlist/internal/store"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	lg := logger.New(cfg.LogLevel, nil)
	ctx := context.Background()

	kv, err := store.Open(ctx, cfg.Store)
	if err != nil {
		log.Fatalf("open store: %v", err)
	}
	defer kv.Close()
	state := store.NewState(kv, lg)

	if cfg.Credentials.Complete() {
		if err := state.SaveCredentials(ctx, cfg.Credentials); err != nil {
			log.Fatalf("seed credentials: %v", err)
		}
		lg.Info("seeded Brewfather credentials from the environment")
	}

	blobs, err := blob.Open(ctx, cfg.Blob)
	if err != nil {
		log.Fatalf("open blob store: %v", err)
	}

	var tables maltdb.Chain
	if cfg.MaltDBURL != "" {
		tables = append(tables, clients.NewMaltDBClient(cfg.MaltDBURL, cfg.HTTPTimeout))
	}
	if cfg.MaltDBBlobKey != "" {
		tables = append(tables, maltdb.BlobSource{Store: blobs, Key: cfg.MaltDBBlobKey})
	}
	tables = append(tables, maltdb.Embedded{})

	prom := metrics.NewPrometheus()
	svc := service.New(
		clients.NewBrewfatherClient(cfg.BrewfatherURL, state, cfg.HTTPTimeout),
		tables,
		state,
		lg,
		service.WithBlobStore(blobs),
		service.WithRecipeHosts(cfg.RecipeHosts),
		service.WithPageSource(clients.NewPageClient(cfg.HTTPTimeout, cfg.RecipeHosts)),
		service.WithMetrics(prom),
	)

	handler := api.NewRouter(svc, prom.Handler())

	lg.Info("brewlist service listening on %s (store %s, blobs %s)", cfg.Addr(), cfg.Store.Driver, blobs.Driver())
	if err := http.ListenAndServe(cfg.Addr(), handler); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
