package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/relay-agents/relay/src/helpers"
	"github.com/relay-agents/relay/src/memory/store"
)

// setup provisions the vector store backend used by the chat binary:
// for Qdrant it creates the collection from a schema file, for Postgres it
// runs the schema SQL. Safe to run repeatedly.
func main() {
	_ = godotenv.Load()

	backend := flag.String("store", envOr("RELAY_STORE", "qdrant"), "backend to provision (qdrant|postgres)")
	schema := flag.String("schema", "", "schema file (JSON for qdrant, SQL for postgres)")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if *schema == "" {
		logger.Error("--schema is required")
		os.Exit(2)
	}

	switch *backend {
	case "qdrant":
		qs := store.NewQdrantStore(os.Getenv("QDRANT_URL"), collectionFromEnv(), os.Getenv("QDRANT_API_KEY"))
		if err := qs.CreateSchema(ctx, *schema); err != nil {
			logger.Error("provisioning failed", "error", err)
			os.Exit(1)
		}
		count, err := qs.Count(ctx)
		if err != nil {
			logger.Warn("collection created but count failed", "error", err)
			return
		}
		fmt.Printf("collection ready, %d points\n", count)
	case "postgres":
		ps, err := store.NewPostgresStore(ctx, os.Getenv("DATABASE_URL"), os.Getenv("RELAY_PG_TABLE"))
		if err != nil {
			logger.Error("connect failed", "error", err)
			os.Exit(1)
		}
		defer ps.Close()
		if err := ps.CreateSchema(ctx, *schema); err != nil {
			logger.Error("provisioning failed", "error", err)
			os.Exit(1)
		}
		count, err := ps.Count(ctx)
		if err != nil {
			logger.Warn("schema applied but count failed", "error", err)
			return
		}
		fmt.Printf("table ready, %d rows\n", count)
	default:
		logger.Error("unknown backend", "store", *backend)
		os.Exit(2)
	}
}

func collectionFromEnv() string {
	if names := helpers.ParseCSVList(os.Getenv("RELAY_QDRANT_COLLECTIONS")); len(names) > 0 {
		return names[0]
	}
	return "relay_conversations"
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
