package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"

	relay "github.com/relay-agents/relay"
	"github.com/relay-agents/relay/src/helpers"
	"github.com/relay-agents/relay/src/memory/store"
)

func main() {
	_ = godotenv.Load()

	agentID := flag.String("agent", "orchestrator", "agent id to chat with")
	session := flag.String("session", "", "session id (empty uses the shared hourly session)")
	useTools := flag.Bool("tools", false, "attach the agent's tool declarations")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	r, err := relay.New(relay.Options{
		Store:  storeFromEnv(logger),
		Logger: logger,
	})
	if err != nil {
		logger.Error("startup failed", "error", err)
		os.Exit(1)
	}

	fmt.Printf("relay chat — agent %q", *agentID)
	if *session != "" {
		fmt.Printf(", session %q", *session)
	}
	fmt.Println(". Ctrl-D to quit.")

	ctx := context.Background()
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		chunks, err := r.RespondStream(ctx, relay.Request{
			AgentID:   *agentID,
			SessionID: *session,
			Messages:  []relay.Message{{Role: "user", Content: line}},
			UseTools:  *useTools,
		})
		if err != nil {
			logger.Error("turn failed", "error", err)
			continue
		}
		for chunk := range chunks {
			if chunk.Err != nil {
				logger.Error("stream failed", "error", chunk.Err)
				break
			}
			fmt.Print(chunk.Delta)
		}
		fmt.Println()
	}
}

// storeFromEnv picks the vector store backend:
// RELAY_STORE=qdrant|postgres|mongo|memory (default memory).
func storeFromEnv(logger *slog.Logger) store.VectorStore {
	switch strings.ToLower(os.Getenv("RELAY_STORE")) {
	case "qdrant":
		return store.NewQdrantStore(
			os.Getenv("QDRANT_URL"),
			collectionFromEnv(),
			os.Getenv("QDRANT_API_KEY"),
		)
	case "postgres":
		ps, err := store.NewPostgresStore(context.Background(), os.Getenv("DATABASE_URL"), os.Getenv("RELAY_PG_TABLE"))
		if err != nil {
			logger.Error("postgres unavailable, using in-memory store", "error", err)
			return store.NewInMemoryStore()
		}
		return ps
	case "mongo", "mongodb":
		ms, err := store.NewMongoStore(context.Background(),
			os.Getenv("MONGODB_URI"),
			envOr("RELAY_MONGO_DB", "relay"),
			envOr("RELAY_MONGO_COLLECTION", "conversations"),
		)
		if err != nil {
			logger.Error("mongo unavailable, using in-memory store", "error", err)
			return store.NewInMemoryStore()
		}
		return ms
	default:
		return store.NewInMemoryStore()
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
