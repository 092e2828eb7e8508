package memory

import (
	embedpkg "github.com/relay-agents/relay/src/memory/embed"
	"github.com/relay-agents/relay/src/memory/model"
	storepkg "github.com/relay-agents/relay/src/memory/store"
)

// Type aliases so callers can depend on the memory package alone.
type (
	Turn  = model.Turn
	Group = model.Group

	Match  = storepkg.Match
	Filter = storepkg.Filter

	VectorStore       = storepkg.VectorStore
	SchemaInitializer = storepkg.SchemaInitializer
	Counter           = storepkg.Counter

	InMemoryStore           = storepkg.InMemoryStore
	PostgresStore           = storepkg.PostgresStore
	QdrantStore             = storepkg.QdrantStore
	MongoStore              = storepkg.MongoStore
	Distance                = storepkg.Distance
	CreateCollectionRequest = storepkg.CreateCollectionRequest

	Embedder      = embedpkg.Embedder
	DummyEmbedder = embedpkg.DummyEmbedder
)

const (
	RoleUser            = model.RoleUser
	RoleAssistant       = model.RoleAssistant
	UnknownConversation = model.UnknownConversation

	DistanceCosine = storepkg.DistanceCosine
	DistanceDot    = storepkg.DistanceDot
	DistanceEuclid = storepkg.DistanceEuclid
)

var (
	ErrNotSupported = embedpkg.ErrNotSupported

	NewInMemoryStore = storepkg.NewInMemoryStore
	NewPostgresStore = storepkg.NewPostgresStore
	NewQdrantStore   = storepkg.NewQdrantStore
	NewMongoStore    = storepkg.NewMongoStore

	AutoEmbedder      = embedpkg.AutoEmbedder
	DummyEmbedding    = embedpkg.DummyEmbedding
	NewOpenAIEmbedder = embedpkg.NewOpenAIEmbedder
	NewGeminiEmbedder = embedpkg.NewGeminiEmbedder
	NewOllamaEmbedder = embedpkg.NewOllamaEmbedder
	NewVoyageEmbedder = embedpkg.NewVoyageEmbedder
)
