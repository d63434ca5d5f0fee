package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"docchat/internal/config"
	"docchat/internal/domain"
	"docchat/internal/extract"
	"docchat/internal/index"
	"docchat/internal/index/memory"
	"docchat/internal/index/qdrant"
	"docchat/internal/provider/local"
	"docchat/internal/provider/openai"
	"docchat/internal/retriever"
	"docchat/internal/segmenter"
	"docchat/internal/session"
	"docchat/internal/tui"
)

func main() {
	_ = godotenv.Load()

	var cfgPath, sessionID string
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file (optional; uses ~/.config/docchat/config.yaml if not provided)")
	flag.StringVar(&sessionID, "session", "", "Session id for a persisted conversation (optional)")
	flag.Parse()
	inputs := flag.Args()
	if len(inputs) == 0 {
		fmt.Println("Usage: docchat [--config=config.yaml] [--session=name] doc1.md [doc2.pdf ...]")
		os.Exit(1)
	}

	var cfg *config.AppConfig
	var err error
	if cfgPath == "" {
		cfg, _, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(cfgPath)
	}
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Assemble components
	var embedder domain.Embedder
	var completer domain.Completer
	switch cfg.Embedder.Type {
	case "local", "":
		embedder = local.NewEmbedder(cfg.Embedder.Dimension)
	case "openai":
		client, err := openai.NewClient(openai.Config{
			BaseURL:        cfg.Embedder.OpenAI.BaseURL,
			APIKeyEnv:      cfg.Embedder.OpenAI.APIKeyEnv,
			EmbeddingModel: cfg.Embedder.OpenAI.EmbeddingModel,
			ChatModel:      cfg.Completion.Model,
			Timeout:        time.Duration(cfg.Embedder.OpenAI.TimeoutSecs) * time.Second,
		})
		if err != nil {
			log.Fatalf("openai provider init failed: %v", err)
		}
		embedder = client
		completer = client
	default:
		log.Fatalf("unknown embedder: %s", cfg.Embedder.Type)
	}

	switch cfg.Completion.Type {
	case "openai":
		if completer == nil {
			log.Fatalf("openai completion requires embedder.type: openai")
		}
	case "offline", "":
		completer = local.Completer{}
	default:
		log.Fatalf("unknown completion type: %s", cfg.Completion.Type)
	}

	var store index.Store
	switch cfg.Index.Type {
	case "memory", "":
		store = memory.New()
	case "qdrant":
		if cfg.Index.Qdrant == nil {
			log.Fatalf("qdrant config missing")
		}
		store = qdrant.New(qdrant.Config{
			URL:        cfg.Index.Qdrant.URL,
			APIKey:     cfg.Index.Qdrant.APIKey,
			Collection: cfg.Index.Qdrant.Collection,
			Timeout:    time.Duration(cfg.Index.Qdrant.TimeoutSecs) * time.Second,
		})
	default:
		log.Fatalf("unknown index backend: %s", cfg.Index.Type)
	}

	seg := segmenter.New(segmenter.Config{
		TargetSize: cfg.Segmenter.TargetSize,
		Overlap:    cfg.Segmenter.Overlap,
		MinSize:    cfg.Segmenter.MinSize,
	})

	svc := retriever.NewService(seg, embedder, completer, store, nil, retriever.Options{
		TopK:                cfg.Retrieval.TopK,
		SimilarityThreshold: cfg.Retrieval.SimilarityThreshold,
		ConfidenceThreshold: cfg.Retrieval.ConfidenceThreshold,
		DisableTopicGuard:   !cfg.Retrieval.TopicGuardEnabled(),
		Completion: domain.CompletionOptions{
			Model:       cfg.Completion.Model,
			Temperature: cfg.Completion.Temperature,
			MaxTokens:   cfg.Completion.MaxTokens,
		},
	})

	ctx := context.Background()
	indexed := ingest(ctx, svc, inputs)
	if indexed == 0 {
		log.Fatalf("no documents indexed")
	}

	var recorder tui.Recorder
	if sessionID != "" {
		dir := cfg.Sessions.Dir
		if dir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				log.Fatalf("resolving session dir: %v", err)
			}
			dir = filepath.Join(home, ".local", "share", "docchat", "sessions")
		}
		fileStore, err := session.NewFileStore(dir)
		if err != nil {
			log.Fatalf("session store init failed: %v", err)
		}
		recorder = fileStore
	}

	banner := fmt.Sprintf("Indexed %d document(s). Ask away.", indexed)
	m := tui.New(svc, recorder, sessionID, banner)
	if _, err := tea.NewProgram(m).Run(); err != nil {
		log.Fatal(err)
	}
}

// ingest indexes every input file asynchronously and waits for all results,
// so ingestion errors surface before the chat starts.
func ingest(ctx context.Context, svc *retriever.Service, paths []string) int {
	var pending []<-chan retriever.IndexResult
	names := make(map[string]string)
	for _, path := range paths {
		raw, err := os.ReadFile(path)
		if err != nil {
			log.Printf("skipping %s: %v", path, err)
			continue
		}
		name := filepath.Base(path)
		doc := domain.Document{
			ID:   path,
			Name: name,
			Type: extract.TypeForName(name),
			Raw:  raw,
		}
		names[doc.ID] = name
		pending = append(pending, svc.IndexDocumentAsync(ctx, doc))
	}
	indexed := 0
	for _, ch := range pending {
		result := <-ch
		if result.Err != nil {
			log.Printf("indexing %s failed: %v", names[result.DocumentID], result.Err)
			continue
		}
		log.Printf("indexed %s: %d chunks", names[result.DocumentID], result.Chunks)
		indexed++
	}
	return indexed
}
