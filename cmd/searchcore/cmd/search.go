package cmd

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/docuchat/searchcore/internal/cache"
	"github.com/docuchat/searchcore/internal/config"
	"github.com/docuchat/searchcore/internal/docmeta"
	"github.com/docuchat/searchcore/internal/embed"
	"github.com/docuchat/searchcore/internal/filter"
	"github.com/docuchat/searchcore/internal/fingerprint"
	"github.com/docuchat/searchcore/internal/index"
	"github.com/docuchat/searchcore/internal/model"
	"github.com/docuchat/searchcore/internal/search"
)

func newSearchCmd() *cobra.Command {
	var (
		scopeName    string
		requesterID  string
		groupID      string
		workspaceID  string
		documentID   string
		topN         int
		allowSharing bool
		docsDir      string
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Run a cached hybrid search over a local corpus",
		Long: `Indexes the corpus directory into in-memory per-scope backends and runs
the query through the cached merge pipeline.

The corpus directory is laid out by ownership scope:

    <docs>/personal/<user-id>/...
    <docs>/group/<group-id>/...
    <docs>/public/<workspace-id>/...

Each file is one document; blank-line-separated paragraphs are its chunks.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			scope, err := model.ParseScope(scopeName)
			if err != nil {
				return err
			}
			q := model.Query{
				Text:                    args[0],
				RequesterID:             requesterID,
				DocumentID:              documentID,
				Scope:                   scope,
				ActiveGroupID:           groupID,
				ActivePublicWorkspaceID: workspaceID,
				TopN:                    topN,
				AllowSharing:            allowSharing,
			}
			return runSearch(cmd.Context(), cmd, q, docsDir)
		},
	}

	cmd.Flags().StringVar(&scopeName, "scope", "personal", "Scope: personal, group, public, or all")
	cmd.Flags().StringVar(&requesterID, "requester", "", "Requester (user) ID")
	cmd.Flags().StringVar(&groupID, "group", "", "Active group ID")
	cmd.Flags().StringVar(&workspaceID, "workspace", "", "Active public workspace ID")
	cmd.Flags().StringVar(&documentID, "document", "", "Restrict results to one document ID")
	cmd.Flags().IntVar(&topN, "top-n", 0, "Maximum number of results (0 = default)")
	cmd.Flags().BoolVar(&allowSharing, "allow-sharing", true, "Consider sharing relationships in personal scope")
	cmd.Flags().StringVar(&docsDir, "docs", "docs", "Corpus directory to index")
	_ = cmd.MarkFlagRequired("requester")

	return cmd
}

func runSearch(ctx context.Context, cmd *cobra.Command, q model.Query, docsDir string) error {
	settings, err := config.Load(configPath)
	if err != nil {
		return err
	}

	meta, err := docmeta.NewSQLiteStore(settings.Metadata.Path)
	if err != nil {
		return err
	}
	defer meta.Close()

	embedder, err := buildEmbedder(settings.Embedding)
	if err != nil {
		return err
	}
	defer embedder.Close()

	backends, err := buildBackends(ctx, meta, embedder, docsDir)
	if err != nil {
		return err
	}

	engineCfg := search.EngineConfig{
		DefaultTopN:  settings.Search.DefaultTopN,
		MaxTopN:      settings.Search.MaxTopN,
		IndexTimeout: settings.Search.IndexTimeout(),
		EmbedTimeout: settings.Search.EmbedTimeout(),
	}
	engine, err := search.NewEngine(
		embedder,
		backends[model.ScopeKindPersonal],
		backends[model.ScopeKindGroup],
		backends[model.ScopeKindPublic],
		meta,
		engineCfg,
	)
	if err != nil {
		return err
	}
	defer engine.Close()

	store, err := buildCacheStore(ctx, settings)
	if err != nil {
		return err
	}
	defer store.Close()

	searcher, err := search.NewCachedSearcher(engine, fingerprint.NewService(meta), store, engineCfg)
	if err != nil {
		return err
	}

	results, err := searcher.Search(ctx, q)
	if err != nil {
		return err
	}

	if len(results) == 0 {
		cmd.Println("no results")
		return nil
	}
	for i, r := range results {
		cmd.Printf("%2d. %-30s  score=%.3f  index=%s  chunk=%d\n",
			i+1, r.FileName, r.Score, r.OriginalIndex, r.ChunkSequence)
		cmd.Printf("    %s\n", firstLine(r.ChunkText))
	}
	return nil
}

func buildEmbedder(cfg config.EmbeddingSettings) (embed.Embedder, error) {
	switch cfg.Provider {
	case "ollama":
		inner, err := embed.NewOllamaEmbedder(embed.OllamaConfig{
			Host:       cfg.Endpoint,
			Model:      cfg.Model,
			Dimensions: embed.StaticDimensions,
		})
		if err != nil {
			return nil, err
		}
		return embed.NewCachedEmbedder(inner, cfg.CacheSize), nil
	default:
		return embed.NewCachedEmbedder(embed.NewStaticEmbedder(), cfg.CacheSize), nil
	}
}

// buildBackends walks the corpus directory, records each file in the
// metadata store, and indexes its paragraph chunks into the backend for
// its ownership scope.
func buildBackends(ctx context.Context, meta *docmeta.SQLiteStore, embedder embed.Embedder, docsDir string) (map[model.ScopeKind]*index.LocalBackend, error) {
	backends := make(map[model.ScopeKind]*index.LocalBackend, 3)
	for _, kind := range []model.ScopeKind{model.ScopeKindPersonal, model.ScopeKindGroup, model.ScopeKindPublic} {
		b, err := index.NewLocalBackend(embedder.Dimensions())
		if err != nil {
			return nil, err
		}
		backends[kind] = b
	}

	if _, err := os.Stat(docsDir); os.IsNotExist(err) {
		return backends, nil
	}

	err := filepath.WalkDir(docsDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel, err := filepath.Rel(docsDir, path)
		if err != nil {
			return err
		}
		parts := strings.SplitN(filepath.ToSlash(rel), "/", 3)
		if len(parts) < 3 {
			return nil // not under <kind>/<owner-id>/
		}
		kind := model.ScopeKind(parts[0])
		backend, ok := backends[kind]
		if !ok {
			return nil
		}
		return indexFile(ctx, meta, embedder, backend, kind, parts[1], rel, path)
	})
	if err != nil {
		return nil, err
	}
	return backends, nil
}

func indexFile(ctx context.Context, meta *docmeta.SQLiteStore, embedder embed.Embedder, backend *index.LocalBackend, kind model.ScopeKind, ownerID, docID, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	fileName := filepath.Base(path)
	if err := meta.SaveDocument(ctx, docmeta.Document{
		ID:        docID,
		FileName:  fileName,
		OwnerKind: kind,
		OwnerID:   ownerID,
	}); err != nil {
		return err
	}

	var chunks []*index.Chunk
	for i, para := range splitParagraphs(string(data)) {
		vector, err := embedder.Embed(ctx, para)
		if err != nil {
			return fmt.Errorf("embed chunk %d of %s: %w", i+1, docID, err)
		}
		chunkMeta := model.Result{
			FileName:      fileName,
			Version:       1,
			ChunkSequence: i + 1,
		}
		switch kind {
		case model.ScopeKindGroup:
			chunkMeta.GroupID = ownerID
		case model.ScopeKindPublic:
			chunkMeta.PublicWorkspaceID = ownerID
		}
		chunks = append(chunks, &index.Chunk{
			ID:     fmt.Sprintf("%s#%d", docID, i+1),
			Text:   para,
			Vector: vector,
			Fields: filter.Fields{
				DocumentID: docID,
				OwnerKind:  kind,
				OwnerID:    ownerID,
			},
			Meta: chunkMeta,
		})
	}
	return backend.Add(ctx, chunks)
}

func buildCacheStore(ctx context.Context, settings config.Settings) (*cache.Store, error) {
	var kv cache.KV
	if settings.Cache.RedisAddr != "" {
		redisKV, err := cache.NewRedisKV(ctx, settings.Cache.RedisAddr)
		if err != nil {
			return nil, err
		}
		kv = redisKV
	} else {
		kv = cache.NewMemoryKV(settings.Cache.MaxEntries)
	}
	return cache.NewStore(kv, config.NewFileProvider(configPath)), nil
}

func splitParagraphs(text string) []string {
	var paras []string
	for _, p := range strings.Split(text, "\n\n") {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			paras = append(paras, trimmed)
		}
	}
	return paras
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	if len(s) > 120 {
		s = s[:120] + "..."
	}
	return s
}
