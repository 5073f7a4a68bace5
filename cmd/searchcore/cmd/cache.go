package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/docuchat/searchcore/internal/cache"
	"github.com/docuchat/searchcore/internal/config"
	"github.com/docuchat/searchcore/internal/model"
)

func newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Administer the search result cache",
	}
	cmd.AddCommand(newCacheClearCmd())
	cmd.AddCommand(newCacheInvalidateCmd())
	return cmd
}

func newCacheClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached result set across all partitions",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openSharedCacheStore(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			removed := store.Clear(cmd.Context())
			cmd.Printf("removed %d entries\n", removed)
			return nil
		},
	}
}

func newCacheInvalidateCmd() *cobra.Command {
	var (
		kindName string
		scopeID  string
	)

	cmd := &cobra.Command{
		Use:   "invalidate",
		Short: "Remove cached result sets for one scope's partition",
		RunE: func(cmd *cobra.Command, args []string) error {
			kind := model.ScopeKind(kindName)
			switch kind {
			case model.ScopeKindPersonal, model.ScopeKindGroup, model.ScopeKindPublic:
			default:
				return fmt.Errorf("--kind must be personal, group, or public, got %q", kindName)
			}

			store, err := openSharedCacheStore(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			partition := cache.PartitionForScopeKind(kind, scopeID)
			removed := store.DeleteWhere(cmd.Context(), partition)
			cmd.Printf("removed %d entries from partition %s\n", removed, partition)
			return nil
		},
	}

	cmd.Flags().StringVar(&kindName, "kind", "personal", "Scope kind: personal, group, or public")
	cmd.Flags().StringVar(&scopeID, "id", "", "Scope ID (user, group, or workspace)")
	_ = cmd.MarkFlagRequired("id")

	return cmd
}

// openSharedCacheStore connects to the configured Redis cache. The
// in-memory backend is per-process, so administering it from a separate
// CLI invocation would be a no-op.
func openSharedCacheStore(cmd *cobra.Command) (*cache.Store, error) {
	settings, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if settings.Cache.RedisAddr == "" {
		return nil, fmt.Errorf("cache administration requires cache.redis_addr in %s", configPath)
	}
	kv, err := cache.NewRedisKV(cmd.Context(), settings.Cache.RedisAddr)
	if err != nil {
		return nil, err
	}
	return cache.NewStore(kv, config.NewFileProvider(configPath)), nil
}
