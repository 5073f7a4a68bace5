package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/docuchat/searchcore/internal/config"
	"github.com/docuchat/searchcore/internal/docmeta"
	"github.com/docuchat/searchcore/internal/fingerprint"
	"github.com/docuchat/searchcore/internal/model"
)

func newFingerprintCmd() *cobra.Command {
	var (
		kindName string
		scopeID  string
	)

	cmd := &cobra.Command{
		Use:   "fingerprint",
		Short: "Print the document-set fingerprint for one scope",
		Long: `Computes the content hash over the sorted (document_id, version) pairs
visible under one ownership scope. Any upload, delete, or version bump in
the scope changes the printed value.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			kind := model.ScopeKind(kindName)
			switch kind {
			case model.ScopeKindPersonal, model.ScopeKindGroup, model.ScopeKindPublic:
			default:
				return fmt.Errorf("--kind must be personal, group, or public, got %q", kindName)
			}

			settings, err := config.Load(configPath)
			if err != nil {
				return err
			}
			meta, err := docmeta.NewSQLiteStore(settings.Metadata.Path)
			if err != nil {
				return err
			}
			defer meta.Close()

			fp := fingerprint.NewService(meta).Fingerprint(cmd.Context(), kind, scopeID)
			cmd.Println(fp)
			return nil
		},
	}

	cmd.Flags().StringVar(&kindName, "kind", "personal", "Scope kind: personal, group, or public")
	cmd.Flags().StringVar(&scopeID, "id", "", "Scope ID (user, group, or workspace)")
	_ = cmd.MarkFlagRequired("id")

	return cmd
}
