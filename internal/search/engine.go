package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/docuchat/searchcore/internal/docmeta"
	"github.com/docuchat/searchcore/internal/embed"
	apperrors "github.com/docuchat/searchcore/internal/errors"
	"github.com/docuchat/searchcore/internal/filter"
	"github.com/docuchat/searchcore/internal/index"
	"github.com/docuchat/searchcore/internal/model"
)

// ErrNilDependency is returned when a required dependency is nil.
var ErrNilDependency = errors.New("nil dependency")

// Engine routes a query to the applicable backend index(es), normalizes
// each index's hits independently, and merges them under one relevance
// ordering. It never consults the cache; see CachedSearcher for that.
type Engine struct {
	embedder   embed.Embedder
	personal   index.Backend
	group      index.Backend
	public     index.Backend
	visibility docmeta.VisibilityStore
	config     EngineConfig
}

var _ Searcher = (*Engine)(nil)

// NewEngine creates a merge engine over the three scope backends.
// The visibility store may be nil; public filtering then falls back to the
// query's active workspace.
func NewEngine(
	embedder embed.Embedder,
	personal, group, public index.Backend,
	visibility docmeta.VisibilityStore,
	config EngineConfig,
) (*Engine, error) {
	if embedder == nil {
		return nil, fmt.Errorf("%w: embedder is required", ErrNilDependency)
	}
	if personal == nil || group == nil || public == nil {
		return nil, fmt.Errorf("%w: all three scope backends are required", ErrNilDependency)
	}
	if config.DefaultTopN <= 0 {
		config = DefaultEngineConfig()
	}
	return &Engine{
		embedder:   embedder,
		personal:   personal,
		group:      group,
		public:     public,
		visibility: visibility,
		config:     config,
	}, nil
}

// branch is one scope's sub-query in a fan-out.
type branch struct {
	label   string
	backend index.Backend
	expr    filter.Expression
}

// Search executes an uncached search.
//
// Failure policy: an embedding failure is fatal (an un-embedded query
// cannot be scored meaningfully); a single-scope index failure is fatal
// (there is no other branch to fall back to); in all-scope fan-out a
// failed or timed-out branch degrades to an empty contribution without
// cancelling its siblings.
func (e *Engine) Search(ctx context.Context, q model.Query) ([]model.Result, error) {
	if strings.TrimSpace(q.Text) == "" {
		return nil, apperrors.New(apperrors.ErrCodeQueryEmpty, "query text is empty", nil)
	}
	if !q.Scope.Valid() {
		return nil, apperrors.New(apperrors.ErrCodeInvalidScope, fmt.Sprintf("invalid scope %q", q.Scope), nil)
	}
	q = e.config.ApplyDefaults(q)

	embedCtx, cancel := context.WithTimeout(ctx, e.config.EmbedTimeout)
	defer cancel()
	vector, err := e.embedder.Embed(embedCtx, q.Text)
	if err != nil {
		return nil, apperrors.EmbeddingError("embed query", err)
	}

	branches := e.resolveBranches(ctx, q)

	if q.Scope != model.ScopeAll {
		// Single scope: exactly one branch, and its failure is the request's.
		hits, err := e.queryBranch(ctx, branches[0], vector, q)
		if err != nil {
			return nil, apperrors.IndexError(fmt.Sprintf("%s index query", branches[0].label), err)
		}
		return MergeAndSort(q.TopN, Normalize(hits, branches[0].label)), nil
	}

	// All-scope fan-out: branches are independent (different backends,
	// disjoint filters), so they run concurrently and the merge waits for
	// every branch to finish or fail.
	lists := make([][]model.Result, len(branches))
	g, _ := errgroup.WithContext(ctx)
	for i, br := range branches {
		g.Go(func() error {
			hits, err := e.queryBranch(ctx, br, vector, q)
			if err != nil {
				slog.Warn("index branch degraded to empty",
					slog.String("index", br.label),
					slog.String("error", err.Error()))
				return nil
			}
			lists[i] = hits
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	normalized := make([][]model.Result, len(lists))
	for i, hits := range lists {
		normalized[i] = Normalize(hits, branches[i].label)
	}
	return MergeAndSort(q.TopN, normalized...), nil
}

// queryBranch runs one backend query under its own timeout. A branch
// timeout is a branch failure; it never cancels sibling branches.
func (e *Engine) queryBranch(ctx context.Context, br branch, vector []float32, q model.Query) ([]model.Result, error) {
	branchCtx, cancel := context.WithTimeout(ctx, e.config.IndexTimeout)
	defer cancel()
	return br.backend.Query(branchCtx, vector, q.Text, br.expr, q.TopN)
}

// resolveBranches maps the query's scope to the backend sub-queries to run.
// For all scope only branches with a resolvable scope identifier apply.
func (e *Engine) resolveBranches(ctx context.Context, q model.Query) []branch {
	var branches []branch

	if q.Scope == model.ScopePersonal || q.Scope == model.ScopeAll {
		branches = append(branches, branch{
			label:   IndexPersonal,
			backend: e.personal,
			expr:    e.personalFilter(q),
		})
	}
	if (q.Scope == model.ScopeGroup || q.Scope == model.ScopeAll) && q.ActiveGroupID != "" {
		branches = append(branches, branch{
			label:   IndexGroup,
			backend: e.group,
			expr:    e.groupFilter(q),
		})
	}
	if (q.Scope == model.ScopePublic || q.Scope == model.ScopeAll) && q.ActivePublicWorkspaceID != "" {
		branches = append(branches, branch{
			label:   IndexPublic,
			backend: e.public,
			expr:    e.publicFilter(ctx, q),
		})
	}

	// Group or public scope without its identifier still queries its own
	// backend, with a filter that matches nothing.
	if len(branches) == 0 {
		switch q.Scope {
		case model.ScopeGroup:
			branches = append(branches, branch{label: IndexGroup, backend: e.group, expr: filter.Or{}})
		case model.ScopePublic:
			branches = append(branches, branch{label: IndexPublic, backend: e.public, expr: filter.Or{}})
		}
	}
	return branches
}

// personalFilter builds: owned by requester OR (if sharing allowed) shared
// with requester at approved status, AND the document filter when present.
func (e *Engine) personalFilter(q model.Query) filter.Expression {
	ors := []filter.Expression{
		filter.OwnedBy{Kind: model.ScopeKindPersonal, ID: q.RequesterID},
	}
	if q.AllowSharing {
		ors = append(ors, filter.SharedWith{PrincipalID: q.RequesterID, Status: filter.StatusApproved})
	}
	return withDocument(filter.NewOr(ors...), q.DocumentID)
}

// groupFilter builds: owned by the active group OR shared with it at
// approved status, AND the document filter when present.
func (e *Engine) groupFilter(q model.Query) filter.Expression {
	expr := filter.NewOr(
		filter.OwnedBy{Kind: model.ScopeKindGroup, ID: q.ActiveGroupID},
		filter.SharedWith{PrincipalID: q.ActiveGroupID, Status: filter.StatusApproved},
	)
	return withDocument(expr, q.DocumentID)
}

// publicFilter builds membership in the requester's visible workspace set,
// falling back to just the active workspace when the set is empty or the
// settings store is unavailable.
func (e *Engine) publicFilter(ctx context.Context, q model.Query) filter.Expression {
	visible := []string{q.ActivePublicWorkspaceID}
	if e.visibility != nil {
		ids, err := e.visibility.VisiblePublicWorkspaceIDs(ctx, q.RequesterID)
		if err != nil {
			slog.Warn("visibility lookup failed, using active workspace",
				slog.String("requester", q.RequesterID),
				slog.String("error", err.Error()))
		} else if len(ids) > 0 {
			visible = ids
		}
	}
	return withDocument(filter.WorkspaceIn{IDs: visible}, q.DocumentID)
}

func withDocument(expr filter.Expression, documentID string) filter.Expression {
	if documentID == "" {
		return expr
	}
	return filter.NewAnd(expr, filter.DocumentIs{ID: documentID})
}

// Close releases all three backends.
func (e *Engine) Close() error {
	var errs []error
	for _, b := range []index.Backend{e.personal, e.group, e.public} {
		if err := b.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// Timeout returns the per-branch index timeout (exposed for callers that
// budget an overall request deadline).
func (e *Engine) Timeout() time.Duration {
	return e.config.IndexTimeout
}
