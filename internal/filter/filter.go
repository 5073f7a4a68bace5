// Package filter models backend index access filters as a small expression
// tree instead of hand-built predicate strings. Each node renders to the
// backend-native boolean syntax and can also be evaluated in-process against
// document fields, which keeps scope-filter logic testable independent of
// any backend.
package filter

import (
	"fmt"
	"strings"

	"github.com/docuchat/searchcore/internal/model"
)

// StatusApproved is the share status that grants visibility.
const StatusApproved = "approved"

// Fields holds the indexed ownership fields of one document chunk that
// filters evaluate against.
type Fields struct {
	// DocumentID is the parent document identifier.
	DocumentID string

	// OwnerKind and OwnerID identify the owning scope.
	OwnerKind model.ScopeKind
	OwnerID   string

	// SharedWith maps principal ID (user or group) to share status.
	SharedWith map[string]string
}

// Expression is a boolean predicate over indexed document fields.
type Expression interface {
	// Render produces the backend-native filter string.
	Render() string

	// Matches evaluates the predicate against one document's fields.
	Matches(f Fields) bool
}

// OwnedBy matches documents owned by one concrete scope.
type OwnedBy struct {
	Kind model.ScopeKind
	ID   string
}

func (o OwnedBy) Render() string {
	return fmt.Sprintf("(owner_kind eq '%s' and owner_id eq '%s')", escape(string(o.Kind)), escape(o.ID))
}

func (o OwnedBy) Matches(f Fields) bool {
	return f.OwnerKind == o.Kind && f.OwnerID == o.ID
}

// SharedWith matches documents shared with a principal at a given status.
type SharedWith struct {
	PrincipalID string
	Status      string
}

func (s SharedWith) Render() string {
	return fmt.Sprintf("shared_with/any(s: s eq '%s:%s')", escape(s.PrincipalID), escape(s.Status))
}

func (s SharedWith) Matches(f Fields) bool {
	return f.SharedWith[s.PrincipalID] == s.Status
}

// DocumentIs restricts results to a single document.
type DocumentIs struct {
	ID string
}

func (d DocumentIs) Render() string {
	return fmt.Sprintf("document_id eq '%s'", escape(d.ID))
}

func (d DocumentIs) Matches(f Fields) bool {
	return f.DocumentID == d.ID
}

// WorkspaceIn matches documents owned by any of the listed public workspaces.
type WorkspaceIn struct {
	IDs []string
}

func (w WorkspaceIn) Render() string {
	escaped := make([]string, len(w.IDs))
	for i, id := range w.IDs {
		escaped[i] = escape(id)
	}
	return fmt.Sprintf("search.in(owner_id, '%s', ',')", strings.Join(escaped, ","))
}

func (w WorkspaceIn) Matches(f Fields) bool {
	if f.OwnerKind != model.ScopeKindPublic {
		return false
	}
	for _, id := range w.IDs {
		if f.OwnerID == id {
			return true
		}
	}
	return false
}

// And matches when every child matches. An empty And matches everything.
type And struct {
	Children []Expression
}

func (a And) Render() string { return renderJoined(a.Children, "and") }

func (a And) Matches(f Fields) bool {
	for _, c := range a.Children {
		if !c.Matches(f) {
			return false
		}
	}
	return true
}

// Or matches when any child matches. An empty Or matches nothing.
type Or struct {
	Children []Expression
}

func (o Or) Render() string { return renderJoined(o.Children, "or") }

func (o Or) Matches(f Fields) bool {
	for _, c := range o.Children {
		if c.Matches(f) {
			return true
		}
	}
	return false
}

// NewAnd builds an And, flattening out the single-child case.
func NewAnd(children ...Expression) Expression {
	if len(children) == 1 {
		return children[0]
	}
	return And{Children: children}
}

// NewOr builds an Or, flattening out the single-child case.
func NewOr(children ...Expression) Expression {
	if len(children) == 1 {
		return children[0]
	}
	return Or{Children: children}
}

func renderJoined(children []Expression, op string) string {
	if len(children) == 0 {
		return ""
	}
	parts := make([]string, len(children))
	for i, c := range children {
		parts[i] = c.Render()
	}
	return "(" + strings.Join(parts, " "+op+" ") + ")"
}

// escape doubles single quotes per the backend's string-literal rules.
func escape(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
