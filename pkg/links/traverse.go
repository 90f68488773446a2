package links

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/hashicorp-forge/curator/pkg/dcerr"
	"github.com/hashicorp-forge/curator/pkg/models"
)

// HierarchyNode is one document in a parent-child tree.
type HierarchyNode struct {
	Document models.Document  `json:"document"`
	Children []*HierarchyNode `json:"children,omitempty"`
}

// TraceEntry is one document reached during a traceability trace.
type TraceEntry struct {
	Document models.Document `json:"document"`
	LinkType models.LinkType `json:"linkType"`
	Depth    int             `json:"depth"`
}

// TraceabilityMatrix is the combined upstream and downstream closure of a
// document's links, bounded by depth.
type TraceabilityMatrix struct {
	DocumentID uint         `json:"documentId"`
	Upstream   []TraceEntry `json:"upstream"`
	Downstream []TraceEntry `json:"downstream"`
}

// GetHierarchy builds the parent-child tree rooted at a document, bounded by
// maxDepth levels of children. A visited set guarantees termination even when
// the underlying edges contain a cycle.
func (g *Graph) GetHierarchy(ctx context.Context, documentID uint, maxDepth int) (*HierarchyNode, error) {
	if maxDepth < 1 {
		return nil, dcerr.New(dcerr.CodeCycleOrDepthExceeded,
			"hierarchy depth must be at least 1, got %d", maxDepth)
	}

	db := g.db.WithContext(ctx)

	var root models.Document
	if err := root.Get(db, documentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, dcerr.New(dcerr.CodeNotFound, "document %d not found", documentID)
		}
		return nil, fmt.Errorf("error loading document: %w", err)
	}

	visited := map[uint]bool{documentID: true}
	node := &HierarchyNode{Document: root}
	if err := g.expandChildren(db, node, visited, maxDepth); err != nil {
		return nil, err
	}
	return node, nil
}

// expandChildren recursively attaches children reached over parent-child
// edges, skipping already-visited documents.
func (g *Graph) expandChildren(db *gorm.DB, node *HierarchyNode, visited map[uint]bool, remaining int) error {
	if remaining <= 0 {
		return nil
	}

	edges, err := models.OutboundLinks(db, node.Document.ID)
	if err != nil {
		return fmt.Errorf("error loading links: %w", err)
	}

	for _, edge := range edges {
		if edge.LinkType != models.LinkParentChild {
			continue
		}
		if visited[edge.TargetDocumentID] {
			continue
		}
		visited[edge.TargetDocumentID] = true

		var child models.Document
		if err := child.Get(db, edge.TargetDocumentID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				// Soft-deleted child; the edge stays but the tree skips it.
				continue
			}
			return fmt.Errorf("error loading document: %w", err)
		}

		childNode := &HierarchyNode{Document: child}
		if err := g.expandChildren(db, childNode, visited, remaining-1); err != nil {
			return err
		}
		node.Children = append(node.Children, childNode)
	}
	return nil
}

// GetTraceabilityMatrix traces upstream (documents this one depends on,
// reached over inbound edges) and downstream (documents depending on this
// one, reached over outbound edges) closures, bounded by depth.
func (g *Graph) GetTraceabilityMatrix(ctx context.Context, documentID uint, depth int) (*TraceabilityMatrix, error) {
	if depth < 1 {
		return nil, dcerr.New(dcerr.CodeCycleOrDepthExceeded,
			"traceability depth must be at least 1, got %d", depth)
	}

	db := g.db.WithContext(ctx)

	var doc models.Document
	if err := doc.Get(db, documentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, dcerr.New(dcerr.CodeNotFound, "document %d not found", documentID)
		}
		return nil, fmt.Errorf("error loading document: %w", err)
	}

	upstream, err := g.trace(db, documentID, depth, true)
	if err != nil {
		return nil, err
	}
	downstream, err := g.trace(db, documentID, depth, false)
	if err != nil {
		return nil, err
	}

	return &TraceabilityMatrix{
		DocumentID: documentID,
		Upstream:   upstream,
		Downstream: downstream,
	}, nil
}

// trace walks the graph breadth-first in one direction, cycle-safe via a
// visited set.
func (g *Graph) trace(db *gorm.DB, rootID uint, maxDepth int, inbound bool) ([]TraceEntry, error) {
	type frontier struct {
		id    uint
		depth int
	}

	visited := map[uint]bool{rootID: true}
	queue := []frontier{{id: rootID, depth: 0}}
	var entries []TraceEntry

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur.depth >= maxDepth {
			continue
		}

		var (
			edges []models.DocumentLink
			err   error
		)
		if inbound {
			edges, err = models.InboundLinks(db, cur.id)
		} else {
			edges, err = models.OutboundLinks(db, cur.id)
		}
		if err != nil {
			return nil, fmt.Errorf("error loading links: %w", err)
		}

		for _, edge := range edges {
			next := edge.TargetDocumentID
			if inbound {
				next = edge.SourceDocumentID
			}
			if visited[next] {
				continue
			}
			visited[next] = true

			var doc models.Document
			if err := doc.Get(db, next); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					continue
				}
				return nil, fmt.Errorf("error loading document: %w", err)
			}

			entries = append(entries, TraceEntry{
				Document: doc,
				LinkType: edge.LinkType,
				Depth:    cur.depth + 1,
			})
			queue = append(queue, frontier{id: next, depth: cur.depth + 1})
		}
	}

	return entries, nil
}
