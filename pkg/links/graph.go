// Package links stores directed, optionally-bidirectional edges between
// documents and answers hierarchy, traceability, and impact-analysis queries.
// Cycles are not rejected at write time; all read traversals are cycle-safe
// by construction.
package links

import (
	"context"
	"errors"
	"fmt"

	"github.com/hashicorp/go-hclog"
	"gorm.io/gorm"

	"github.com/hashicorp-forge/curator/pkg/audit"
	"github.com/hashicorp-forge/curator/pkg/dcerr"
	"github.com/hashicorp-forge/curator/pkg/models"
)

// Direction selects which edges GetLinks returns.
type Direction string

const (
	DirectionOutbound Direction = "outbound"
	DirectionInbound  Direction = "inbound"
	DirectionBoth     Direction = "both"
)

// Graph is the document link store.
type Graph struct {
	db   *gorm.DB
	sink audit.Sink
	log  hclog.Logger
}

// NewGraph creates a link graph over db.
func NewGraph(db *gorm.DB, sink audit.Sink, log hclog.Logger) *Graph {
	if sink == nil {
		sink = audit.Nop{}
	}
	if log == nil {
		log = hclog.NewNullLogger()
	}
	return &Graph{
		db:   db,
		sink: sink,
		log:  log.Named("links"),
	}
}

// CreateLinkInput describes a new edge.
type CreateLinkInput struct {
	SourceDocumentID uint
	TargetDocumentID uint
	LinkType         models.LinkType
	IsBidirectional  bool
	Strength         models.LinkStrength
	ActorID          string
}

// CreateLink creates a directed edge, plus its mirror edge in the same
// transaction when the link is bidirectional. Self-loops and duplicate
// (source, target, type) triples are rejected.
func (g *Graph) CreateLink(ctx context.Context, in CreateLinkInput) (*models.DocumentLink, error) {
	if in.SourceDocumentID == in.TargetDocumentID {
		return nil, dcerr.New(dcerr.CodeConfigurationError,
			"link source and target must be different documents")
	}

	reverse, ok := ReverseType(in.LinkType)
	if !ok {
		return nil, dcerr.New(dcerr.CodeConfigurationError,
			"unknown link type %q", in.LinkType)
	}

	strength := in.Strength
	if strength == "" {
		strength = models.StrengthMedium
	}

	var link models.DocumentLink
	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, id := range []uint{in.SourceDocumentID, in.TargetDocumentID} {
			var doc models.Document
			if err := doc.Get(tx, id); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return dcerr.New(dcerr.CodeNotFound, "document %d not found", id)
				}
				return fmt.Errorf("error loading document: %w", err)
			}
		}

		if _, err := models.FindLink(tx, in.SourceDocumentID, in.TargetDocumentID, in.LinkType); err == nil {
			return dcerr.New(dcerr.CodeDuplicateIdentifier,
				"link %s already exists from document %d to %d",
				in.LinkType, in.SourceDocumentID, in.TargetDocumentID)
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("error checking for duplicate link: %w", err)
		}

		link = models.DocumentLink{
			SourceDocumentID: in.SourceDocumentID,
			TargetDocumentID: in.TargetDocumentID,
			LinkType:         in.LinkType,
			IsBidirectional:  in.IsBidirectional,
			Strength:         strength,
			CreatedBy:        in.ActorID,
		}
		if err := link.Create(tx); err != nil {
			return fmt.Errorf("error creating link: %w", err)
		}

		if in.IsBidirectional {
			if _, err := models.FindLink(tx, in.TargetDocumentID, in.SourceDocumentID, reverse); err == nil {
				return dcerr.New(dcerr.CodeDuplicateIdentifier,
					"mirror link %s already exists from document %d to %d",
					reverse, in.TargetDocumentID, in.SourceDocumentID)
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("error checking for duplicate mirror link: %w", err)
			}

			mirror := models.DocumentLink{
				SourceDocumentID: in.TargetDocumentID,
				TargetDocumentID: in.SourceDocumentID,
				LinkType:         reverse,
				IsBidirectional:  true,
				Strength:         strength,
				CreatedBy:        in.ActorID,
			}
			if err := mirror.Create(tx); err != nil {
				return fmt.Errorf("error creating mirror link: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	g.log.Info("created link",
		"source", in.SourceDocumentID,
		"target", in.TargetDocumentID,
		"type", in.LinkType,
		"bidirectional", in.IsBidirectional,
	)

	entry := audit.NewEntry("link.create", in.ActorID)
	entry.DocumentID = in.SourceDocumentID
	entry.After = map[string]any{
		"target": in.TargetDocumentID,
		"type":   string(in.LinkType),
	}
	if err := g.sink.Append(ctx, entry); err != nil {
		g.log.Warn("failed to append audit entry", "error", err)
	}

	return &link, nil
}

// RemoveLink deletes the edge for an ordered (source, target, type) triple.
// A bidirectional edge's mirror is removed in the same transaction,
// regardless of which of the pair was named.
func (g *Graph) RemoveLink(ctx context.Context, sourceID, targetID uint, linkType models.LinkType, actorID string) error {
	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		link, err := models.FindLink(tx, sourceID, targetID, linkType)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return dcerr.New(dcerr.CodeNotFound,
					"no %s link from document %d to %d", linkType, sourceID, targetID)
			}
			return fmt.Errorf("error loading link: %w", err)
		}

		if err := tx.Delete(&models.DocumentLink{}, link.ID).Error; err != nil {
			return fmt.Errorf("error deleting link: %w", err)
		}

		if link.IsBidirectional {
			reverse, ok := ReverseType(linkType)
			if !ok {
				return dcerr.New(dcerr.CodeConfigurationError,
					"unknown link type %q", linkType)
			}
			mirror, err := models.FindLink(tx, targetID, sourceID, reverse)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					// Mirror already gone; nothing left to keep symmetric.
					return nil
				}
				return fmt.Errorf("error loading mirror link: %w", err)
			}
			if err := tx.Delete(&models.DocumentLink{}, mirror.ID).Error; err != nil {
				return fmt.Errorf("error deleting mirror link: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	g.log.Info("removed link",
		"source", sourceID,
		"target", targetID,
		"type", linkType,
	)

	entry := audit.NewEntry("link.remove", actorID)
	entry.DocumentID = sourceID
	entry.Before = map[string]any{
		"target": targetID,
		"type":   string(linkType),
	}
	if err := g.sink.Append(ctx, entry); err != nil {
		g.log.Warn("failed to append audit entry", "error", err)
	}

	return nil
}

// GetLinks returns a document's edges in the requested direction.
func (g *Graph) GetLinks(ctx context.Context, documentID uint, direction Direction) ([]models.DocumentLink, error) {
	db := g.db.WithContext(ctx)
	switch direction {
	case DirectionOutbound:
		return models.OutboundLinks(db, documentID)
	case DirectionInbound:
		return models.InboundLinks(db, documentID)
	case DirectionBoth, "":
		outbound, err := models.OutboundLinks(db, documentID)
		if err != nil {
			return nil, err
		}
		inbound, err := models.InboundLinks(db, documentID)
		if err != nil {
			return nil, err
		}
		return append(outbound, inbound...), nil
	default:
		return nil, dcerr.New(dcerr.CodeConfigurationError,
			"unknown link direction %q", direction)
	}
}
