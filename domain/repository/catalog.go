package repository

import (
	"context"

	"clipcast/domain/model"
)

// ICatalog stores the user's content library and connected accounts
type ICatalog interface {
	CreateContent(ctx context.Context, items []model.ContentItem) error
	GetContent(ctx context.Context, userID, contentID string) (*model.ContentItem, error)
	ListContent(ctx context.Context, userID string) ([]model.ContentItem, error)
	// FindContentByIDs returns the matching rows once each, in no particular order
	FindContentByIDs(ctx context.Context, userID string, ids []string) ([]model.ContentItem, error)

	CreateDestination(ctx context.Context, dest *model.Destination) error
	ListDestinations(ctx context.Context, userID string) ([]model.Destination, error)
	FindDestinationsByIDs(ctx context.Context, userID string, ids []string) ([]model.Destination, error)
	SetDestinationActive(ctx context.Context, userID, destinationID string, active bool) (*model.Destination, error)
	Ping(ctx context.Context) error
}
