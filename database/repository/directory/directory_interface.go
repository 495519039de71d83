package directoryRepo

import (
	"context"
	"errors"

	"stylora/models"
)

// ErrNotFound is returned when the referenced stylist or user does not exist.
var ErrNotFound = errors.New("record not found")

// DirectoryRepository is the narrow read-model view of stylist and user
// records consumed by the booking engine: pricing and push targets. Full
// profile joins are a query-layer concern outside this core.
type DirectoryRepository interface {
	GetStylist(ctx context.Context, stylistID string) (*models.StylistProfile, error)
	GetUser(ctx context.Context, userID string) (*models.UserProfile, error)
}
