package geo

import "context"

// PlaceRepository defines the persistence contract for the platform's
// registered parking places.
type PlaceRepository interface {
	// ListPlaces returns every active place, ordered by ID.
	ListPlaces(ctx context.Context) ([]Place, error)

	// FindByID retrieves a place by its identifier.
	FindByID(ctx context.Context, id string) (Place, error)

	// Save creates or updates a place.
	Save(ctx context.Context, place Place) error
}
