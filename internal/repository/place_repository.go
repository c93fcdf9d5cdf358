package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/shrutiikadam/UrbanDepot1/internal/domain"
	"github.com/shrutiikadam/UrbanDepot1/internal/domain/geo"
)

// PlaceModel is the GORM model for the parking_places table.
type PlaceModel struct {
	ID        string    `gorm:"primaryKey;size:64"`
	Name      string    `gorm:"size:200"`
	Latitude  float64   `gorm:"not null"`
	Longitude float64   `gorm:"not null"`
	Active    bool      `gorm:"not null;default:true;index"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (PlaceModel) TableName() string {
	return "parking_places"
}

// GormPlaceRepository is the GORM-based implementation of geo.PlaceRepository.
type GormPlaceRepository struct {
	db *gorm.DB
}

// NewGormPlaceRepository creates a new GormPlaceRepository.
func NewGormPlaceRepository(db *gorm.DB) *GormPlaceRepository {
	return &GormPlaceRepository{db: db}
}

// ListPlaces returns every active place. Rows with invalid coordinates are
// skipped.
func (r *GormPlaceRepository) ListPlaces(ctx context.Context) ([]geo.Place, error) {
	var models []PlaceModel
	if err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("id ASC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list places: %w", err)
	}

	places := make([]geo.Place, 0, len(models))
	for i := range models {
		p, err := toDomainPlace(&models[i])
		if err != nil {
			continue
		}
		places = append(places, p)
	}
	return places, nil
}

// FindByID retrieves a place by its identifier.
func (r *GormPlaceRepository) FindByID(ctx context.Context, id string) (geo.Place, error) {
	var model PlaceModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return geo.Place{}, domain.NewNotFoundError("Place", id)
		}
		return geo.Place{}, fmt.Errorf("failed to find place by ID: %w", err)
	}
	return toDomainPlace(&model)
}

// Save creates or updates a place. Saved places are active.
func (r *GormPlaceRepository) Save(ctx context.Context, p geo.Place) error {
	model := toPlaceModel(p)
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "latitude", "longitude", "active", "updated_at"}),
		}).
		Create(model).Error; err != nil {
		return fmt.Errorf("failed to save place: %w", err)
	}
	return nil
}

func toPlaceModel(p geo.Place) *PlaceModel {
	now := time.Now().UTC()
	return &PlaceModel{
		ID:        p.ID,
		Name:      p.Name,
		Latitude:  p.Location.Lat,
		Longitude: p.Location.Lng,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func toDomainPlace(m *PlaceModel) (geo.Place, error) {
	return geo.NewCatalogPlace(m.ID, m.Name, m.Latitude, m.Longitude)
}
