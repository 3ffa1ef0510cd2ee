// File: database/repository/catalog/catalog.go
package catalogRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"petcare/database"
	"petcare/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

var ErrNotFound = errors.New("catalog entry not found")

// CatalogRepository reads scheduling and pricing data owned by catalog administration.
type CatalogRepository interface {
	GetAvailabilitySettings(ctx context.Context, category string) (*models.AvailabilitySettings, error)
	GetServicePrice(ctx context.Context, serviceRef string, location models.LocationType) (*models.ServicePrice, error)
}

type mongoCatalogRepo struct {
	settingsColl *mongo.Collection
	pricesColl   *mongo.Collection
}

// NewMongoCatalogRepo constructs a new MongoDB CatalogRepository.
func NewMongoCatalogRepo() CatalogRepository {
	db := database.DB()
	return &mongoCatalogRepo{
		settingsColl: db.Collection("availability_settings"),
		pricesColl:   db.Collection("service_prices"),
	}
}

func (r *mongoCatalogRepo) GetAvailabilitySettings(ctx context.Context, category string) (*models.AvailabilitySettings, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var settings models.AvailabilitySettings
	err := r.settingsColl.FindOne(ctx, bson.M{"serviceCategory": category}).Decode(&settings)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error fetching availability settings for %s: %w", category, err)
	}
	return &settings, nil
}

func (r *mongoCatalogRepo) GetServicePrice(ctx context.Context, serviceRef string, location models.LocationType) (*models.ServicePrice, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var price models.ServicePrice
	filter := bson.M{"serviceRef": serviceRef, "locationType": location}
	err := r.pricesColl.FindOne(ctx, filter).Decode(&price)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error fetching price for %s/%s: %w", serviceRef, location, err)
	}
	return &price, nil
}
