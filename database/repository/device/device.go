package deviceRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"petcare/database"
	"petcare/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrNoDevice = errors.New("no push device registered")

// DeviceRepository looks up push targets. Token registration is handled by another service.
type DeviceRepository interface {
	LatestForSubject(ctx context.Context, subjectRef string) (*models.Device, error)
}

type mongoDeviceRepo struct {
	coll *mongo.Collection
}

func NewMongoDeviceRepo() DeviceRepository {
	return &mongoDeviceRepo{coll: database.DB().Collection("devices")}
}

// LatestForSubject returns the most recently refreshed token for the subject.
func (r *mongoDeviceRepo) LatestForSubject(ctx context.Context, subjectRef string) (*models.Device, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"subjectRef": subjectRef, "fcmToken": bson.M{"$ne": ""}}
	opts := options.FindOne().SetSort(bson.D{{Key: "updatedAt", Value: -1}})

	var d models.Device
	err := r.coll.FindOne(ctx, filter, opts).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNoDevice
	}
	if err != nil {
		return nil, fmt.Errorf("error fetching device for %s: %w", subjectRef, err)
	}
	return &d, nil
}
