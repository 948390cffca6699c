package deviceRepo

import (
	"context"
	"errors"

	"wellbook/database"
	"wellbook/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// ErrDeviceNotFound is returned when an account has no registered push token.
var ErrDeviceNotFound = errors.New("device token not found")

type DeviceRepository interface {
	Upsert(ctx context.Context, token models.DeviceToken) error
	GetByAccount(ctx context.Context, accountID string) (*models.DeviceToken, error)
	EnsureIndexes() error
}

type mongoDeviceRepo struct {
	coll *mongo.Collection
}

// NewMongoDeviceRepo constructs a new MongoDB DeviceRepository.
func NewMongoDeviceRepo() DeviceRepository {
	return &mongoDeviceRepo{coll: database.Database().Collection("device_tokens")}
}
