package deviceRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"wellbook/models"
	"wellbook/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Upsert stores the latest push token for an account; one token per account.
func (r *mongoDeviceRepo) Upsert(ctx context.Context, token models.DeviceToken) error {
	ctx, cancel := context.WithTimeout(ctx, utils.DefaultTimeout)
	defer cancel()

	token.UpdatedAt = time.Now().UTC()
	_, err := r.coll.ReplaceOne(ctx,
		bson.M{"account_id": token.AccountID},
		token,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert device token: %w", err)
	}
	return nil
}

func (r *mongoDeviceRepo) GetByAccount(ctx context.Context, accountID string) (*models.DeviceToken, error) {
	ctx, cancel := context.WithTimeout(ctx, utils.DefaultTimeout)
	defer cancel()

	var token models.DeviceToken
	if err := r.coll.FindOne(ctx, bson.M{"account_id": accountID}).Decode(&token); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrDeviceNotFound
		}
		return nil, fmt.Errorf("error fetching device token for %s: %w", accountID, err)
	}
	return &token, nil
}

func (r *mongoDeviceRepo) EnsureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "account_id", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("unique_account"),
	})
	if err != nil {
		return fmt.Errorf("failed to create device token indexes: %w", err)
	}
	return nil
}
