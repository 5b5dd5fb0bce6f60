package cart

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"medirent/db"
	"medirent/models"
)

// legacyOwner marks the single pre-multi-user cart document. It is adopted
// by the first user who loads a cart and has none of their own, then deleted,
// so the migration runs at most once.
const legacyOwner = "__global__"

// Load returns the user's persisted cart, adopting the legacy global cart
// if the user has none yet. A missing cart comes back empty, never nil.
func Load(ctx context.Context, userID string) (*models.Cart, error) {
	var c models.Cart
	err := db.CartsCollection.FindOne(ctx, bson.M{"userId": userID}).Decode(&c)
	if err == nil {
		return &c, nil
	}
	if err != mongo.ErrNoDocuments {
		return nil, err
	}

	// No per-user cart; check for a legacy global one to adopt.
	var legacy models.Cart
	err = db.CartsCollection.FindOne(ctx, bson.M{"userId": legacyOwner}).Decode(&legacy)
	if err == nil {
		legacy.UserID = userID
		if err := Save(ctx, &legacy); err != nil {
			return nil, err
		}
		_, _ = db.CartsCollection.DeleteOne(ctx, bson.M{"userId": legacyOwner})
		return &legacy, nil
	}
	if err != mongo.ErrNoDocuments {
		return nil, err
	}

	return &models.Cart{UserID: userID}, nil
}

// Save is write-through: the handler only replies after the document is
// durably upserted.
func Save(ctx context.Context, c *models.Cart) error {
	c.UpdatedAt = time.Now()
	_, err := db.CartsCollection.UpdateOne(ctx,
		bson.M{"userId": c.UserID},
		bson.M{"$set": c},
		options.Update().SetUpsert(true),
	)
	return err
}

// Clear removes the user's cart document entirely.
func Clear(ctx context.Context, userID string) error {
	_, err := db.CartsCollection.DeleteOne(ctx, bson.M{"userId": userID})
	return err
}
