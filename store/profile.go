package store

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mymed-inc/mymed-api/schema"
)

var ErrProfileNotFound = fmt.Errorf("profile not found")

// ProfileStore - intake questionnaire keyed by user id
type ProfileStore interface {
	GetProfile(ctx context.Context, userID string) (*schema.Profile, error)
	MergeProfile(ctx context.Context, userID string, update schema.ProfileUpdate) (*schema.Profile, error)
}

// GetProfile returns the profile of userID
func (m *mongoDB) GetProfile(ctx context.Context, userID string) (*schema.Profile, error) {
	c := m.client.Database(m.database).Collection(schema.ProfileCollection)

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var p schema.Profile
	if err := c.FindOne(ctx, bson.M{"user_id": userID}).Decode(&p); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrProfileNotFound
		}
		log.WithField("prefix", mongoLogPrefix).WithError(err).Error("get profile")
		return nil, err
	}

	return &p, nil
}

// MergeProfile writes the non-nil fields of update, creating the profile
// when it does not exist yet
func (m *mongoDB) MergeProfile(ctx context.Context, userID string, update schema.ProfileUpdate) (*schema.Profile, error) {
	c := m.client.Database(m.database).Collection(schema.ProfileCollection)

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	set := bson.M{"updated_at": time.Now().UTC()}
	if update.Email != nil {
		set["email"] = *update.Email
	}
	if update.Name != nil {
		set["name"] = *update.Name
	}
	if update.Age != nil {
		set["age"] = *update.Age
	}
	if update.Gender != nil {
		set["gender"] = *update.Gender
	}

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var p schema.Profile
	if err := c.FindOneAndUpdate(ctx,
		bson.M{"user_id": userID},
		bson.M{
			"$set":         set,
			"$setOnInsert": bson.M{"user_id": userID},
		},
		opts,
	).Decode(&p); err != nil {
		log.WithField("prefix", mongoLogPrefix).WithError(err).Error("merge profile")
		return nil, err
	}

	log.WithFields(log.Fields{
		"prefix":  mongoLogPrefix,
		"user_id": userID,
	}).Debug("profile merged")

	return &p, nil
}
