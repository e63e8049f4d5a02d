package persistence

import (
	"context"
	"time"

	"clipcast/domain/model"
	"clipcast/domain/repository"
	"clipcast/infrastructure/logger"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const postAuditCollection = "post_audit"

// PostAuditRepository appends post status transitions to MongoDB.
// A nil client turns every call into a no-op so the service runs without Mongo.
type PostAuditRepository struct {
	mongoDb  *mongo.Client
	database string
}

func NewPostAuditRepository(client *mongo.Client, database string) repository.IPostAudit {
	return &PostAuditRepository{mongoDb: client, database: database}
}

func (r *PostAuditRepository) collection() *mongo.Collection {
	return r.mongoDb.Database(r.database).Collection(postAuditCollection)
}

func (r *PostAuditRepository) Append(ctx context.Context, entries ...model.PostAudit) error {
	if r.mongoDb == nil || len(entries) == 0 {
		return nil
	}
	now := time.Now().UTC()
	docs := make([]interface{}, 0, len(entries))
	for _, e := range entries {
		if e.CreatedAt.IsZero() {
			e.CreatedAt = now
		}
		docs = append(docs, e)
	}
	_, err := r.collection().InsertMany(ctx, docs)
	return err
}

func (r *PostAuditRepository) ListByCampaign(ctx context.Context, campaignID string, limit int64) ([]model.PostAudit, error) {
	if r.mongoDb == nil {
		return []model.PostAudit{}, nil
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}).SetLimit(limit)
	cursor, err := r.collection().Find(ctx, bson.D{{Key: "campaignId", Value: campaignID}}, opts)
	if err != nil {
		return nil, err
	}
	defer func(cursor *mongo.Cursor, ctx context.Context) {
		if err := cursor.Close(ctx); err != nil {
			logger.GetLogger().WithField("error", err).Error("Error while closing cursor")
		}
	}(cursor, ctx)

	entries := []model.PostAudit{}
	for cursor.Next(ctx) {
		var entry model.PostAudit
		if err := cursor.Decode(&entry); err != nil {
			logger.GetLogger().WithField("error", err).Error("Error while decoding audit entry")
			continue
		}
		entries = append(entries, entry)
	}
	return entries, cursor.Err()
}
