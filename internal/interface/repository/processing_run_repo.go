package repository

import (
	"context"

	"flight-ingest-service/internal/domain/entity"
	"flight-ingest-service/internal/domain/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoProcessingRunRepository implements the ProcessingRunRepository interface
type MongoProcessingRunRepository struct {
	collection *mongo.Collection
}

// NewMongoProcessingRunRepository creates a new MongoDB processing run repository
func NewMongoProcessingRunRepository(db *mongo.Database) repository.ProcessingRunRepository {
	collection := db.Collection("processing_runs")

	ctx := context.Background()

	runIDIndex := mongo.IndexModel{
		Keys:    bson.M{"runId": 1},
		Options: options.Index().SetUnique(true),
	}

	// Recent runs are listed newest first
	startedAtIndex := mongo.IndexModel{
		Keys: bson.M{"startedAt": -1},
	}

	collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		runIDIndex,
		startedAtIndex,
	})

	return &MongoProcessingRunRepository{
		collection: collection,
	}
}

// SaveRun inserts or replaces a run document
func (r *MongoProcessingRunRepository) SaveRun(ctx context.Context, run *entity.ProcessingRun) error {
	_, err := r.collection.ReplaceOne(ctx,
		bson.M{"runId": run.RunID},
		run,
		options.Replace().SetUpsert(true),
	)
	return err
}

// FindRecentRuns returns at most limit runs, newest first
func (r *MongoProcessingRunRepository) FindRecentRuns(ctx context.Context, limit int) ([]*entity.ProcessingRun, error) {
	limit64 := int64(limit)
	cursor, err := r.collection.Find(ctx, bson.M{}, &options.FindOptions{
		Limit: &limit64,
		Sort:  bson.D{{Key: "startedAt", Value: -1}},
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var runs []*entity.ProcessingRun
	if err := cursor.All(ctx, &runs); err != nil {
		return nil, err
	}

	return runs, nil
}
