package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"osero_view/internal/domain/evaluation"
)

const journalCollection = "evaluations"

// JournalRepository stores every evaluator round trip in mongodb.
type JournalRepository struct {
	log   *zap.SugaredLogger
	mongo *mongo.Database
}

func NewJournalRepository(log *zap.SugaredLogger, mongo *mongo.Database) *JournalRepository {
	return &JournalRepository{
		log:   log,
		mongo: mongo,
	}
}

func (j *JournalRepository) Record(ctx context.Context, exchange evaluation.Exchange) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	collection := j.mongo.Collection(journalCollection)

	if _, err := collection.InsertOne(ctx, exchange); err != nil {
		return fmt.Errorf("failed to insert exchange %s: %w", exchange.RequestID, err)
	}

	j.log.Debugw("exchange recorded", "request_id", exchange.RequestID, "kind", exchange.Kind)
	return nil
}
