package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/99minutos/task-tracker/internal/core/domain"
)

const activityCollection = "task_activity"

// ActivityRepository implements ports.ActivityRepository using MongoDB.
type ActivityRepository struct {
	db *mongo.Database
}

func NewActivityRepository(db *mongo.Database) *ActivityRepository {
	return &ActivityRepository{db: db}
}

type activityDocument struct {
	ID      primitive.ObjectID `bson:"_id,omitempty"`
	TaskID  string             `bson:"task_id"`
	OwnerID string             `bson:"owner_id"`
	Action  string             `bson:"action"`
	Fields  []string           `bson:"fields,omitempty"`
	At      time.Time          `bson:"at"`
}

// Insert appends an entry to the task_activity audit collection.
func (r *ActivityRepository) Insert(ctx context.Context, a *domain.TaskActivity) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := activityDocument{
		ID:      primitive.NewObjectID(),
		TaskID:  a.TaskID,
		OwnerID: a.OwnerID,
		Action:  string(a.Action),
		Fields:  a.Fields,
		At:      a.At.UTC(),
	}
	if _, err := r.db.Collection(activityCollection).InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert activity: %w", err)
	}
	a.ID = doc.ID.Hex()
	return nil
}

// ListByTask returns a task's entries oldest first.
func (r *ActivityRepository) ListByTask(ctx context.Context, taskID string) ([]*domain.TaskActivity, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "at", Value: 1}})
	cur, err := r.db.Collection(activityCollection).Find(ctx, bson.M{"task_id": taskID}, opts)
	if err != nil {
		return nil, fmt.Errorf("find activity: %w", err)
	}
	defer cur.Close(ctx)

	var docs []activityDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode activity: %w", err)
	}

	out := make([]*domain.TaskActivity, len(docs))
	for i, d := range docs {
		out[i] = &domain.TaskActivity{
			ID:      d.ID.Hex(),
			TaskID:  d.TaskID,
			OwnerID: d.OwnerID,
			Action:  domain.ActivityAction(d.Action),
			Fields:  d.Fields,
			At:      d.At,
		}
	}
	return out, nil
}
