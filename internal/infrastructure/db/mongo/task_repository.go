package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/99minutos/task-tracker/internal/core/domain"
)

const tasksCollection = "tasks"

type TaskRepository struct {
	col *mongo.Collection
	now func() time.Time
}

func NewTaskRepository(db *mongo.Database) *TaskRepository {
	return &TaskRepository{
		col: db.Collection(tasksCollection),
		now: func() time.Time { return time.Now().UTC() },
	}
}

type taskDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Title       string             `bson:"title"`
	Description string             `bson:"description"`
	Status      string             `bson:"status"`
	Priority    string             `bson:"priority"`
	DueDate     *time.Time         `bson:"due_date,omitempty"`
	OwnerID     primitive.ObjectID `bson:"owner_id"`
	CreatedAt   time.Time          `bson:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at"`
}

func (d taskDocument) toDomain() *domain.Task {
	return &domain.Task{
		ID:          d.ID.Hex(),
		Title:       d.Title,
		Description: d.Description,
		Status:      domain.TaskStatus(d.Status),
		Priority:    domain.TaskPriority(d.Priority),
		DueDate:     d.DueDate,
		OwnerID:     d.OwnerID.Hex(),
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

// Create inserts a new task document.
func (r *TaskRepository) Create(ctx context.Context, t *domain.Task) (*domain.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	owner, err := primitive.ObjectIDFromHex(t.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("insert task: invalid owner id %q: %w", t.OwnerID, err)
	}

	doc := taskDocument{
		ID:          primitive.NewObjectID(),
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		Priority:    string(t.Priority),
		DueDate:     t.DueDate,
		OwnerID:     owner,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}
	return doc.toDomain(), nil
}

// FindByID retrieves a task; unparseable ids are reported as not found.
func (r *TaskRepository) FindByID(ctx context.Context, id string) (*domain.Task, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrTaskNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc taskDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, fmt.Errorf("find task: %w", err)
	}
	return doc.toDomain(), nil
}

// Find lists the owner's tasks, newest first.
func (r *TaskRepository) Find(ctx context.Context, f domain.TaskFilter) ([]*domain.Task, error) {
	owner, err := primitive.ObjectIDFromHex(f.OwnerID)
	if err != nil {
		return []*domain.Task{}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"owner_id": owner}
	if f.Status != "" {
		filter["status"] = string(f.Status)
	}
	if f.Priority != "" {
		filter["priority"] = string(f.Priority)
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find tasks: %w", err)
	}
	defer cur.Close(ctx)

	var docs []taskDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode tasks: %w", err)
	}

	tasks := make([]*domain.Task, len(docs))
	for i, d := range docs {
		tasks[i] = d.toDomain()
	}
	return tasks, nil
}

// UpdateByID applies the partial update and returns the document after it.
func (r *TaskRepository) UpdateByID(ctx context.Context, id string, u domain.TaskUpdate) (*domain.Task, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrTaskNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc taskDocument
	err = r.col.FindOneAndUpdate(ctx, bson.M{"_id": oid}, updateDocument(u, r.now()), opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, fmt.Errorf("update task: %w", err)
	}
	return doc.toDomain(), nil
}

// DeleteByID hard-deletes a task.
func (r *TaskRepository) DeleteByID(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrTaskNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

// updateDocument builds the update; a cleared due date becomes an $unset.
func updateDocument(u domain.TaskUpdate, now time.Time) bson.M {
	doc := bson.M{"$set": setFields(u, now)}
	if u.ClearDueDate {
		doc["$unset"] = bson.M{"due_date": ""}
	}
	return doc
}

// setFields builds the $set document; owner_id and created_at are never included.
func setFields(u domain.TaskUpdate, now time.Time) bson.M {
	set := bson.M{"updated_at": now}
	if u.Title != nil {
		set["title"] = *u.Title
	}
	if u.Description != nil {
		set["description"] = *u.Description
	}
	if u.Status != nil {
		set["status"] = string(*u.Status)
	}
	if u.Priority != nil {
		set["priority"] = string(*u.Priority)
	}
	if u.DueDate != nil && !u.ClearDueDate {
		set["due_date"] = u.DueDate.UTC()
	}
	return set
}
