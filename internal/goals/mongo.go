package goals

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"goal-tracker-backend/internal/progress"
	"goal-tracker-backend/internal/users"
)

type progressDoc struct {
	CurrentValue float64   `bson:"currentValue"`
	UpdatedAt    time.Time `bson:"updatedAt"`
}

type goalDoc struct {
	ID          string      `bson:"id"`
	Name        string      `bson:"name"`
	GoalType    string      `bson:"goalType"`
	TargetValue float64     `bson:"targetValue"`
	StartDate   *string     `bson:"startDate"`
	EndDate     *string     `bson:"endDate"`
	Progress    progressDoc `bson:"progress"`
}

func toDoc(g *Goal) goalDoc {
	return goalDoc{
		ID:          g.ID,
		Name:        g.Name,
		GoalType:    g.GoalType,
		TargetValue: g.TargetValue,
		StartDate:   g.StartDate,
		EndDate:     g.EndDate,
		Progress:    progressDoc(g.Progress),
	}
}

func (d goalDoc) goal() Goal {
	return Goal{
		ID:          d.ID,
		Name:        d.Name,
		GoalType:    d.GoalType,
		TargetValue: d.TargetValue,
		StartDate:   d.StartDate,
		EndDate:     d.EndDate,
		Progress: progress.Progress{
			CurrentValue: d.Progress.CurrentValue,
			UpdatedAt:    d.Progress.UpdatedAt.UTC(),
		},
	}
}

// MongoRepository keeps goals as an array inside each user document.
// Every mutation is a single update using array operators, so writes to
// different goals of one owner do not overwrite each other.
type MongoRepository struct {
	coll *mongo.Collection
}

func NewMongoRepository(database *mongo.Database) *MongoRepository {
	return &MongoRepository{coll: database.Collection(users.CollectionName)}
}

func (r *MongoRepository) Create(ctx context.Context, ownerID string, g *Goal) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": ownerID, "goals.id": bson.M{"$ne": g.ID}},
		bson.M{"$push": bson.M{"goals": toDoc(g)}},
	)
	if err != nil {
		return fmt.Errorf("mongo error: %w", err)
	}
	if res.MatchedCount > 0 {
		return nil
	}

	n, err := r.coll.CountDocuments(ctx, bson.M{"_id": ownerID})
	if err != nil {
		return fmt.Errorf("mongo error: %w", err)
	}
	if n == 0 {
		return ErrOwnerNotFound
	}
	return ErrDuplicateID
}

func (r *MongoRepository) Update(ctx context.Context, ownerID string, g *Goal) error {
	return r.updateOne(ctx, ownerID, g.ID, bson.M{"$set": bson.M{
		"goals.$.name":        g.Name,
		"goals.$.goalType":    g.GoalType,
		"goals.$.targetValue": g.TargetValue,
		"goals.$.startDate":   g.StartDate,
		"goals.$.endDate":     g.EndDate,
	}})
}

func (r *MongoRepository) SetProgress(ctx context.Context, ownerID, goalID string, p progress.Progress) error {
	return r.updateOne(ctx, ownerID, goalID, bson.M{"$set": bson.M{
		"goals.$.progress": progressDoc(p),
	}})
}

func (r *MongoRepository) Delete(ctx context.Context, ownerID, goalID string) error {
	return r.updateOne(ctx, ownerID, goalID, bson.M{"$pull": bson.M{
		"goals": bson.M{"id": goalID},
	}})
}

func (r *MongoRepository) updateOne(ctx context.Context, ownerID, goalID string, update bson.M) error {
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": ownerID, "goals.id": goalID}, update)
	if err != nil {
		return fmt.Errorf("mongo error: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

type goalsProjection struct {
	Goals []goalDoc `bson:"goals"`
}

func (r *MongoRepository) Get(ctx context.Context, ownerID, goalID string) (*Goal, error) {
	var doc goalsProjection
	opts := options.FindOne().SetProjection(bson.M{
		"goals": bson.M{"$elemMatch": bson.M{"id": goalID}},
	})
	err := r.coll.FindOne(ctx, bson.M{"_id": ownerID}, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("mongo error: %w", err)
	}
	if len(doc.Goals) == 0 {
		return nil, ErrNotFound
	}
	g := doc.Goals[0].goal()
	return &g, nil
}

func (r *MongoRepository) List(ctx context.Context, ownerID string) ([]Goal, error) {
	var doc goalsProjection
	opts := options.FindOne().SetProjection(bson.M{"goals": 1})
	err := r.coll.FindOne(ctx, bson.M{"_id": ownerID}, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return []Goal{}, nil
		}
		return nil, fmt.Errorf("mongo error: %w", err)
	}

	out := make([]Goal, 0, len(doc.Goals))
	for _, d := range doc.Goals {
		out = append(out, d.goal())
	}
	return out, nil
}

var _ Repository = (*MongoRepository)(nil)
