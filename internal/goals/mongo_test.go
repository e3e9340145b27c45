package goals

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"goal-tracker-backend/internal/progress"
	"goal-tracker-backend/internal/users"
)

// TestMongoRepository runs against a real server when MONGODB_TEST_URI is
// set.
func TestMongoRepository(t *testing.T) {
	uri := os.Getenv("MONGODB_TEST_URI")
	if uri == "" {
		t.Skip("MONGODB_TEST_URI not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Disconnect(context.Background()) })

	database := client.Database("goals_test_" + uuid.NewString()[:8])
	t.Cleanup(func() { _ = database.Drop(context.Background()) })

	owner := &users.Identity{ID: uuid.NewString(), Username: "alice", Email: "a@x.com", CreatedAt: time.Now().UTC()}
	require.NoError(t, users.NewMongoRepository(database).Create(ctx, owner))

	repo := NewMongoRepository(database)
	now := time.Now().UTC().Truncate(time.Millisecond)

	first := &Goal{ID: "1", Name: "Read", GoalType: "books", TargetValue: 10, Progress: progress.New(now)}
	second := &Goal{ID: "2", Name: "Run", GoalType: "km", TargetValue: 42, EndDate: str("2026-12-31"), Progress: progress.New(now)}
	require.NoError(t, repo.Create(ctx, owner.ID, first))
	require.NoError(t, repo.Create(ctx, owner.ID, second))

	assert.ErrorIs(t, repo.Create(ctx, owner.ID, first), ErrDuplicateID)
	assert.ErrorIs(t, repo.Create(ctx, "ghost", first), ErrOwnerNotFound)

	require.NoError(t, repo.SetProgress(ctx, owner.ID, "1", progress.Progress{CurrentValue: 5, UpdatedAt: now}))

	first.Name = "Read more"
	require.NoError(t, repo.Update(ctx, owner.ID, first))

	got, err := repo.Get(ctx, owner.ID, "1")
	require.NoError(t, err)
	assert.Equal(t, "Read more", got.Name)
	assert.Equal(t, 5.0, got.Progress.CurrentValue)

	list, err := repo.List(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "1", list[0].ID)
	assert.Equal(t, "2026-12-31", *list[1].EndDate)

	require.NoError(t, repo.Delete(ctx, owner.ID, "1"))
	assert.ErrorIs(t, repo.Delete(ctx, owner.ID, "1"), ErrNotFound)
	_, err = repo.Get(ctx, owner.ID, "1")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, repo.SetProgress(ctx, owner.ID, "1", progress.Progress{}), ErrNotFound)
}
