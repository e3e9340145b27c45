package users

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
)

func TestDuplicateKind(t *testing.T) {
	usernameDup := mongo.WriteException{WriteErrors: mongo.WriteErrors{{
		Code:    11000,
		Message: "E11000 duplicate key error collection: goals.users index: users_username_key dup key: { username: \"alice\" }",
	}}}
	emailDup := mongo.WriteException{WriteErrors: mongo.WriteErrors{{
		Code:    11000,
		Message: "E11000 duplicate key error collection: goals.users index: users_email_key dup key: { email: \"a@x.com\" }",
	}}}

	assert.ErrorIs(t, duplicateKind(usernameDup), ErrDuplicateUsername)
	assert.ErrorIs(t, duplicateKind(emailDup), ErrDuplicateEmail)
}

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

	repo := NewMongoRepository(database)
	require.NoError(t, repo.EnsureIndexes(ctx))

	u := &Identity{ID: uuid.NewString(), Username: "alice", Email: "a@x.com", PasswordHash: "h", CreatedAt: time.Now().UTC()}
	require.NoError(t, repo.Create(ctx, u))

	assert.ErrorIs(t, repo.Create(ctx, &Identity{ID: uuid.NewString(), Username: "bob", Email: "a@x.com"}), ErrDuplicateEmail)
	assert.ErrorIs(t, repo.Create(ctx, &Identity{ID: uuid.NewString(), Username: "alice", Email: "b@x.com"}), ErrDuplicateUsername)

	got, err := repo.GetByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}
