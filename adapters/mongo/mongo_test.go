package mongo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/lborres/evently/core"
)

func accountDoc(created time.Time) bson.D {
	return bson.D{
		{Key: "_id", Value: "acc_1"},
		{Key: "name", Value: "Alice"},
		{Key: "email", Value: "alice@example.com"},
		{Key: "password_hash", Value: "$2a$10$hash"},
		{Key: "created_at", Value: created},
		{Key: "updated_at", Value: created},
	}
}

func TestAdapter_Find(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	mt.Run("by email found", func(mt *mtest.T) {
		// Arrange
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, accountDoc(created)))
		adapter := NewWithCollection(mt.Coll)

		// Act
		acc, err := adapter.FindByEmail(context.Background(), "alice@example.com")

		// Assert
		require.NoError(mt, err)
		assert.Equal(mt, "acc_1", acc.ID)
		assert.Equal(mt, "$2a$10$hash", acc.PasswordHash)
		assert.True(mt, created.Equal(acc.CreatedAt))
	})

	mt.Run("by id not found", func(mt *mtest.T) {
		// Arrange
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))
		adapter := NewWithCollection(mt.Coll)

		// Act
		_, err := adapter.FindByID(context.Background(), "missing")

		// Assert
		assert.ErrorIs(mt, err, core.ErrAccountNotFound)
	})

	mt.Run("command error", func(mt *mtest.T) {
		// Arrange
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 2, Message: "bad query"}))
		adapter := NewWithCollection(mt.Coll)

		// Act
		_, err := adapter.FindByEmail(context.Background(), "alice@example.com")

		// Assert
		assert.ErrorIs(mt, err, core.ErrPersistence)
	})
}

func TestAdapter_Create(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	acc := &core.Account{ID: "acc_1", Name: "Alice", Email: "alice@example.com", PasswordHash: "hash"}

	mt.Run("inserted", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		err := NewWithCollection(mt.Coll).Create(context.Background(), acc)

		assert.NoError(mt, err)
	})

	mt.Run("duplicate email", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error collection: event.login index: email_unique",
		}))

		err := NewWithCollection(mt.Coll).Create(context.Background(), acc)

		assert.ErrorIs(mt, err, core.ErrAccountExists)
	})
}

func TestAdapter_Save(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	acc := &core.Account{ID: "acc_1", Email: "alice@example.com", PasswordHash: "new-hash"}

	mt.Run("updated", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 1},
		))

		err := NewWithCollection(mt.Coll).Save(context.Background(), acc)

		assert.NoError(mt, err)
	})

	mt.Run("missing account", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 0},
			bson.E{Key: "nModified", Value: 0},
		))

		err := NewWithCollection(mt.Coll).Save(context.Background(), acc)

		assert.ErrorIs(mt, err, core.ErrAccountNotFound)
	})
}

func TestAdapter_EnsureIndexes(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("creates index", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		err := NewWithCollection(mt.Coll).EnsureIndexes(context.Background())

		assert.NoError(mt, err)
	})
}

func TestDocumentRoundTrip(t *testing.T) {
	acc := &core.Account{ID: "a", Name: "n", Email: "e", PasswordHash: "h"}

	assert.Equal(t, acc, toDocument(acc).account())
}
