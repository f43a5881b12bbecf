// Package mongo stores accounts in a MongoDB collection.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/lborres/evently/core"
)

// DefaultCollection holds one document per account
const DefaultCollection = "login"

type accountDocument struct {
	ID           string    `bson:"_id"`
	Name         string    `bson:"name"`
	Email        string    `bson:"email"`
	PasswordHash string    `bson:"password_hash"`
	CreatedAt    time.Time `bson:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at"`
}

func toDocument(a *core.Account) accountDocument {
	return accountDocument{
		ID:           a.ID,
		Name:         a.Name,
		Email:        a.Email,
		PasswordHash: a.PasswordHash,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
}

func (d accountDocument) account() *core.Account {
	return &core.Account{
		ID:           d.ID,
		Name:         d.Name,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

type Adapter struct {
	coll *mongo.Collection
}

var _ core.AccountStore = (*Adapter)(nil)

func New(db *mongo.Database) *Adapter {
	return NewWithCollection(db.Collection(DefaultCollection))
}

func NewWithCollection(coll *mongo.Collection) *Adapter {
	return &Adapter{coll: coll}
}

// Connect opens a client and checks it with a ping
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("%w: connect to mongo: %w", core.ErrPersistence, err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("%w: ping mongo: %w", core.ErrPersistence, err)
	}
	return client, nil
}

// EnsureIndexes creates the unique email index
func (a *Adapter) EnsureIndexes(ctx context.Context) error {
	_, err := a.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("email_unique"),
	})
	if err != nil {
		return fmt.Errorf("%w: create email index: %w", core.ErrPersistence, err)
	}
	return nil
}

func (a *Adapter) FindByEmail(ctx context.Context, email string) (*core.Account, error) {
	return a.findOne(ctx, bson.M{"email": email})
}

func (a *Adapter) FindByID(ctx context.Context, id string) (*core.Account, error) {
	return a.findOne(ctx, bson.M{"_id": id})
}

func (a *Adapter) findOne(ctx context.Context, filter bson.M) (*core.Account, error) {
	var doc accountDocument
	if err := a.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, core.ErrAccountNotFound
		}
		return nil, fmt.Errorf("%w: find account: %w", core.ErrPersistence, err)
	}
	return doc.account(), nil
}

func (a *Adapter) Create(ctx context.Context, acc *core.Account) error {
	if _, err := a.coll.InsertOne(ctx, toDocument(acc)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return core.ErrAccountExists
		}
		return fmt.Errorf("%w: insert account: %w", core.ErrPersistence, err)
	}
	return nil
}

func (a *Adapter) Save(ctx context.Context, acc *core.Account) error {
	update := bson.M{"$set": bson.M{
		"name":          acc.Name,
		"email":         acc.Email,
		"password_hash": acc.PasswordHash,
		"updated_at":    acc.UpdatedAt,
	}}

	res, err := a.coll.UpdateOne(ctx, bson.M{"_id": acc.ID}, update)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return core.ErrAccountExists
		}
		return fmt.Errorf("%w: update account: %w", core.ErrPersistence, err)
	}
	if res.MatchedCount == 0 {
		return core.ErrAccountNotFound
	}
	return nil
}
