package repository

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"account-service/internal/account/domain"
)

// CollectionAccounts is the Mongo collection holding account documents.
const CollectionAccounts = "accounts"

type accountDoc struct {
	ID           string    `bson:"_id"`
	Username     string    `bson:"username"`
	PasswordHash string    `bson:"password_hash"`
	Bio          string    `bson:"bio"`
	Permissions  []string  `bson:"permissions"`
	CreatedAt    time.Time `bson:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at"`
}

func docFromDomain(a *domain.Account) accountDoc {
	return accountDoc{
		ID:           a.ID,
		Username:     a.Username,
		PasswordHash: a.PasswordHash,
		Bio:          a.Bio,
		Permissions:  a.PermissionNames(),
		CreatedAt:    a.CreatedAt.UTC(),
		UpdatedAt:    a.UpdatedAt.UTC(),
	}
}

func (d *accountDoc) toDomain() *domain.Account {
	perms := make([]domain.Permission, 0, len(d.Permissions))
	for _, p := range d.Permissions {
		perms = append(perms, domain.Permission{Name: p})
	}
	return &domain.Account{
		ID:           d.ID,
		Username:     d.Username,
		PasswordHash: d.PasswordHash,
		Bio:          d.Bio,
		Permissions:  perms,
		CreatedAt:    d.CreatedAt.UTC(),
		UpdatedAt:    d.UpdatedAt.UTC(),
	}
}

// MongoRepository stores accounts in a MongoDB collection with a unique
// index on username.
type MongoRepository struct {
	client *mongo.Client
	col    *mongo.Collection
}

// NewMongoRepository connects to uri, pings the server and ensures indexes.
// Caller must call Close when done.
func NewMongoRepository(ctx context.Context, uri, database string) (*MongoRepository, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo: connect: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo: ping: %w", err)
	}
	r := &MongoRepository{client: client, col: client.Database(database).Collection(CollectionAccounts)}
	if err := r.ensureIndexes(pingCtx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	log.Printf("mongo: connected to database %q", database)
	return r, nil
}

func (r *MongoRepository) ensureIndexes(ctx context.Context) error {
	model := mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("username_unique"),
	}
	if _, err := r.col.Indexes().CreateOne(ctx, model); err != nil {
		return fmt.Errorf("mongo: create username index: %w", err)
	}
	return nil
}

// Close disconnects the client.
func (r *MongoRepository) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return r.client.Disconnect(ctx)
}

func (r *MongoRepository) Create(ctx context.Context, a *domain.Account) error {
	_, err := r.col.InsertOne(ctx, docFromDomain(a))
	return wrapMongoError(err)
}

func (r *MongoRepository) Update(ctx context.Context, a *domain.Account) error {
	set := bson.D{
		{Key: "bio", Value: a.Bio},
		{Key: "permissions", Value: a.PermissionNames()},
		{Key: "updated_at", Value: a.UpdatedAt.UTC()},
	}
	res, err := r.col.UpdateOne(ctx, bson.D{{Key: "_id", Value: a.ID}}, bson.D{{Key: "$set", Value: set}})
	if err != nil {
		return wrapMongoError(err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *MongoRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	return r.findOne(ctx, bson.D{{Key: "_id", Value: id}})
}

func (r *MongoRepository) GetByUsername(ctx context.Context, username string) (*domain.Account, error) {
	return r.findOne(ctx, bson.D{{Key: "username", Value: username}})
}

func (r *MongoRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx, nil)
}

func (r *MongoRepository) findOne(ctx context.Context, filter bson.D) (*domain.Account, error) {
	var doc accountDoc
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, wrapMongoError(err)
	}
	return doc.toDomain(), nil
}

func wrapMongoError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return domain.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return domain.ErrAlreadyExists
	default:
		return err
	}
}
