package services

import (
	"context"
	"crypto/tls"
	"errors"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/connectro/backend/internal/models"
)

const (
	usersCollection = "users"
	emailIndex      = "email_1"
	usernameIndex   = "username_1"
)

// dupKeyIndex captures the index name from an E11000 message. The duplicate
// value follows "dup key" and must not be inspected.
var dupKeyIndex = regexp.MustCompile(`index: (\S+) dup key`)

// MongoUserStore keeps users in the "users" collection keyed by _id.
type MongoUserStore struct {
	client   *mongo.Client
	usersCol *mongo.Collection
}

// ConnectMongo dials and pings the deployment at mongoURI.
func ConnectMongo(ctx context.Context, mongoURI string, useTLS bool) (*mongo.Client, error) {
	opts := options.Client().ApplyURI(mongoURI)
	if useTLS {
		opts.SetTLSConfig(&tls.Config{MinVersion: tls.VersionTLS12})
	}

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return client, nil
}

func NewMongoUserStore(client *mongo.Client, dbName string) *MongoUserStore {
	return &MongoUserStore{
		client:   client,
		usersCol: client.Database(dbName).Collection(usersCollection),
	}
}

func newMongoUserStoreFromCollection(col *mongo.Collection) *MongoUserStore {
	return &MongoUserStore{client: col.Database().Client(), usersCol: col}
}

// EnsureIndexes creates the unique email and username indexes.
func (s *MongoUserStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.usersCol.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName(emailIndex),
		},
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetUnique(true).SetName(usernameIndex),
		},
	})
	return err
}

func (s *MongoUserStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *MongoUserStore) Create(ctx context.Context, user *models.User) error {
	_, err := s.usersCol.InsertOne(ctx, user)
	if err != nil {
		return duplicateKeyError(err)
	}
	return nil
}

func (s *MongoUserStore) FindByID(ctx context.Context, id string) (*models.User, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

func (s *MongoUserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findOne(ctx, bson.M{"email": email})
}

func (s *MongoUserStore) Update(ctx context.Context, id string, upd *models.UserUpdate) (*models.User, error) {
	set := bson.M{
		"updatedAt": time.Now().UTC(),
	}
	if upd.Username != nil {
		set["username"] = *upd.Username
	}
	if upd.Email != nil {
		set["email"] = *upd.Email
	}
	if upd.ImageURL != nil {
		set["imageUrl"] = *upd.ImageURL
	}
	if upd.PasswordHash != nil {
		set["password"] = *upd.PasswordHash
	}

	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(bson.M{"password": 0})

	var user models.User
	err := s.usersCol.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, duplicateKeyError(err)
	}
	return &user, nil
}

func (s *MongoUserStore) Delete(ctx context.Context, id string) error {
	res, err := s.usersCol.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoUserStore) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var user models.User
	if err := s.usersCol.FindOne(ctx, filter).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// duplicateKeyError maps unique index violations to domain errors. Violations
// of any other index are returned unchanged.
func duplicateKeyError(err error) error {
	if !mongo.IsDuplicateKeyError(err) {
		return err
	}
	switch duplicateIndex(err) {
	case emailIndex:
		return ErrEmailExists
	case usernameIndex:
		return ErrUsernameExists
	default:
		return err
	}
}

func duplicateIndex(err error) string {
	var msgs []string
	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			msgs = append(msgs, e.Message)
		}
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) {
		msgs = append(msgs, ce.Message)
	}
	if len(msgs) == 0 {
		msgs = append(msgs, err.Error())
	}

	for _, m := range msgs {
		if sub := dupKeyIndex.FindStringSubmatch(m); sub != nil {
			return sub[1]
		}
	}
	return ""
}
