// Package mongostore implements the store interfaces on MongoDB collections
// named users, items and bills.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/example/tastetab/internal/models"
	"github.com/example/tastetab/internal/store"
)

const defaultDatabase = "tastetab"

// Store is a MongoDB-backed store.Store.
type Store struct {
	client *mongo.Client
	users  *mongo.Collection
	items  *mongo.Collection
	bills  *mongo.Collection
}

var _ store.Store = (*Store)(nil)

// Connect dials the server, pings it and makes sure the unique indexes exist.
func Connect(ctx context.Context, uri string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	db := client.Database(DatabaseName(uri))
	s := &Store{
		client: client,
		users:  db.Collection("users"),
		items:  db.Collection("items"),
		bills:  db.Collection("bills"),
	}

	if err := s.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return s, nil
}

// DatabaseName extracts the database from the URI path, falling back to
// "tastetab".
func DatabaseName(uri string) string {
	parsed, err := url.Parse(uri)
	if err != nil {
		return defaultDatabase
	}
	name := strings.Trim(parsed.Path, "/")
	if name == "" {
		return defaultDatabase
	}
	return name
}

// EnsureIndexes creates the unique indexes on users and the date index on bills.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.users.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true).SetName("uniq_username")},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true).SetName("uniq_email")},
		{Keys: bson.D{{Key: "phone", Value: 1}}, Options: options.Index().SetUnique(true).SetSparse(true).SetName("uniq_phone")},
	})
	if err != nil {
		return fmt.Errorf("create user indexes: %w", err)
	}

	_, err = s.bills.Indexes().CreateOne(ctx, mongo.IndexModel{Keys: bson.D{{Key: "date", Value: 1}}})
	if err != nil {
		return fmt.Errorf("create bill indexes: %w", err)
	}
	return nil
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	user.EnsureID()
	now := time.Now()
	user.CreatedAt, user.UpdatedAt = now, now

	if _, err := s.users.InsertOne(ctx, toUserDoc(user)); err != nil {
		return translateError(err)
	}
	return nil
}

func (s *Store) FindUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.findUser(ctx, bson.M{"_id": id.String()})
}

func (s *Store) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findUser(ctx, bson.M{"email": email})
}

func (s *Store) FindConflictingUser(ctx context.Context, username, email, phone string) (*models.User, error) {
	or := bson.A{bson.M{"username": username}, bson.M{"email": email}}
	if phone != "" {
		or = append(or, bson.M{"phone": phone})
	}
	return s.findUser(ctx, bson.M{"$or": or})
}

func (s *Store) findUser(ctx context.Context, filter bson.M) (*models.User, error) {
	var doc userDoc
	if err := s.users.FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, translateError(err)
	}
	return doc.toModel()
}

func (s *Store) SetUserOTP(ctx context.Context, id uuid.UUID, otp string, issuedAt time.Time) error {
	return s.updateUser(ctx, id, bson.M{"$set": bson.M{
		"otp":         otp,
		"otpIssuedAt": issuedAt,
		"updatedAt":   time.Now(),
	}})
}

func (s *Store) ResetUserPassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	return s.updateUser(ctx, id, bson.M{"$set": bson.M{
		"password":    passwordHash,
		"otp":         nil,
		"otpIssuedAt": nil,
		"updatedAt":   time.Now(),
	}})
}

func (s *Store) updateUser(ctx context.Context, id uuid.UUID, update bson.M) error {
	res, err := s.users.UpdateOne(ctx, bson.M{"_id": id.String()}, update)
	if err != nil {
		return translateError(err)
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) ListItems(ctx context.Context) ([]models.Item, error) {
	cursor, err := s.items.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		return nil, err
	}

	var docs []itemDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	items := make([]models.Item, 0, len(docs))
	for _, doc := range docs {
		item, err := doc.toModel()
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	return items, nil
}

func (s *Store) GetItem(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	var doc itemDoc
	if err := s.items.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc); err != nil {
		return nil, translateError(err)
	}
	return doc.toModel()
}

func (s *Store) CreateItem(ctx context.Context, item *models.Item) error {
	stampItem(item, time.Now())
	_, err := s.items.InsertOne(ctx, toItemDoc(item))
	return translateError(err)
}

func (s *Store) CreateItems(ctx context.Context, items []models.Item) error {
	if len(items) == 0 {
		return nil
	}

	now := time.Now()
	docs := make([]interface{}, 0, len(items))
	for i := range items {
		stampItem(&items[i], now)
		docs = append(docs, toItemDoc(&items[i]))
	}

	_, err := s.items.InsertMany(ctx, docs)
	return translateError(err)
}

func (s *Store) UpdateItem(ctx context.Context, id uuid.UUID, changes *models.Item) (*models.Item, error) {
	update := bson.M{"$set": bson.M{
		"name":      changes.Name,
		"category":  changes.Category,
		"price":     changes.Price,
		"imageUrl":  changes.ImageURL,
		"openTime":  changes.OpenTime,
		"closeTime": changes.CloseTime,
		"updatedAt": time.Now(),
	}}

	var doc itemDoc
	err := s.items.FindOneAndUpdate(ctx, bson.M{"_id": id.String()}, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&doc)
	if err != nil {
		return nil, translateError(err)
	}
	return doc.toModel()
}

func (s *Store) DeleteItem(ctx context.Context, id uuid.UUID) error {
	res, err := s.items.DeleteOne(ctx, bson.M{"_id": id.String()})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) ListBills(ctx context.Context) ([]models.Bill, error) {
	cursor, err := s.bills.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "date", Value: 1}}))
	if err != nil {
		return nil, err
	}

	var docs []billDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	bills := make([]models.Bill, 0, len(docs))
	for _, doc := range docs {
		bill, err := doc.toModel()
		if err != nil {
			return nil, err
		}
		bills = append(bills, *bill)
	}
	return bills, nil
}

func (s *Store) GetBill(ctx context.Context, id uuid.UUID) (*models.Bill, error) {
	var doc billDoc
	if err := s.bills.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc); err != nil {
		return nil, translateError(err)
	}
	return doc.toModel()
}

func (s *Store) CreateBill(ctx context.Context, bill *models.Bill) error {
	bill.EnsureID()
	now := time.Now()
	bill.CreatedAt, bill.UpdatedAt = now, now
	if bill.Date.IsZero() {
		bill.Date = now
	}

	_, err := s.bills.InsertOne(ctx, toBillDoc(bill))
	return translateError(err)
}

func stampItem(item *models.Item, now time.Time) {
	item.EnsureID()
	item.CreatedAt, item.UpdatedAt = now, now
}

func translateError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return store.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return &store.DuplicateError{Field: duplicateField(err.Error())}
	default:
		return err
	}
}

// duplicateField reads the index name out of an E11000 message.
func duplicateField(msg string) string {
	for _, field := range []string{"username", "email", "phone"} {
		if strings.Contains(msg, "uniq_"+field) {
			return field
		}
	}
	return ""
}
