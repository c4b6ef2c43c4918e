package store

import (
	"context"
	"errors"
	"time"

	"github.com/fjod/storefront/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const cartDocumentID = "cart"

type cartDocument struct {
	ID          string `bson:"_id"`
	domain.Cart `bson:",inline"`
	UpdatedAt   time.Time `bson:"updated_at"`
}

// MongoStore keeps the cart as one document. ReplaceOne swaps the whole
// document in a single write.
type MongoStore struct {
	collection *mongo.Collection
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{
		collection: db.Collection("cart"),
	}
}

func (m *MongoStore) Load(ctx context.Context) (*domain.Cart, error) {
	var doc cartDocument

	filter := bson.M{"_id": cartDocumentID}
	err := m.collection.FindOne(ctx, filter).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.NewCart(), nil
		}
		return nil, unavailable("find cart", err)
	}

	cart := doc.Cart
	return normalize(&cart), nil
}

func (m *MongoStore) Save(ctx context.Context, cart *domain.Cart) error {
	doc := cartDocument{
		ID:        cartDocumentID,
		Cart:      *normalize(cart.Clone()),
		UpdatedAt: time.Now(),
	}

	filter := bson.M{"_id": cartDocumentID}
	opts := options.Replace().SetUpsert(true)

	if _, err := m.collection.ReplaceOne(ctx, filter, doc, opts); err != nil {
		return unavailable("replace cart", err)
	}
	return nil
}

func (m *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return m.collection.Database().Client().Disconnect(ctx)
}
