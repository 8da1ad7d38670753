package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/shashiranjanraj/pricebook/app/models"
	"github.com/shashiranjanraj/pricebook/pkg/metrics"
)

const (
	ProductsCollection      = "products"
	SpecialPricesCollection = "special_prices"
)

// EnsureMongoIndexes creates the unique indexes both Mongo stores rely on.
func EnsureMongoIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(ProductsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "sku", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("uniq_sku"),
	})
	if err != nil {
		return fmt.Errorf("products index: %w", err)
	}

	_, err = db.Collection(SpecialPricesCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "productSku", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("uniq_user_sku"),
	})
	if err != nil {
		return fmt.Errorf("special_prices index: %w", err)
	}
	return nil
}

// priceFromRaw accepts Decimal128 as written by this service and the plain
// doubles/ints written by older producers of the same collections.
func priceFromRaw(v bson.RawValue) (decimal.Decimal, error) {
	switch v.Type {
	case bsontype.Decimal128:
		return decimal.NewFromString(v.Decimal128().String())
	case bsontype.Double:
		return decimal.NewFromFloat(v.Double()), nil
	case bsontype.Int32:
		return decimal.NewFromInt32(v.Int32()), nil
	case bsontype.Int64:
		return decimal.NewFromInt(v.Int64()), nil
	default:
		return decimal.Decimal{}, fmt.Errorf("unsupported price type %s", v.Type)
	}
}

func priceToBSON(d decimal.Decimal) (primitive.Decimal128, error) {
	return primitive.ParseDecimal128(d.String())
}

type productDocument struct {
	ID          primitive.ObjectID `bson:"_id"`
	SKU         string             `bson:"sku"`
	Name        string             `bson:"name"`
	Description string             `bson:"description"`
	Price       bson.RawValue      `bson:"price"`
}

func (d productDocument) model() (models.Product, error) {
	price, err := priceFromRaw(d.Price)
	if err != nil {
		return models.Product{}, fmt.Errorf("product %s: %w", d.SKU, err)
	}
	return models.Product{
		ID:          d.ID.Hex(),
		SKU:         d.SKU,
		Name:        d.Name,
		Description: d.Description,
		Price:       price,
	}, nil
}

type specialPriceDocument struct {
	ID         primitive.ObjectID `bson:"_id"`
	UserID     string             `bson:"userId"`
	ProductSKU string             `bson:"productSku"`
	Price      bson.RawValue      `bson:"price"`
	CreatedAt  time.Time          `bson:"createdAt,omitempty"`
	UpdatedAt  time.Time          `bson:"updatedAt,omitempty"`
}

func (d specialPriceDocument) model() (models.SpecialPrice, error) {
	price, err := priceFromRaw(d.Price)
	if err != nil {
		return models.SpecialPrice{}, fmt.Errorf("special price %s/%s: %w", d.UserID, d.ProductSKU, err)
	}
	return models.SpecialPrice{
		ID:         d.ID.Hex(),
		UserID:     d.UserID,
		ProductSKU: d.ProductSKU,
		Price:      price,
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  d.UpdatedAt,
	}, nil
}

// MongoProductRepository is the catalog backed by the products collection.
type MongoProductRepository struct {
	col *mongo.Collection
}

func NewMongoProductRepository(db *mongo.Database) *MongoProductRepository {
	return &MongoProductRepository{col: db.Collection(ProductsCollection)}
}

func (r *MongoProductRepository) ListProducts(ctx context.Context) ([]models.Product, error) {
	defer metrics.ObserveStore("mongo", "list_products", time.Now())

	cur, err := r.col.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	products := []models.Product{}
	for cur.Next(ctx) {
		var doc productDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		p, err := doc.model()
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, cur.Err()
}

func (r *MongoProductRepository) FindBySKU(ctx context.Context, sku string) (models.Product, error) {
	defer metrics.ObserveStore("mongo", "find_product", time.Now())

	var doc productDocument
	err := r.col.FindOne(ctx, bson.D{{Key: "sku", Value: sku}}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return models.Product{}, ErrProductNotFound
	}
	if err != nil {
		return models.Product{}, err
	}
	return doc.model()
}

func (r *MongoProductRepository) UpsertProducts(ctx context.Context, products []models.Product) (int, error) {
	if len(products) == 0 {
		return 0, nil
	}
	defer metrics.ObserveStore("mongo", "upsert_products", time.Now())

	now := time.Now().UTC()
	writes := make([]mongo.WriteModel, 0, len(products))
	for _, p := range products {
		price, err := priceToBSON(p.Price)
		if err != nil {
			return 0, fmt.Errorf("product %s: %w", p.SKU, err)
		}
		writes = append(writes, mongo.NewUpdateOneModel().
			SetFilter(bson.D{{Key: "sku", Value: p.SKU}}).
			SetUpdate(bson.D{
				{Key: "$set", Value: bson.D{
					{Key: "name", Value: p.Name},
					{Key: "description", Value: p.Description},
					{Key: "price", Value: price},
					{Key: "updatedAt", Value: now},
				}},
				{Key: "$setOnInsert", Value: bson.D{{Key: "createdAt", Value: now}}},
			}).
			SetUpsert(true))
	}

	if _, err := r.col.BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(true)); err != nil {
		return 0, err
	}
	return len(products), nil
}

// MongoSpecialPriceRepository stores overrides in the special_prices
// collection under the uniq_user_sku index.
type MongoSpecialPriceRepository struct {
	col *mongo.Collection
}

func NewMongoSpecialPriceRepository(db *mongo.Database) *MongoSpecialPriceRepository {
	return &MongoSpecialPriceRepository{col: db.Collection(SpecialPricesCollection)}
}

func (r *MongoSpecialPriceRepository) Upsert(ctx context.Context, sp models.SpecialPrice) (models.SpecialPrice, error) {
	defer metrics.ObserveStore("mongo", "upsert_special_price", time.Now())

	price, err := priceToBSON(sp.Price)
	if err != nil {
		return models.SpecialPrice{}, err
	}

	now := time.Now().UTC()
	filter := bson.D{{Key: "userId", Value: sp.UserID}, {Key: "productSku", Value: sp.ProductSKU}}
	update := bson.D{
		{Key: "$set", Value: bson.D{{Key: "price", Value: price}, {Key: "updatedAt", Value: now}}},
		{Key: "$setOnInsert", Value: bson.D{{Key: "createdAt", Value: now}}},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var doc specialPriceDocument
	err = r.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	if mongo.IsDuplicateKeyError(err) {
		// Two upserts raced to insert; the loser now matches the winner's row.
		err = r.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	}
	if err != nil {
		return models.SpecialPrice{}, err
	}
	return doc.model()
}

func (r *MongoSpecialPriceRepository) ListByUser(ctx context.Context, userID string) ([]models.SpecialPrice, error) {
	defer metrics.ObserveStore("mongo", "list_special_prices", time.Now())

	cur, err := r.col.Find(ctx,
		bson.D{{Key: "userId", Value: userID}},
		options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	prices := []models.SpecialPrice{}
	for cur.Next(ctx) {
		var doc specialPriceDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		sp, err := doc.model()
		if err != nil {
			return nil, err
		}
		prices = append(prices, sp)
	}
	return prices, cur.Err()
}

func (r *MongoSpecialPriceRepository) ExistsForUser(ctx context.Context, userID string) (bool, error) {
	defer metrics.ObserveStore("mongo", "exists_special_price", time.Now())

	n, err := r.col.CountDocuments(ctx, bson.D{{Key: "userId", Value: userID}}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
