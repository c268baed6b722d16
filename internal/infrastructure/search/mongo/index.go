package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/narwhalmedia/episodes/internal/config"
	"github.com/narwhalmedia/episodes/internal/search"
	apperrors "github.com/narwhalmedia/episodes/pkg/errors"
)

const indexErrorCode = "Search.IndexError"

// ErrDocumentNotFound is returned by Get for unknown ids
var ErrDocumentNotFound = apperrors.NotFound("Search.DocumentNotFound", "document not found")

// NewClient connects to MongoDB and verifies the connection
func NewClient(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*mongo.Client, func(), error) {
	opts := options.Client().
		ApplyURI(cfg.Search.URI).
		SetAppName(cfg.Service.Name).
		SetTimeout(cfg.Search.Timeout)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("ping mongo: %w", err)
	}

	cleanup := func() {
		if err := client.Disconnect(context.Background()); err != nil {
			logger.Warn("disconnecting mongo", zap.Error(err))
		}
	}
	return client, cleanup, nil
}

// Index implements search.Index on a MongoDB collection
type Index struct {
	database   *mongo.Database
	collection *mongo.Collection
	logger     *zap.Logger
}

// NewIndex creates an index over the configured collection
func NewIndex(client *mongo.Client, cfg *config.Config, logger *zap.Logger) *Index {
	return NewIndexForDatabase(client.Database(cfg.Search.Database), cfg.Search.Collection, logger)
}

// NewIndexForDatabase creates an index over collection in db
func NewIndexForDatabase(db *mongo.Database, collection string, logger *zap.Logger) *Index {
	return &Index{
		database:   db,
		collection: db.Collection(collection),
		logger:     logger.Named("mongo_index"),
	}
}

// EnsureIndexes creates the secondary indexes the queries rely on
func (i *Index) EnsureIndexes(ctx context.Context) error {
	_, err := i.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "publish_date", Value: -1}}},
		{Keys: bson.D{{Key: "category", Value: 1}}},
		{Keys: bson.D{{Key: "language", Value: 1}}},
	})
	if err != nil {
		return apperrors.Failure(indexErrorCode, "create indexes", err)
	}
	return nil
}

// Upsert replaces or inserts every document in one unordered batch
func (i *Index) Upsert(ctx context.Context, docs ...search.Document) error {
	if len(docs) == 0 {
		return nil
	}
	models := make([]mongo.WriteModel, len(docs))
	ids := make([]string, len(docs))
	for n, doc := range docs {
		ids[n] = doc.ID
		models[n] = mongo.NewReplaceOneModel().
			SetFilter(bson.M{"_id": doc.ID}).
			SetReplacement(doc).
			SetUpsert(true)
	}

	_, err := i.collection.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false))
	if err != nil {
		return batchError("index", ids, err)
	}
	return nil
}

// Delete removes documents by id; unknown ids are ignored
func (i *Index) Delete(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	models := make([]mongo.WriteModel, len(ids))
	for n, id := range ids {
		models[n] = mongo.NewDeleteOneModel().SetFilter(bson.M{"_id": id})
	}

	_, err := i.collection.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false))
	if err != nil {
		return batchError("delete", ids, err)
	}
	return nil
}

// Search returns one page of matching documents, newest publication first
func (i *Index) Search(ctx context.Context, filter search.Filter) (*search.Page, error) {
	query := buildQuery(filter)

	total, err := i.collection.CountDocuments(ctx, query)
	if err != nil {
		return nil, apperrors.Failure(indexErrorCode, "count documents", err)
	}

	opts := options.Find().SetSort(bson.D{{Key: "publish_date", Value: -1}, {Key: "_id", Value: 1}})
	if filter.Offset > 0 {
		opts.SetSkip(int64(filter.Offset))
	}
	if filter.Limit > 0 {
		opts.SetLimit(int64(filter.Limit))
	}

	cursor, err := i.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, apperrors.Failure(indexErrorCode, "find documents", err)
	}
	defer cursor.Close(ctx)

	docs := []search.Document{}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, apperrors.Failure(indexErrorCode, "decode documents", err)
	}
	return &search.Page{Documents: docs, Total: total}, nil
}

// Get returns one document by id
func (i *Index) Get(ctx context.Context, id string) (*search.Document, error) {
	var doc search.Document
	err := i.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrDocumentNotFound.WithMessage("document %s not found", id)
		}
		return nil, apperrors.Failure(indexErrorCode, "find document", err)
	}
	return &doc, nil
}

// Stats runs a cheap statistics command against the database
func (i *Index) Stats(ctx context.Context) error {
	var stats bson.M
	if err := i.database.RunCommand(ctx, bson.D{{Key: "dbStats", Value: 1}}).Decode(&stats); err != nil {
		return apperrors.Failure(indexErrorCode, "db stats", err)
	}
	i.logger.Debug("index stats", zap.Any("collections", stats["collections"]))
	return nil
}

func buildQuery(filter search.Filter) bson.M {
	query := bson.M{}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	if filter.Category != "" {
		query["category"] = filter.Category
	}
	if filter.Language != "" {
		query["language"] = filter.Language
	}
	if term := strings.TrimSpace(filter.Query); term != "" {
		pattern := regexp.QuoteMeta(term)
		query["$or"] = bson.A{
			bson.M{"title": bson.M{"$regex": pattern, "$options": "i"}},
			bson.M{"description": bson.M{"$regex": pattern, "$options": "i"}},
		}
	}
	return query
}

// batchError folds a bulk write failure into one Failure naming the ids
// that did not make it
func batchError(op string, ids []string, err error) error {
	var bulkErr mongo.BulkWriteException
	if !errors.As(err, &bulkErr) || len(bulkErr.WriteErrors) == 0 {
		return apperrors.Failure(indexErrorCode, fmt.Sprintf("failed to %s documents %s", op, strings.Join(ids, ", ")), err)
	}

	failed := make([]string, 0, len(bulkErr.WriteErrors))
	for _, we := range bulkErr.WriteErrors {
		if we.Index >= 0 && we.Index < len(ids) {
			failed = append(failed, ids[we.Index])
		}
	}
	sort.Strings(failed)
	return apperrors.Failure(indexErrorCode,
		fmt.Sprintf("failed to %s %d of %d documents: %s", op, len(failed), len(ids), strings.Join(failed, ", ")),
		err)
}
