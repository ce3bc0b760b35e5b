package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/conduit-labs/publishing-api/internal/core/domain"
	"github.com/conduit-labs/publishing-api/internal/core/ports"
)

const articleCollection = "articles"

// ArticleRepository implements ports.ArticleRepository on a MongoDB
// collection.
type ArticleRepository struct {
	coll *mongo.Collection
}

func NewArticleRepository(db *mongo.Database) *ArticleRepository {
	return &ArticleRepository{coll: db.Collection(articleCollection)}
}

type mongoArticle struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"`
	AuthorID       string             `bson:"author_id"`
	Title          string             `bson:"title"`
	Description    string             `bson:"description"`
	Body           string             `bson:"body"`
	Tags           []string           `bson:"tags"`
	Slug           string             `bson:"slug"`
	FavoritesCount int                `bson:"favorites_count"`
	CreatedAt      time.Time          `bson:"created_at"`
	UpdatedAt      time.Time          `bson:"updated_at"`
}

func toMongoArticle(a *domain.Article) mongoArticle {
	return mongoArticle{
		AuthorID:       a.AuthorID,
		Title:          a.Title,
		Description:    a.Description,
		Body:           a.Body,
		Tags:           a.Tags,
		Slug:           a.Slug,
		FavoritesCount: a.FavoritesCount,
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
	}
}

func (ma mongoArticle) toDomain() *domain.Article {
	return &domain.Article{
		ID:             ma.ID.Hex(),
		AuthorID:       ma.AuthorID,
		Title:          ma.Title,
		Description:    ma.Description,
		Body:           ma.Body,
		Tags:           ma.Tags,
		Slug:           ma.Slug,
		FavoritesCount: ma.FavoritesCount,
		CreatedAt:      ma.CreatedAt.UTC(),
		UpdatedAt:      ma.UpdatedAt.UTC(),
	}
}

func (r *ArticleRepository) GetByID(ctx context.Context, id string) (*domain.Article, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *ArticleRepository) FindBySlug(ctx context.Context, slug string) (*domain.Article, error) {
	return r.findOne(ctx, bson.M{"slug": slug})
}

func (r *ArticleRepository) findOne(ctx context.Context, filter bson.M) (*domain.Article, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var ma mongoArticle
	if err := r.coll.FindOne(ctx, filter).Decode(&ma); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find article: %w", err)
	}
	return ma.toDomain(), nil
}

// Save inserts the article when its id is empty, assigning a fresh identity,
// and replaces the stored document otherwise.
func (r *ArticleRepository) Save(ctx context.Context, a *domain.Article) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := toMongoArticle(a)
	if a.ID == "" {
		doc.ID = primitive.NewObjectID()
		if _, err := r.coll.InsertOne(ctx, doc); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return duplicateKeyConflict()
			}
			return fmt.Errorf("insert article: %w", err)
		}
		a.ID = doc.ID.Hex()
		return nil
	}

	oid, err := primitive.ObjectIDFromHex(a.ID)
	if err != nil {
		return domain.ErrNotFound
	}
	doc.ID = oid
	if _, err := r.coll.ReplaceOne(ctx, bson.M{"_id": oid}, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return duplicateKeyConflict()
		}
		return fmt.Errorf("replace article: %w", err)
	}
	return nil
}

func (r *ArticleRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrNotFound
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete article: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// IncrementFavoritesCount applies an atomic delta to the derived counter,
// sidestepping the read-increment-write lost-update race.
func (r *ArticleRepository) IncrementFavoritesCount(ctx context.Context, id string, delta int) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrNotFound
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": oid},
		bson.M{"$inc": bson.M{"favorites_count": delta}},
	)
	if err != nil {
		return fmt.Errorf("increment favorites count: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List returns a page of articles matching filter, newest first, plus the
// total match count.
func (r *ArticleRepository) List(ctx context.Context, filter ports.ArticleFilter) ([]*domain.Article, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	query := bson.M{}
	if filter.Tag != "" {
		query["tags"] = filter.Tag
	}
	if len(filter.AuthorIDs) > 0 {
		query["author_id"] = bson.M{"$in": filter.AuthorIDs}
	}
	if len(filter.IDs) > 0 {
		oids := make([]primitive.ObjectID, 0, len(filter.IDs))
		for _, id := range filter.IDs {
			oid, err := primitive.ObjectIDFromHex(id)
			if err != nil {
				continue
			}
			oids = append(oids, oid)
		}
		query["_id"] = bson.M{"$in": oids}
	}

	total, err := r.coll.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("count articles: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64(filter.Skip)).
		SetLimit(int64(filter.Limit))

	cursor, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list articles: %w", err)
	}
	defer cursor.Close(ctx)

	var articles []*domain.Article
	for cursor.Next(ctx) {
		var ma mongoArticle
		if err := cursor.Decode(&ma); err != nil {
			return nil, 0, fmt.Errorf("decode article: %w", err)
		}
		articles = append(articles, ma.toDomain())
	}
	if err := cursor.Err(); err != nil {
		return nil, 0, fmt.Errorf("list articles: %w", err)
	}
	return articles, total, nil
}

// DistinctTags returns every tag used by at least one article.
func (r *ArticleRepository) DistinctTags(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	values, err := r.coll.Distinct(ctx, "tags", bson.M{})
	if err != nil {
		return nil, fmt.Errorf("distinct tags: %w", err)
	}
	tags := make([]string, 0, len(values))
	for _, v := range values {
		if tag, ok := v.(string); ok {
			tags = append(tags, tag)
		}
	}
	return tags, nil
}

// EnsureIndexes creates the slug unique index plus the query indexes.
func (r *ArticleRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "slug", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "author_id", Value: 1}}},
		{Keys: bson.D{{Key: "tags", Value: 1}}},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexes)
	return err
}
