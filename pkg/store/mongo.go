package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	perrors "github.com/nathanaelcunningham/typst-pdftemplater/pkg/errors"
	"github.com/nathanaelcunningham/typst-pdftemplater/pkg/template"
)

// DefaultCollection is the collection MongoStore uses when none is given.
const DefaultCollection = "templates"

// MongoConfig configures a MongoStore.
type MongoConfig struct {
	URI        string
	Database   string
	Collection string
}

// MongoStore keeps templates in a MongoDB collection. Content is stored as
// its JSON encoding so the component tree keeps one wire format.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
	stamps
}

// templateDoc is the BSON shape of a stored template.
type templateDoc struct {
	ID          string    `bson:"_id"`
	Name        string    `bson:"name"`
	Description string    `bson:"description"`
	Content     string    `bson:"content"`
	Archived    bool      `bson:"archived"`
	CreatedAt   time.Time `bson:"createdAt"`
	UpdatedAt   time.Time `bson:"updatedAt"`
}

// NewMongoStore connects to MongoDB and ensures the listing index exists.
func NewMongoStore(ctx context.Context, cfg MongoConfig) (*MongoStore, error) {
	if cfg.Database == "" {
		return nil, perrors.New(perrors.ErrCodeInvalidInput, "mongo database is required")
	}
	if cfg.Collection == "" {
		cfg.Collection = DefaultCollection
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	coll := client.Database(cfg.Database).Collection(cfg.Collection)
	_, err = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "archived", Value: 1}, {Key: "createdAt", Value: -1}},
	})
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("create index: %w", err)
	}

	return &MongoStore{client: client, coll: coll, stamps: defaultStamps()}, nil
}

func (s *MongoStore) List(ctx context.Context) ([]template.Template, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: 1}})
	cur, err := s.coll.Find(ctx, bson.M{"archived": false}, opts)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	var docs []templateDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}

	out := make([]template.Template, 0, len(docs))
	for _, d := range docs {
		t, err := d.template()
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func (s *MongoStore) Get(ctx context.Context, id string) (template.Template, error) {
	var d templateDoc
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return template.Template{}, notFound(id)
	}
	if err != nil {
		return template.Template{}, fmt.Errorf("get template %s: %w", id, err)
	}
	return d.template()
}

func (s *MongoStore) Create(ctx context.Context, dr template.Draft) (template.Template, error) {
	t, err := s.prepare(dr)
	if err != nil {
		return template.Template{}, err
	}
	d, err := toDoc(t)
	if err != nil {
		return template.Template{}, err
	}
	if _, err := s.coll.InsertOne(ctx, d); err != nil {
		return template.Template{}, fmt.Errorf("create template: %w", err)
	}
	return t, nil
}

// Update reads, patches and writes back the template. The write is
// conditioned on the UpdatedAt that was read, so a concurrent update makes
// this one fail instead of being silently overwritten.
func (s *MongoStore) Update(ctx context.Context, id string, p template.Patch) (template.Template, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return template.Template{}, err
	}
	t, err := s.revise(current, p)
	if err != nil {
		return template.Template{}, err
	}
	d, err := toDoc(t)
	if err != nil {
		return template.Template{}, err
	}

	res, err := s.coll.ReplaceOne(ctx, bson.M{"_id": id, "updatedAt": current.UpdatedAt}, d)
	if err != nil {
		return template.Template{}, fmt.Errorf("update template %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return template.Template{}, perrors.New(perrors.ErrCodeServiceFailure, "template %s changed during update", id)
	}
	return t, nil
}

func (s *MongoStore) Archive(ctx context.Context, id string) error {
	res, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"archived": true, "updatedAt": s.now()}},
	)
	if err != nil {
		return fmt.Errorf("archive template %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return notFound(id)
	}
	return nil
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func toDoc(t template.Template) (templateDoc, error) {
	content, err := json.Marshal(t.Content)
	if err != nil {
		return templateDoc{}, fmt.Errorf("encode content of %s: %w", t.ID, err)
	}
	return templateDoc{
		ID:          t.ID,
		Name:        t.Name,
		Description: t.Description,
		Content:     string(content),
		Archived:    t.Archived,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}, nil
}

func (d templateDoc) template() (template.Template, error) {
	content, err := template.ParseContent([]byte(d.Content))
	if err != nil {
		return template.Template{}, fmt.Errorf("decode content of %s: %w", d.ID, err)
	}
	return template.Template{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		Content:     content,
		Archived:    d.Archived,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}, nil
}

var _ Repository = (*MongoStore)(nil)
