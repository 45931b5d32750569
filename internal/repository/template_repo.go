package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"evalforge/internal/model"
)

// ErrNoDocument is returned when an update or delete matches nothing
var ErrNoDocument = errors.New("document not found")

// TemplateRepo handles MongoDB operations for templates
type TemplateRepo interface {
	Create(ctx context.Context, t *model.Template) (string, error)
	GetByID(ctx context.Context, id string) (*model.Template, error)
	GetByHostID(ctx context.Context, hostID string) ([]*model.Template, error)
	Update(ctx context.Context, t *model.Template) error
	Delete(ctx context.Context, id string) error
}

type templateRepo struct {
	collection *mongo.Collection
}

// NewTemplateRepo creates a new template repository
func NewTemplateRepo(db *mongo.Database) TemplateRepo {
	return &templateRepo{
		collection: db.Collection("templates"),
	}
}

func (r *templateRepo) Create(ctx context.Context, t *model.Template) (string, error) {
	now := time.Now().UTC()
	t.CreatedAt = now
	t.UpdatedAt = now

	doc, err := toTemplateDocument(t)
	if err != nil {
		return "", err
	}
	doc.ID = primitive.NewObjectID()

	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return "", err
	}
	t.ID = doc.ID.Hex()
	return t.ID, nil
}

// GetByID returns nil, nil when no template has the id
func (r *templateRepo) GetByID(ctx context.Context, id string) (*model.Template, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}

	var doc templateDocument
	err = r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return doc.toModel(), nil
}

func (r *templateRepo) GetByHostID(ctx context.Context, hostID string) ([]*model.Template, error) {
	opts := options.Find().SetSort(bson.D{{Key: "updatedAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"hostId": hostID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []templateDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	templates := make([]*model.Template, len(docs))
	for i, d := range docs {
		templates[i] = d.toModel()
	}
	return templates, nil
}

func (r *templateRepo) Update(ctx context.Context, t *model.Template) error {
	t.UpdatedAt = time.Now().UTC()
	doc, err := toTemplateDocument(t)
	if err != nil {
		return ErrNoDocument
	}

	res, err := r.collection.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNoDocument
	}
	return nil
}

func (r *templateRepo) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNoDocument
	}

	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNoDocument
	}
	return nil
}
