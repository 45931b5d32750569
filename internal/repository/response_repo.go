package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"evalforge/internal/model"
)

// ResponseRepo handles MongoDB operations for collected responses
type ResponseRepo interface {
	Create(ctx context.Context, resp *model.Response) error
	GetByID(ctx context.Context, id string) (*model.Response, error)
	GetByTemplateID(ctx context.Context, templateID string) ([]*model.Response, error)
	DeleteByTemplateID(ctx context.Context, templateID string) (int64, error)
}

type responseRepo struct {
	collection *mongo.Collection
}

// NewResponseRepo creates a new response repository
func NewResponseRepo(db *mongo.Database) ResponseRepo {
	return &responseRepo{
		collection: db.Collection("responses"),
	}
}

func (r *responseRepo) Create(ctx context.Context, resp *model.Response) error {
	if resp.SubmittedAt.IsZero() {
		resp.SubmittedAt = time.Now().UTC()
	}

	oid := primitive.NewObjectID()
	resp.ID = oid.Hex()
	if _, err := r.collection.InsertOne(ctx, resp); err != nil {
		resp.ID = ""
		return err
	}
	return nil
}

func (r *responseRepo) GetByID(ctx context.Context, id string) (*model.Response, error) {
	var resp model.Response
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&resp)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (r *responseRepo) GetByTemplateID(ctx context.Context, templateID string) ([]*model.Response, error) {
	opts := options.Find().SetSort(bson.D{{Key: "submittedAt", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"templateId": templateID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var responses []*model.Response
	if err := cursor.All(ctx, &responses); err != nil {
		return nil, err
	}
	return responses, nil
}

func (r *responseRepo) DeleteByTemplateID(ctx context.Context, templateID string) (int64, error) {
	res, err := r.collection.DeleteMany(ctx, bson.M{"templateId": templateID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
