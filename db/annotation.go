// Package db
package db

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/daoforge/governor-backend/types"
)

type IAnnotation interface {
	UpsertAnnotation(ctx context.Context, annotation *types.Annotation) error
	Annotations(ctx context.Context, proposalID string) ([]*types.Annotation, error)
	Annotation(ctx context.Context, proposalID, key string) (*types.Annotation, error)
	DeleteAnnotation(ctx context.Context, proposalID, key string) error
}

func (m *mongoDB) createAnnotationIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{Keys: bson.D{{Key: "proposalId", Value: 1}, {Key: "key", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.M{"updateTime": -1}, Options: options.Index().SetSparse(true)},
	}
}

// UpsertAnnotation writes one annotation with last-write-wins semantics.
// The current document is re-read immediately before merging: another
// writer may have modified it since this caller's last read, and the merge
// must happen against what is stored now, not against a stale copy.
func (m *mongoDB) UpsertAnnotation(ctx context.Context, annotation *types.Annotation) error {
	lgr := m.logger.With(zap.String("method", "UpsertAnnotation"))

	current, err := m.Annotation(ctx, annotation.ProposalID, annotation.Key)
	if err == nil && current != nil {
		if annotation.Author == "" {
			annotation.Author = current.Author
		}
	}
	annotation.UpdateTime = time.Now().Unix()

	filter := bson.M{"proposalId": annotation.ProposalID, "key": annotation.Key}
	model := []mongo.WriteModel{
		mongo.NewUpdateOneModel().SetUpsert(true).SetFilter(filter).SetUpdate(bson.M{"$set": annotation}),
	}
	if _, err := m.db.Collection(cAnnotations).BulkWrite(ctx, model); err != nil {
		lgr.Warn("cannot upsert annotation", zap.Error(err))
		return err
	}
	return nil
}

func (m *mongoDB) Annotation(ctx context.Context, proposalID, key string) (*types.Annotation, error) {
	var result *types.Annotation
	err := m.db.Collection(cAnnotations).FindOne(ctx, bson.M{"proposalId": proposalID, "key": key}).Decode(&result)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, types.ErrAnnotationNotFound
		}
		return nil, err
	}
	return result, nil
}

func (m *mongoDB) Annotations(ctx context.Context, proposalID string) ([]*types.Annotation, error) {
	opts := options.Find().SetSort(bson.M{"updateTime": -1})
	cursor, err := m.db.Collection(cAnnotations).Find(ctx, bson.M{"proposalId": proposalID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list annotations: %v", err)
	}
	defer func() {
		if err := cursor.Close(ctx); err != nil {
			m.logger.Warn("Error when close cursor", zap.Error(err))
		}
	}()
	var annotations []*types.Annotation
	for cursor.Next(ctx) {
		annotation := &types.Annotation{}
		if err := cursor.Decode(annotation); err != nil {
			return nil, err
		}
		annotations = append(annotations, annotation)
	}
	return annotations, nil
}

func (m *mongoDB) DeleteAnnotation(ctx context.Context, proposalID, key string) error {
	_, err := m.db.Collection(cAnnotations).DeleteOne(ctx, bson.M{"proposalId": proposalID, "key": key})
	return err
}
