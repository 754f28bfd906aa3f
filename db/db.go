// Package db
package db

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/daoforge/governor-backend/types"
)

type Adapter string

const (
	MGO Adapter = "mgo"
)

type Config struct {
	DbAdapter Adapter
	DbName    string
	URL       string
	MinConn   int
	MaxConn   int

	Logger *zap.Logger
}

// Client is the off-chain annotation store. On-chain state is never written
// here; every document is an operator- or user-authored note keyed by
// proposal id.
type Client interface {
	ping(ctx context.Context) error

	IAnnotation
}

func NewClient(cfg Config) (Client, error) {
	switch cfg.DbAdapter {
	case MGO:
		return newMongoDB(cfg)
	default:
		return nil, errors.New("invalid db config")
	}
}

const (
	cAnnotations = "Annotations"
)

type mongoDB struct {
	logger *zap.Logger
	db     *mongo.Database
}

func newMongoDB(cfg Config) (*mongoDB, error) {
	ctx := context.Background()
	mgoOptions := options.Client()
	mgoOptions.ApplyURI(cfg.URL)
	mgoOptions.SetMinPoolSize(uint64(cfg.MinConn))
	mgoOptions.SetMaxPoolSize(uint64(cfg.MaxConn))
	mgoClient, err := mongo.NewClient(mgoOptions)
	if err != nil {
		return nil, err
	}
	if err := mgoClient.Connect(ctx); err != nil {
		return nil, err
	}

	dbClient := &mongoDB{
		logger: cfg.Logger.With(zap.String("db", "mgo")),
		db:     mgoClient.Database(cfg.DbName),
	}
	if _, err := dbClient.db.Collection(cAnnotations).Indexes().CreateMany(ctx, dbClient.createAnnotationIndexes()); err != nil {
		return nil, err
	}
	return dbClient, nil
}

func (m *mongoDB) ping(ctx context.Context) error {
	if m.db == nil {
		return types.ErrUnavailable
	}
	return m.db.Client().Ping(ctx, nil)
}
