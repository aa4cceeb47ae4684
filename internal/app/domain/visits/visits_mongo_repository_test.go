package visits

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

type fakeCollection struct {
	existing  bson.D
	findErr   error
	insertErr error
	inserted  []interface{}
	docs      []interface{}
	findOpts  *options.FindOptions
}

func (f *fakeCollection) FindOne(_ context.Context, _ interface{}, _ ...*options.FindOneOptions) *mongo.SingleResult {
	if f.findErr != nil {
		return mongo.NewSingleResultFromDocument(bson.D{}, f.findErr, nil)
	}
	if f.existing == nil {
		return mongo.NewSingleResultFromDocument(bson.D{}, mongo.ErrNoDocuments, nil)
	}
	return mongo.NewSingleResultFromDocument(f.existing, nil, nil)
}

func (f *fakeCollection) InsertOne(_ context.Context, doc interface{}, _ ...*options.InsertOneOptions) (*mongo.InsertOneResult, error) {
	if f.insertErr != nil {
		return nil, f.insertErr
	}
	f.inserted = append(f.inserted, doc)
	return &mongo.InsertOneResult{InsertedID: primitive.NewObjectID()}, nil
}

func (f *fakeCollection) Find(_ context.Context, _ interface{}, opts ...*options.FindOptions) (*mongo.Cursor, error) {
	if len(opts) > 0 {
		f.findOpts = opts[0]
	}
	return mongo.NewCursorFromDocuments(f.docs, nil, nil)
}

func TestMongoRepository_RecordVisit(t *testing.T) {
	at := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	t.Run("first visit inserts document", func(t *testing.T) {
		coll := &fakeCollection{}
		repo := NewMongoRepository(coll, zap.NewNop())

		res, err := repo.RecordVisit(context.Background(), "Monument One", at)
		require.NoError(t, err)
		assert.True(t, res.IsNewVisit)
		assert.Len(t, res.InsertedID, 24)
		require.Len(t, coll.inserted, 1)
		doc := coll.inserted[0].(bson.M)
		assert.Equal(t, "Monument One", doc["monumentName"])
		assert.Equal(t, true, doc["firstVisit"])
		assert.Equal(t, at, doc["timestamp"])
	})

	t.Run("existing document is left alone", func(t *testing.T) {
		coll := &fakeCollection{existing: bson.D{{Key: "monumentName", Value: "Monument One"}}}
		repo := NewMongoRepository(coll, zap.NewNop())

		res, err := repo.RecordVisit(context.Background(), "Monument One", at)
		require.NoError(t, err)
		assert.False(t, res.IsNewVisit)
		assert.Empty(t, coll.inserted)
	})

	t.Run("duplicate key on insert reports repeat visit", func(t *testing.T) {
		coll := &fakeCollection{insertErr: mongo.WriteException{
			WriteErrors: []mongo.WriteError{{Code: 11000, Message: "E11000 duplicate key"}},
		}}
		repo := NewMongoRepository(coll, zap.NewNop())

		res, err := repo.RecordVisit(context.Background(), "Monument One", at)
		require.NoError(t, err)
		assert.False(t, res.IsNewVisit)
	})

	t.Run("lookup failure", func(t *testing.T) {
		coll := &fakeCollection{findErr: errors.New("server selection timeout")}
		repo := NewMongoRepository(coll, zap.NewNop())

		_, err := repo.RecordVisit(context.Background(), "Monument One", at)
		assert.ErrorContains(t, err, "server selection timeout")
	})
}

func TestMongoRepository_RecentVisits(t *testing.T) {
	ts := time.Date(2025, 3, 2, 9, 0, 0, 0, time.UTC)
	id := primitive.NewObjectID()
	coll := &fakeCollection{docs: []interface{}{
		bson.D{
			{Key: "_id", Value: id},
			{Key: "monumentName", Value: "Monument Two"},
			{Key: "timestamp", Value: ts},
			{Key: "firstVisit", Value: true},
		},
	}}
	repo := NewMongoRepository(coll, zap.NewNop())

	visits, err := repo.RecentVisits(context.Background(), MaxRecentVisits)
	require.NoError(t, err)
	require.Len(t, visits, 1)
	assert.Equal(t, id.Hex(), visits[0].ID)
	assert.Equal(t, "Monument Two", visits[0].MonumentName)
	assert.True(t, visits[0].Timestamp.Equal(ts))

	require.NotNil(t, coll.findOpts)
	require.NotNil(t, coll.findOpts.Limit)
	assert.Equal(t, int64(MaxRecentVisits), *coll.findOpts.Limit)
	assert.Equal(t, bson.D{{Key: "timestamp", Value: -1}}, coll.findOpts.Sort)
}
