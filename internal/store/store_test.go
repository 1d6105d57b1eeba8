package store

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/agenthands/concord/internal/core/model"
	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func sampleComparison(id string) *model.Comparison {
	return &model.Comparison{
		ID:        id,
		CreatedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		Threshold: 0.94,
		Results: []model.ComparisonResult{
			{Index: 0, Para1: "Total 100", Para2: "Total 100", Similarity: 1},
			{Index: 3, Para1: "Total 100", Para2: "Total 120", Similarity: 0.8, DetailedDifferences: []model.DifferenceRecord{
				{Segment: "1", Field: "Total", Doc1Value: "100", Doc2Value: "120", MismatchType: "amount", Confidence: 0.9},
			}},
		},
		Summary: model.Summary{TotalSegments: 1, TotalMismatches: 1, AverageConfidence: 0.9},
	}
}

func TestSlotName(t *testing.T) {
	s, err := SlotName("1")
	require.NoError(t, err)
	assert.Equal(t, SlotLeft, s)
	s, err = SlotName("doc2")
	require.NoError(t, err)
	assert.Equal(t, SlotRight, s)
	_, err = SlotName("3")
	assert.Error(t, err)
}

func TestMemory(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	_, err := m.GetDocument(ctx, SlotLeft)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = m.Latest(ctx)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, m.PutDocument(ctx, SlotLeft, []byte("Total 100")))
	doc, err := m.GetDocument(ctx, SlotLeft)
	require.NoError(t, err)
	assert.Equal(t, []byte("Total 100"), doc)

	require.NoError(t, m.Save(ctx, sampleComparison("a")))
	require.NoError(t, m.Save(ctx, sampleComparison("b")))

	latest, err := m.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, "b", latest.ID)

	got, err := m.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "a", got.ID)

	_, err = m.Get(ctx, "zzz")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedis_Documents(t *testing.T) {
	db, mock := redismock.NewClientMock()
	s := NewRedis(db, "concord:", time.Hour)
	ctx := context.Background()

	mock.ExpectSet("concord:doc:doc1", []byte("Total 100"), time.Hour).SetVal("OK")
	mock.ExpectGet("concord:doc:doc1").SetVal("Total 100")
	mock.ExpectGet("concord:doc:doc2").RedisNil()

	require.NoError(t, s.PutDocument(ctx, SlotLeft, []byte("Total 100")))
	doc, err := s.GetDocument(ctx, SlotLeft)
	require.NoError(t, err)
	assert.Equal(t, []byte("Total 100"), doc)
	_, err = s.GetDocument(ctx, SlotRight)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedis_Results(t *testing.T) {
	db, mock := redismock.NewClientMock()
	s := NewRedis(db, "concord:", 24*time.Hour)
	ctx := context.Background()

	c := sampleComparison("abc")
	payload, err := json.Marshal(c)
	require.NoError(t, err)

	mock.ExpectSet("concord:result:abc", payload, 24*time.Hour).SetVal("OK")
	mock.ExpectSet("concord:latest", "abc", 24*time.Hour).SetVal("OK")
	mock.ExpectGet("concord:latest").SetVal("abc")
	mock.ExpectGet("concord:result:abc").SetVal(string(payload))
	mock.ExpectGet("concord:result:nope").RedisNil()

	require.NoError(t, s.Save(ctx, c))

	latest, err := s.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, c, latest)
	assert.Nil(t, latest.Results[0].DetailedDifferences)

	_, err = s.Get(ctx, "nope")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedis_Error(t *testing.T) {
	db, mock := redismock.NewClientMock()
	s := NewRedis(db, "p:", 0)

	mock.ExpectGet("p:latest").SetErr(errors.New("connection reset"))

	_, err := s.Latest(context.Background())
	assert.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotFound))
}

func TestRedis_LatestIsNotAResultID(t *testing.T) {
	db, mock := redismock.NewClientMock()
	s := NewRedis(db, "concord:", 0)
	ctx := context.Background()

	c := sampleComparison("abc")
	payload, err := json.Marshal(c)
	require.NoError(t, err)

	mock.ExpectSet("concord:result:abc", payload, 0).SetVal("OK")
	mock.ExpectSet("concord:latest", "abc", 0).SetVal("OK")
	mock.ExpectGet("concord:result:latest").RedisNil()

	require.NoError(t, s.Save(ctx, c))
	_, err = s.Get(ctx, "latest")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

type failingStore struct{ err error }

func (f failingStore) Save(ctx context.Context, c *model.Comparison) error { return f.err }
func (f failingStore) Get(ctx context.Context, id string) (*model.Comparison, error) {
	return nil, f.err
}
func (f failingStore) Latest(ctx context.Context) (*model.Comparison, error) { return nil, f.err }

func TestTee_ArchiveFailureIsNotFatal(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	primary := NewMemory()
	tee := NewTee(primary, zap.New(core), failingStore{err: errors.New("memgraph down")})

	require.NoError(t, tee.Save(context.Background(), sampleComparison("x")))

	got, err := tee.Get(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, "x", got.ID)
	assert.Equal(t, 1, logs.FilterMessage("failed to archive comparison").Len())
}

func TestTee_FallsBackToArchive(t *testing.T) {
	ctx := context.Background()
	primary := NewMemory()
	archive := NewMemory()
	require.NoError(t, archive.Save(ctx, sampleComparison("old")))
	tee := NewTee(primary, nil, archive)

	got, err := tee.Get(ctx, "old")
	require.NoError(t, err)
	assert.Equal(t, "old", got.ID)

	latest, err := tee.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, "old", latest.ID)

	_, err = tee.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTee_PrimaryErrorIsReturned(t *testing.T) {
	tee := NewTee(failingStore{err: errors.New("boom")}, nil, NewMemory())

	_, err := tee.Get(context.Background(), "x")
	assert.EqualError(t, err, "boom")
}
