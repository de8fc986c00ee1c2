package qdrant

import (
	"testing"
	"time"

	pb "github.com/qdrant/go-client/qdrant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/kinship/internal/domain/ports"
	"github.com/ersonp/kinship/internal/infrastructure/config"
)

func TestNewRepository(t *testing.T) {
	repo, err := NewRepository(config.QdrantConfig{Host: "localhost", Port: 6334, Collection: "kinship_test", APIKey: "secret"})
	require.NoError(t, err)
	defer repo.Close()

	assert.Equal(t, "kinship_test", repo.Collection())

	_, err = NewRepository(config.QdrantConfig{Host: "localhost", Port: 6334})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "collection is required")
}

func TestPersonPoint(t *testing.T) {
	at := time.Date(2024, time.May, 4, 10, 0, 0, 0, time.UTC)

	point := personPoint("0b0c5b9e-8d4f-4d59-9a43-3f5f0e3c1a11", "Ada born 1815-12-10", []float32{0.5, 0.25}, at)

	assert.Equal(t, "0b0c5b9e-8d4f-4d59-9a43-3f5f0e3c1a11", point.GetId().GetUuid())
	assert.Equal(t, []float32{0.5, 0.25}, point.GetVectors().GetVector().GetData())
	assert.Equal(t, "Ada born 1815-12-10", point.GetPayload()["text"].GetStringValue())
	assert.Equal(t, "2024-05-04T10:00:00Z", point.GetPayload()["indexed_at"].GetStringValue())
}

func TestScoredIDs(t *testing.T) {
	points := []*pb.ScoredPoint{
		{Id: pointID("a"), Score: 0.9},
		{Id: &pb.PointId{PointIdOptions: &pb.PointId_Num{Num: 7}}, Score: 0.8},
		{Id: pointID("b"), Score: 0.7},
	}

	assert.Equal(t, []ports.ScoredID{{ID: "a", Score: 0.9}, {ID: "b", Score: 0.7}}, scoredIDs(points))
	assert.Empty(t, scoredIDs(nil))
}
