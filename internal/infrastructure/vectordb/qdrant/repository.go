// Package qdrant provides a ports.PersonIndex backed by a Qdrant collection.
package qdrant

import (
	"context"
	"errors"
	"fmt"
	"time"

	pb "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"

	"github.com/ersonp/kinship/internal/domain/ports"
	"github.com/ersonp/kinship/internal/infrastructure/config"
)

// Repository implements ports.PersonIndex and ports.CollectionManager.
type Repository struct {
	client     pb.CollectionsClient
	points     pb.PointsClient
	collection string
	conn       *grpc.ClientConn
}

// NewRepository creates a client for cfg.Collection. The connection is lazy.
func NewRepository(cfg config.QdrantConfig) (*Repository, error) {
	if cfg.Collection == "" {
		return nil, errors.New("qdrant collection is required")
	}
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	opts := []grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}
	if cfg.APIKey != "" {
		opts = append(opts, grpc.WithUnaryInterceptor(apiKeyInterceptor(cfg.APIKey)))
	}

	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("connecting to qdrant: %w", err)
	}

	return &Repository{
		client:     pb.NewCollectionsClient(conn),
		points:     pb.NewPointsClient(conn),
		collection: cfg.Collection,
		conn:       conn,
	}, nil
}

func apiKeyInterceptor(key string) grpc.UnaryClientInterceptor {
	return func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
		ctx = metadata.AppendToOutgoingContext(ctx, "api-key", key)
		return invoker(ctx, method, req, reply, cc, opts...)
	}
}

// Close closes the gRPC connection.
func (r *Repository) Close() error {
	if r.conn != nil {
		return r.conn.Close()
	}
	return nil
}

// Collection returns the collection name.
func (r *Repository) Collection() string {
	return r.collection
}

// EnsureCollection creates the collection if it doesn't exist.
func (r *Repository) EnsureCollection(ctx context.Context, vectorSize uint64) error {
	if _, err := r.client.Get(ctx, &pb.GetCollectionInfoRequest{CollectionName: r.collection}); err == nil {
		return nil
	}

	_, err := r.client.Create(ctx, &pb.CreateCollection{
		CollectionName: r.collection,
		VectorsConfig: &pb.VectorsConfig{
			Config: &pb.VectorsConfig_Params{
				Params: &pb.VectorParams{
					Size:     vectorSize,
					Distance: pb.Distance_Cosine,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("creating collection: %w", err)
	}
	return nil
}

// DeleteCollection drops the collection.
func (r *Repository) DeleteCollection(ctx context.Context) error {
	if _, err := r.client.Delete(ctx, &pb.DeleteCollection{CollectionName: r.collection}); err != nil {
		return fmt.Errorf("deleting collection: %w", err)
	}
	return nil
}

// Upsert stores the person's embedding, keyed by person ID.
func (r *Repository) Upsert(ctx context.Context, personID, text string, embedding []float32) error {
	wait := true
	_, err := r.points.Upsert(ctx, &pb.UpsertPoints{
		CollectionName: r.collection,
		Wait:           &wait,
		Points:         []*pb.PointStruct{personPoint(personID, text, embedding, time.Now())},
	})
	if err != nil {
		return fmt.Errorf("upserting point: %w", err)
	}
	return nil
}

// Search returns the closest person IDs, best first.
func (r *Repository) Search(ctx context.Context, embedding []float32, limit int) ([]ports.ScoredID, error) {
	resp, err := r.points.Search(ctx, &pb.SearchPoints{
		CollectionName: r.collection,
		Vector:         embedding,
		Limit:          uint64(max(limit, 1)),
		WithPayload: &pb.WithPayloadSelector{
			SelectorOptions: &pb.WithPayloadSelector_Enable{Enable: false},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("searching points: %w", err)
	}
	return scoredIDs(resp.Result), nil
}

// Delete removes a person's embedding.
func (r *Repository) Delete(ctx context.Context, personID string) error {
	_, err := r.points.Delete(ctx, &pb.DeletePoints{
		CollectionName: r.collection,
		Points: &pb.PointsSelector{
			PointsSelectorOneOf: &pb.PointsSelector_Points{
				Points: &pb.PointsIdsList{
					Ids: []*pb.PointId{pointID(personID)},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("deleting point: %w", err)
	}
	return nil
}

func pointID(personID string) *pb.PointId {
	return &pb.PointId{PointIdOptions: &pb.PointId_Uuid{Uuid: personID}}
}

func personPoint(personID, text string, embedding []float32, indexedAt time.Time) *pb.PointStruct {
	return &pb.PointStruct{
		Id: pointID(personID),
		Vectors: &pb.Vectors{
			VectorsOptions: &pb.Vectors_Vector{
				Vector: &pb.Vector{Data: embedding},
			},
		},
		Payload: map[string]*pb.Value{
			"person_id":  {Kind: &pb.Value_StringValue{StringValue: personID}},
			"text":       {Kind: &pb.Value_StringValue{StringValue: text}},
			"indexed_at": {Kind: &pb.Value_StringValue{StringValue: indexedAt.UTC().Format(time.RFC3339)}},
		},
	}
}

func scoredIDs(points []*pb.ScoredPoint) []ports.ScoredID {
	result := make([]ports.ScoredID, 0, len(points))
	for _, p := range points {
		id := p.GetId().GetUuid()
		if id == "" {
			continue
		}
		result = append(result, ports.ScoredID{ID: id, Score: p.GetScore()})
	}
	return result
}
