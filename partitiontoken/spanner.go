package partitiontoken

import (
	"context"
	"fmt"

	"cloud.google.com/go/spanner"
	sppb "google.golang.org/genproto/googleapis/spanner/v1"
	"google.golang.org/api/iterator"

	"github.com/toga4/changestreamcore"
)

// SpannerPartitionTokenStore implements changestreamcore.PartitionTokenStore
// by querying a partition-token table in Cloud Spanner.
type SpannerPartitionTokenStore struct {
	client          *spanner.Client
	tableName       string
	requestPriority sppb.RequestOptions_Priority
}

const (
	columnChangeStreamName = "ChangeStreamName"
	columnPartitionToken   = "PartitionToken"
)

type spannerOption interface {
	apply(*SpannerPartitionTokenStore)
}

type withRequestPriority sppb.RequestOptions_Priority

func (o withRequestPriority) apply(s *SpannerPartitionTokenStore) {
	s.requestPriority = sppb.RequestOptions_Priority(o)
}

// WithRequestPriority sets the priority for requests this store issues
// against Cloud Spanner. Default is unspecified, equivalent to high.
func WithRequestPriority(priority sppb.RequestOptions_Priority) spannerOption {
	return withRequestPriority(priority)
}

// NewSpanner creates a SpannerPartitionTokenStore reading from tableName.
func NewSpanner(client *spanner.Client, tableName string, options ...spannerOption) *SpannerPartitionTokenStore {
	s := &SpannerPartitionTokenStore{client: client, tableName: tableName}
	for _, o := range options {
		o.apply(s)
	}
	return s
}

var _ changestreamcore.PartitionTokenStore = (*SpannerPartitionTokenStore)(nil)

func (s *SpannerPartitionTokenStore) Token(ctx context.Context, cs *changestreamcore.ChangeStream) (string, error) {
	stmt := spanner.Statement{
		SQL: fmt.Sprintf("SELECT %s FROM %s WHERE %s = @changeStreamName", columnPartitionToken, s.tableName, columnChangeStreamName),
		Params: map[string]any{
			"changeStreamName": cs.Name,
		},
	}

	iter := s.client.Single().QueryWithOptions(ctx, stmt, spanner.QueryOptions{Priority: s.requestPriority})
	defer iter.Stop()

	r, err := iter.Next()
	switch err {
	case iterator.Done:
		return "", nil
	case nil:
		// break
	default:
		return "", err
	}

	var token string
	if err := r.Columns(&token); err != nil {
		return "", err
	}
	return token, nil
}

// Set upserts the partition token a change stream should currently write
// under, using spanner.InsertOrUpdateMap.
func (s *SpannerPartitionTokenStore) Set(ctx context.Context, changeStreamName, token string) error {
	m := spanner.InsertOrUpdateMap(s.tableName, map[string]any{
		columnChangeStreamName: changeStreamName,
		columnPartitionToken:   token,
	})
	_, err := s.client.Apply(ctx, []*spanner.Mutation{m}, spanner.Priority(s.requestPriority))
	return err
}
