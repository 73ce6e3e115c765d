//go:build integration

package docstore_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"intake/internal/docstore"
	"intake/pkg/platform/sentinel"
	"intake/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *docstore.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())
	s.store = docstore.NewPostgresStore(s.postgres.DB)
	s.Require().NoError(s.store.EnsureSchema(context.Background()))
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "documents"))
}

func (s *PostgresStoreSuite) TestEnsureSchemaIdempotent() {
	s.Require().NoError(s.store.EnsureSchema(context.Background()))
}

func (s *PostgresStoreSuite) TestRoundTrip() {
	ctx := context.Background()

	id, err := s.store.Set(ctx, "registrations", "", map[string]any{
		"firstName":          "Hasem",
		"currentInvestments": []string{"Stocks", "Gold"},
		"createdAt":          int64(1700000000000),
	})
	s.Require().NoError(err)
	s.Require().NotEmpty(id)

	doc, err := s.store.Get(ctx, "registrations", id)
	s.Require().NoError(err)
	s.Equal("Hasem", doc.Fields["firstName"])
	s.Equal([]any{"Stocks", "Gold"}, doc.Fields["currentInvestments"])
	s.Equal(int64(1700000000000), doc.Fields["createdAt"])
}

func (s *PostgresStoreSuite) TestUpsert() {
	ctx := context.Background()

	_, err := s.store.Set(ctx, "influencers", "SH7X9K2M4PLQ", map[string]any{"name": "old"})
	s.Require().NoError(err)
	_, err = s.store.Set(ctx, "influencers", "SH7X9K2M4PLQ", map[string]any{"name": "Sherine hamdy"})
	s.Require().NoError(err)

	doc, err := s.store.Get(ctx, "influencers", "SH7X9K2M4PLQ")
	s.Require().NoError(err)
	s.Equal("Sherine hamdy", doc.Fields["name"])
}

func (s *PostgresStoreSuite) TestDeleteMissing() {
	err := s.store.Delete(context.Background(), "registrations", "absent")
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestQueryAllOrdered() {
	ctx := context.Background()

	for i, ts := range []int64{200, 100, 300} {
		_, err := s.store.Set(ctx, "registrations", string(rune('a'+i)), map[string]any{
			"createdAt": ts,
		})
		s.Require().NoError(err)
	}

	docs, err := s.store.QueryAll(ctx, "registrations", "createdAt", true)
	s.Require().NoError(err)
	s.Require().Len(docs, 3)
	s.Equal("c", docs[0].ID)
	s.Equal("a", docs[1].ID)
	s.Equal("b", docs[2].ID)
}
