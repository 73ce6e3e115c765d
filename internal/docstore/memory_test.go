package docstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"intake/pkg/platform/sentinel"
)

type MemoryStoreSuite struct {
	suite.Suite
	store *MemoryStore
	ctx   context.Context
}

func TestMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(MemoryStoreSuite))
}

func (s *MemoryStoreSuite) SetupTest() {
	s.store = NewMemoryStore()
	s.ctx = context.Background()
}

func (s *MemoryStoreSuite) TestSetAndGet() {
	s.Run("explicit id round-trips", func() {
		id, err := s.store.Set(s.ctx, "registrations", "reg-1", map[string]any{"firstName": "Sherine"})
		s.Require().NoError(err)
		s.Equal("reg-1", id)

		doc, err := s.store.Get(s.ctx, "registrations", "reg-1")
		s.Require().NoError(err)
		s.Equal("Sherine", doc.Fields["firstName"])
	})

	s.Run("empty id generates one", func() {
		id, err := s.store.Set(s.ctx, "registrations", "", map[string]any{"firstName": "Farah"})
		s.Require().NoError(err)
		s.NotEmpty(id)

		doc, err := s.store.Get(s.ctx, "registrations", id)
		s.Require().NoError(err)
		s.Equal("Farah", doc.Fields["firstName"])
	})

	s.Run("missing document returns not found", func() {
		_, err := s.store.Get(s.ctx, "registrations", "nope")
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("set is an upsert", func() {
		_, err := s.store.Set(s.ctx, "registrations", "reg-up", map[string]any{"firstName": "Old"})
		s.Require().NoError(err)
		_, err = s.store.Set(s.ctx, "registrations", "reg-up", map[string]any{"firstName": "New"})
		s.Require().NoError(err)

		doc, err := s.store.Get(s.ctx, "registrations", "reg-up")
		s.Require().NoError(err)
		s.Equal("New", doc.Fields["firstName"])
	})
}

func (s *MemoryStoreSuite) TestGetIsolatesStoredData() {
	fields := map[string]any{
		"firstName":          "Ahmed",
		"currentInvestments": []string{"Stocks"},
	}
	_, err := s.store.Set(s.ctx, "registrations", "reg-iso", fields)
	s.Require().NoError(err)

	// Mutating the caller's map after the write must not affect the store.
	fields["firstName"] = "changed"

	doc, err := s.store.Get(s.ctx, "registrations", "reg-iso")
	s.Require().NoError(err)
	s.Equal("Ahmed", doc.Fields["firstName"])

	// Mutating a read result must not affect later reads.
	doc.Fields["firstName"] = "changed again"
	again, err := s.store.Get(s.ctx, "registrations", "reg-iso")
	s.Require().NoError(err)
	s.Equal("Ahmed", again.Fields["firstName"])
}

func (s *MemoryStoreSuite) TestDelete() {
	s.Run("removes existing document", func() {
		_, err := s.store.Set(s.ctx, "registrations", "reg-del", map[string]any{"firstName": "Khaled"})
		s.Require().NoError(err)

		s.Require().NoError(s.store.Delete(s.ctx, "registrations", "reg-del"))

		_, err = s.store.Get(s.ctx, "registrations", "reg-del")
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("missing document returns not found", func() {
		err := s.store.Delete(s.ctx, "registrations", "never-there")
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *MemoryStoreSuite) TestQueryAllOrdering() {
	for i, createdAt := range []int64{300, 100, 200} {
		_, err := s.store.Set(s.ctx, "registrations", string(rune('a'+i)), map[string]any{
			"createdAt": createdAt,
		})
		s.Require().NoError(err)
	}

	docs, err := s.store.QueryAll(s.ctx, "registrations", "createdAt", true)
	s.Require().NoError(err)
	s.Require().Len(docs, 3)
	s.Equal(int64(300), docs[0].Fields["createdAt"])
	s.Equal(int64(200), docs[1].Fields["createdAt"])
	s.Equal(int64(100), docs[2].Fields["createdAt"])

	ascending, err := s.store.QueryAll(s.ctx, "registrations", "createdAt", false)
	s.Require().NoError(err)
	s.Equal(int64(100), ascending[0].Fields["createdAt"])
}

func (s *MemoryStoreSuite) TestQueryAllDeterministicTieBreak() {
	for _, id := range []string{"b", "c", "a"} {
		_, err := s.store.Set(s.ctx, "registrations", id, map[string]any{"createdAt": int64(500)})
		s.Require().NoError(err)
	}
	// A document missing the order field sorts last.
	_, err := s.store.Set(s.ctx, "registrations", "z", map[string]any{"name": "no timestamp"})
	s.Require().NoError(err)

	docs, err := s.store.QueryAll(s.ctx, "registrations", "createdAt", true)
	s.Require().NoError(err)
	s.Require().Len(docs, 4)
	s.Equal("a", docs[0].ID)
	s.Equal("b", docs[1].ID)
	s.Equal("c", docs[2].ID)
	s.Equal("z", docs[3].ID)
}

func (s *MemoryStoreSuite) TestQueryAllEmptyCollection() {
	docs, err := s.store.QueryAll(s.ctx, "registrations", "createdAt", true)
	s.Require().NoError(err)
	s.Empty(docs)
}
