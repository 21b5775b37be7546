//go:build integration

package users_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"kycgate/internal/users"
	"kycgate/pkg/platform/sentinel"
	"kycgate/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *users.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
	s.store = users.NewPostgres(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "users"))
}

func (s *PostgresStoreSuite) TestUpdateKYCStatus() {
	ctx := context.Background()
	s.Require().NoError(s.store.Save(ctx, &users.User{UUID: "u-7", Username: "carol", Email: "carol@example.com"}))

	s.Require().NoError(s.store.UpdateKYCStatus(ctx, "u-7", true))

	u, err := s.store.GetByUUID(ctx, "u-7")
	s.Require().NoError(err)
	s.True(u.IsKYCApproved)

	s.ErrorIs(s.store.UpdateKYCStatus(ctx, "missing", true), sentinel.ErrNotFound)
}
