//go:build integration

package fourstop_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"kycgate/internal/kyc/models"
	"kycgate/internal/kyc/store/application"
	"kycgate/internal/provider/fourstop"
	"kycgate/pkg/platform/sentinel"
	"kycgate/pkg/testutil/containers"
)

type PayloadStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	apps     *application.PostgresStore
	store    *fourstop.PostgresStore
}

func TestPayloadStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PayloadStoreSuite))
}

func (s *PayloadStoreSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
	s.apps = application.NewPostgres(s.postgres.DB)
	s.store = fourstop.NewPostgres(s.postgres.DB)
}

func (s *PayloadStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "kyc_provider_payloads", "kyc_applications"))
}

func (s *PayloadStoreSuite) application() uuid.UUID {
	now := time.Now().UTC()
	app := &models.Application{
		ID:             uuid.New(),
		UserUUID:       uuid.NewString(),
		UserName:       "ada",
		EthereumWallet: "0x3333333333333333333333333333333333333333",
		Status:         models.StatusUnprocessed,
		RequestOrigin:  "203.0.113.9",
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	s.Require().NoError(s.apps.Create(context.Background(), app))
	return app.ID
}

func payload() *fourstop.EnrollmentData {
	return &fourstop.EnrollmentData{
		CustomerInformation: &fourstop.CustomerInformation{FirstName: "Ada", LastName: "Lovelace", Country: "GB"},
		DocImages: &fourstop.DocImages{
			Doc: &fourstop.DocImage{Data: []byte{0x89, 0x50, 0x4e, 0x47}, ContentType: "image/png", Filename: "id.png"},
		},
	}
}

func (s *PayloadStoreSuite) TestRoundTrip() {
	ctx := context.Background()
	id := s.application()

	s.Require().NoError(s.store.Save(ctx, id, payload()))

	got, err := s.store.Get(ctx, id)
	s.Require().NoError(err)
	s.Equal("Ada", got.CustomerInformation.FirstName)
	s.Equal([]byte{0x89, 0x50, 0x4e, 0x47}, got.DocImages.Doc.Data)

	s.ErrorIs(s.store.Save(ctx, id, payload()), sentinel.ErrAlreadyUsed)

	s.Require().NoError(s.store.Delete(ctx, id))
	_, err = s.store.Get(ctx, id)
	s.ErrorIs(err, sentinel.ErrNotFound)
	s.NoError(s.store.Delete(ctx, id))
}

func (s *PayloadStoreSuite) TestOrphanRejected() {
	err := s.store.Save(context.Background(), uuid.New(), payload())
	s.ErrorIs(err, sentinel.ErrNotFound)
}
