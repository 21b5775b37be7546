//go:build integration

package events_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/twmb/franz-go/pkg/kgo"

	"kycgate/internal/events"
	"kycgate/internal/platform/config"
	"kycgate/pkg/testutil/containers"
)

type KafkaPublisherSuite struct {
	suite.Suite
	redpanda *containers.RedpandaContainer
}

func TestKafkaPublisherSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(KafkaPublisherSuite))
}

func (s *KafkaPublisherSuite) SetupSuite() {
	s.redpanda = containers.GetManager().GetRedpanda(s.T())
}

func (s *KafkaPublisherSuite) TestPublishIsConsumable() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	topic := "kyc.lifecycle.test"

	pub, err := events.NewKafkaPublisher(ctx, config.Kafka{Brokers: s.redpanda.Brokers, Topic: topic, ClientID: "kycgate-test"})
	s.Require().NoError(err)
	defer pub.Close()

	// Second construction must tolerate the existing topic.
	again, err := events.NewKafkaPublisher(ctx, config.Kafka{Brokers: s.redpanda.Brokers, Topic: topic, ClientID: "kycgate-test"})
	s.Require().NoError(err)
	again.Close()

	s.Require().NoError(pub.Publish(ctx, events.Event{
		Type:          events.TypeDecided,
		ApplicationID: "app-1",
		Status:        "kyc_approved",
		OccurredAt:    time.Now().UTC(),
	}))

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(s.redpanda.Brokers...),
		kgo.ConsumeTopics(topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	s.Require().NoError(err)
	defer consumer.Close()

	fetches := consumer.PollFetches(ctx)
	s.Require().Empty(fetches.Errors())

	var got []events.Event
	fetches.EachRecord(func(r *kgo.Record) {
		var e events.Event
		s.Require().NoError(json.Unmarshal(r.Value, &e))
		s.Equal("app-1", string(r.Key))
		got = append(got, e)
	})
	s.Require().Len(got, 1)
	s.Equal(events.TypeDecided, got[0].Type)
}
