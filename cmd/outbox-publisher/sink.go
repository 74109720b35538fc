package main

import (
	"context"
	"fmt"
	"sync"

	gcppubsub "cloud.google.com/go/pubsub/v2"

	"github.com/angelmondragon/wholesale-backoffice/pkg/outbox/registry"
)

type publisherSource interface {
	Publisher(name string) *gcppubsub.Publisher
}

// topicSink caches one Pub/Sub publisher per topic for the life of the process.
type topicSink struct {
	source publisherSource

	mu         sync.Mutex
	publishers map[string]*gcppubsub.Publisher
}

func newTopicSink(source publisherSource) *topicSink {
	return &topicSink{source: source, publishers: map[string]*gcppubsub.Publisher{}}
}

func (s *topicSink) Send(ctx context.Context, topic string, msg *gcppubsub.Message) error {
	pub := s.publisher(topic)
	if pub == nil {
		return registry.NewNonRetryableError(fmt.Errorf("no publisher for topic %q", topic))
	}
	if _, err := pub.Publish(ctx, msg).Get(ctx); err != nil {
		return fmt.Errorf("publish to %s: %w", topic, err)
	}
	return nil
}

func (s *topicSink) publisher(topic string) *gcppubsub.Publisher {
	s.mu.Lock()
	defer s.mu.Unlock()
	if pub, ok := s.publishers[topic]; ok {
		return pub
	}
	if s.source == nil || topic == "" {
		return nil
	}
	pub := s.source.Publisher(topic)
	if pub != nil {
		s.publishers[topic] = pub
	}
	return pub
}

// Stop flushes pending messages and releases every topic publisher.
func (s *topicSink) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for topic, pub := range s.publishers {
		pub.Stop()
		delete(s.publishers, topic)
	}
}
