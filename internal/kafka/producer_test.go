package kafka

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestNewProducer(t *testing.T) {
	p := NewProducer([]string{"localhost:9092"}, zap.NewNop(), WithRetries(3))
	assert.NotNil(t, p.writer)
	assert.Equal(t, uint64(3), p.maxRetries)

	p = NewProducer([]string{"localhost:9092"}, zap.NewNop(), WithRetries(-1))
	assert.Equal(t, uint64(0), p.maxRetries)
	assert.NoError(t, p.Close())
}

func TestProducer_PublishRejectsUnencodablePayload(t *testing.T) {
	p := NewProducer([]string{"localhost:9092"}, zap.NewNop())
	defer p.Close()

	err := p.Publish(context.Background(), "cancellations", "k", make(chan int))
	assert.ErrorContains(t, err, "failed to marshal payload")
}

func TestProducer_CheckConnectionWithoutBrokers(t *testing.T) {
	p := NewProducer(nil, zap.NewNop())
	assert.Error(t, p.CheckConnection(context.Background()))
}
