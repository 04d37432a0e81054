package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"go-marketplace-api/internal/ws"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	keys []string
	err  error
}

func (r *recorder) Publish(_ context.Context, routingKey string, _ interface{}) error {
	r.keys = append(r.keys, routingKey)
	return r.err
}

func TestMultiPublishesToAll(t *testing.T) {
	ok := &recorder{}
	failing := &recorder{err: errors.New("broker down")}

	err := Multi{failing, ok}.Publish(context.Background(), OrderCreated, nil)

	assert.ErrorContains(t, err, "broker down")
	assert.Equal(t, []string{OrderCreated}, ok.keys)
	assert.Equal(t, []string{OrderCreated}, failing.keys)
}

func TestNop(t *testing.T) {
	assert.NoError(t, Nop{}.Publish(context.Background(), TopupCompleted, 1))
}

func TestHubPublisher(t *testing.T) {
	hub := ws.NewHub()
	p := HubPublisher{Hub: hub}

	require.NoError(t, p.Publish(context.Background(), WithdrawalProcessed, map[string]int{"n": 1}))

	var msg ws.Message
	require.NoError(t, json.Unmarshal(<-hub.Broadcast, &msg))
	assert.Equal(t, WithdrawalProcessed, msg.Type)
}
