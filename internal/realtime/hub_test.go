package realtime

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTopicNames(t *testing.T) {
	assert.Equal(t, "user:42", UserTopic(42))
	assert.Equal(t, "stream:7", StreamTopic(7))
}

func TestPublishWithoutSubscribers(t *testing.T) {
	hub := NewHub()
	// 没有任何订阅者时广播应该直接丢弃，不能阻塞或崩溃
	hub.Publish("user:1", "notification", map[string]string{"k": "v"})
	hub.PublishToUser(1, "message", nil)
}

func TestSubscribeAndPublish(t *testing.T) {
	hub := NewHub()
	client := &Client{
		hub:    hub,
		userID: 42,
		send:   make(chan []byte, 8),
		topics: make(map[string]bool),
	}

	hub.subscribe(client, "stream:7")
	hub.Publish("stream:7", "stream_ended", map[string]interface{}{"stream_id": 7})

	select {
	case data := <-client.send:
		var event Event
		require.NoError(t, json.Unmarshal(data, &event))
		assert.Equal(t, "stream_ended", event.Event)
		assert.Equal(t, "stream:7", event.Topic)
	default:
		t.Fatal("订阅者没有收到广播")
	}

	// 退订后不再收到
	hub.unsubscribe(client, "stream:7")
	hub.Publish("stream:7", "stream_ended", nil)
	assert.Empty(t, client.send)
}
