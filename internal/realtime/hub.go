package realtime

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// ============================================================================
// 实时推送中心
// ============================================================================
//
// 按主题（topic）广播 JSON 事件：
//   user:<id>    用户私有频道，连接建立时自动加入，推通知 / 私信 / 到账事件
//   stream:<id>  直播间频道，客户端主动 join / leave，转发直播信令
//
// 客户端消息格式: {"event": "join|leave|signal|heartbeat", "topic": "...", "payload": {...}}
// 服务端消息格式: {"event": "...", "topic": "...", "payload": {...}}
// ============================================================================

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBuffer     = 64
)

// Event 推送给客户端的事件
type Event struct {
	Event   string      `json:"event"`
	Topic   string      `json:"topic"`
	Payload interface{} `json:"payload,omitempty"`
}

// inbound 客户端发来的消息
type inbound struct {
	Event   string          `json:"event"`
	Topic   string          `json:"topic"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Client 一条 websocket 连接
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	userID int64
	send   chan []byte

	mu     sync.Mutex
	topics map[string]bool
}

// Hub 维护所有连接和主题订阅关系
type Hub struct {
	mu     sync.RWMutex
	topics map[string]map[*Client]bool
}

func NewHub() *Hub {
	return &Hub{
		topics: make(map[string]map[*Client]bool),
	}
}

// UserTopic 用户私有频道名
func UserTopic(userID int64) string {
	return fmt.Sprintf("user:%d", userID)
}

// StreamTopic 直播间频道名
func StreamTopic(streamID int64) string {
	return fmt.Sprintf("stream:%d", streamID)
}

// Register 注册连接并启动读写循环
func (h *Hub) Register(conn *websocket.Conn, userID int64) {
	client := &Client{
		hub:    h,
		conn:   conn,
		userID: userID,
		send:   make(chan []byte, sendBuffer),
		topics: make(map[string]bool),
	}

	// 连接建立时自动加入私有频道
	h.subscribe(client, UserTopic(userID))

	go client.writePump()
	go client.readPump()
}

// Publish 向主题广播事件，没有订阅者时直接丢弃
func (h *Hub) Publish(topic string, event string, payload interface{}) {
	data, err := json.Marshal(Event{Event: event, Topic: topic, Payload: payload})
	if err != nil {
		log.Printf("实时事件序列化失败: %v", err)
		return
	}

	h.mu.RLock()
	clients := h.topics[topic]
	for client := range clients {
		select {
		case client.send <- data:
		default:
			// 发送缓冲满说明消费太慢，丢弃本条而不是阻塞广播
		}
	}
	h.mu.RUnlock()
}

// PublishToUser 推送到用户私有频道
func (h *Hub) PublishToUser(userID int64, event string, payload interface{}) {
	h.Publish(UserTopic(userID), event, payload)
}

func (h *Hub) subscribe(client *Client, topic string) {
	h.mu.Lock()
	if h.topics[topic] == nil {
		h.topics[topic] = make(map[*Client]bool)
	}
	h.topics[topic][client] = true
	h.mu.Unlock()

	client.mu.Lock()
	client.topics[topic] = true
	client.mu.Unlock()
}

func (h *Hub) unsubscribe(client *Client, topic string) {
	h.mu.Lock()
	if clients, ok := h.topics[topic]; ok {
		delete(clients, client)
		if len(clients) == 0 {
			delete(h.topics, topic)
		}
	}
	h.mu.Unlock()

	client.mu.Lock()
	delete(client.topics, topic)
	client.mu.Unlock()
}

func (h *Hub) drop(client *Client) {
	client.mu.Lock()
	topics := make([]string, 0, len(client.topics))
	for topic := range client.topics {
		topics = append(topics, topic)
	}
	client.mu.Unlock()

	for _, topic := range topics {
		h.unsubscribe(client, topic)
	}
	close(client.send)
}

func (c *Client) readPump() {
	defer func() {
		c.hub.drop(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		var msg inbound
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}

		switch msg.Event {
		case "join":
			if msg.Topic != "" {
				c.hub.subscribe(c, msg.Topic)
			}
		case "leave":
			if msg.Topic != "" {
				c.hub.unsubscribe(c, msg.Topic)
			}
		case "signal":
			// 直播信令直接转发给同主题的其他订阅者
			c.mu.Lock()
			joined := c.topics[msg.Topic]
			c.mu.Unlock()
			if joined {
				c.relaySignal(msg.Topic, msg.Payload)
			}
		case "heartbeat":
			// 应用层心跳，直接回包
			c.reply(Event{Event: "heartbeat", Topic: msg.Topic})
		}
	}
}

// relaySignal 把信令转发给主题内除自己外的所有连接
func (c *Client) relaySignal(topic string, payload json.RawMessage) {
	data, err := json.Marshal(Event{
		Event: "signal",
		Topic: topic,
		Payload: map[string]interface{}{
			"from": c.userID,
			"data": payload,
		},
	})
	if err != nil {
		return
	}

	c.hub.mu.RLock()
	for peer := range c.hub.topics[topic] {
		if peer == c {
			continue
		}
		select {
		case peer.send <- data:
		default:
		}
	}
	c.hub.mu.RUnlock()
}

func (c *Client) reply(event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
