package relay

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/drawnet/drawboard/internal/types"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingInterval   = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
)

// Client is one websocket connection. A user may hold several concurrent
// connections; each gets its own Client with its own joined-room set.
type Client struct {
	id        string
	conn      *websocket.Conn
	relay     *RelayServer
	log       *log.Logger
	user      types.User
	send      chan *ServerFrame
	rooms     map[string]*Room
	roomsLock sync.RWMutex
	stop      chan struct{}
	stopOnce  sync.Once
}

func NewClient(user types.User, conn *websocket.Conn, rs *RelayServer, l *log.Logger) *Client {
	return &Client{
		id:    uuid.NewString(),
		conn:  conn,
		relay: rs,
		log:   l,
		user:  user,
		send:  make(chan *ServerFrame, 256),
		rooms: make(map[string]*Room),
		stop:  make(chan struct{}),
	}
}

func (c *Client) Write() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			if !ok {
				return
			}

			bytes, err := json.Marshal(frame)
			if err != nil {
				c.log.Printf("conn %s: marshal frame: %v", c.id, err)
				continue
			}

			if !c.writeMessage(websocket.TextMessage, bytes) {
				return
			}
		case <-c.stop:
			return
		case <-ticker.C:
			if !c.writeMessage(websocket.PingMessage, nil) {
				return
			}
		}
	}
}

func (c *Client) Read() {
	defer func() {
		c.conn.Close()
		c.cleanup()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(appData string) error { c.conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })
	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				c.log.Printf("conn %s: read: %v", c.id, err)
			}
			break
		}

		var frame ClientFrame
		if err := json.Unmarshal(raw, &frame); err != nil {
			// malformed frames are dropped, the connection stays open
			c.log.Printf("conn %s: parse frame: %v", c.id, err)
			continue
		}

		if err := frame.validate(); err != nil {
			c.log.Printf("conn %s: invalid frame: %v", c.id, err)
			continue
		}

		frame.client = c
		c.relay.dispatch(&frame)
	}
}

// queueFrame hands the frame to the write pump without blocking. Frames for
// a connection that cannot keep up are dropped.
func (c *Client) queueFrame(frame *ServerFrame) bool {
	select {
	case c.send <- frame:
	default:
		c.log.Printf("conn %s: send buffer full, dropping frame", c.id)
		return false
	}

	return true
}

func (c *Client) writeMessage(msgType int, msg []byte) bool {
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))

	if err := c.conn.WriteMessage(msgType, msg); err != nil {
		if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure,
			websocket.CloseNormalClosure) {
			c.log.Printf("conn %s: write: %v", c.id, err)
		}
		return false
	}

	return true
}

func (c *Client) stopClient() {
	c.stopOnce.Do(func() { close(c.stop) })
}

func (c *Client) cleanup() {
	c.relay.deregister(c)
	c.leaveAllRooms()
	c.stopClient()
}

// leaveAllRooms queues a leave for every room the connection joined, so a
// dropped connection stops receiving broadcasts immediately.
func (c *Client) leaveAllRooms() {
	c.roomsLock.RLock()
	defer c.roomsLock.RUnlock()

	for _, room := range c.rooms {
		select {
		case room.frames <- &ClientFrame{
			Type:   TypeLeaveRoom,
			RoomId: room.key,
			client: c,
		}:
		default:
			c.log.Printf("conn %s: frames channel full on room %q", c.id, room.key)
		}
	}
}

func (c *Client) addRoom(r *Room) {
	c.roomsLock.Lock()
	defer c.roomsLock.Unlock()

	c.rooms[r.key] = r
}

func (c *Client) delRoom(key string) {
	c.roomsLock.Lock()
	defer c.roomsLock.Unlock()

	delete(c.rooms, key)
}

func (c *Client) getRoom(key string) *Room {
	c.roomsLock.RLock()
	defer c.roomsLock.RUnlock()

	if room, ok := c.rooms[key]; ok {
		return room
	}

	return nil
}

func (c *Client) joinedRooms() []string {
	c.roomsLock.RLock()
	defer c.roomsLock.RUnlock()

	keys := make([]string, 0, len(c.rooms))
	for key := range c.rooms {
		keys = append(keys, key)
	}

	return keys
}
