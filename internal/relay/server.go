package relay

import (
	"context"
	"log"
	"sync"

	"github.com/drawnet/drawboard/internal/database"
	"github.com/drawnet/drawboard/internal/stats"
)

const (
	statNumActiveClients = "NumActiveClients"
	statNumActiveRooms   = "NumActiveRooms"
	statEventsDispatched = "EventsDispatched"
)

// RelayServer owns the room table. Frames from every connection funnel
// through its run loop, which routes them to per-room goroutines. Rooms are
// created on first reference and unloaded when idle.
type RelayServer struct {
	log            *log.Logger
	db             database.Repository
	stats          stats.StatsProvider
	registry       *Registry
	rooms          map[string]*Room
	frames         chan *ClientFrame
	registerChan   chan *Client
	deregisterChan chan *Client
	unloadChan     chan string
	rmRoomChan     chan rmRoomReq
	stop           chan struct{}
	stopOnce       sync.Once
	done           chan struct{}
}

type rmRoomReq struct {
	roomKey string
	done    chan struct{}
}

func NewRelayServer(logger *log.Logger, db database.Repository, sp stats.StatsProvider) (*RelayServer, error) {
	rs := &RelayServer{
		log:            logger,
		db:             db,
		stats:          sp,
		registry:       NewRegistry(),
		rooms:          make(map[string]*Room),
		frames:         make(chan *ClientFrame, 512),
		registerChan:   make(chan *Client),
		deregisterChan: make(chan *Client),
		unloadChan:     make(chan string),
		rmRoomChan:     make(chan rmRoomReq),
		stop:           make(chan struct{}),
		done:           make(chan struct{}),
	}

	rs.stats.RegisterMetric(statNumActiveClients)
	rs.stats.RegisterMetric(statNumActiveRooms)
	rs.stats.RegisterMetric(statEventsDispatched)

	return rs, nil
}

func (rs *RelayServer) Run() {
	for {
		select {
		case frame := <-rs.frames:
			rs.routeFrame(frame)
		case client := <-rs.registerChan:
			rs.log.Printf("adding connection %s for %q", client.id, client.user.DisplayName())
			rs.registry.Add(client)
			rs.stats.Incr(statNumActiveClients)
		case client := <-rs.deregisterChan:
			rs.log.Printf("removing connection %s", client.id)
			if rs.registry.Remove(client) {
				rs.stats.Decr(statNumActiveClients)
			}
		case key := <-rs.unloadChan:
			if room, ok := rs.rooms[key]; ok && room.numMembers() == 0 {
				rs.unloadRoom(room)
			}
		case req := <-rs.rmRoomChan:
			if room, ok := rs.rooms[req.roomKey]; ok {
				rs.unloadRoom(room)
			}
			close(req.done)
		case <-rs.stop:
			rs.log.Println("shutting down rooms")
			for _, room := range rs.rooms {
				rs.unloadRoom(room)
			}
			for _, client := range rs.registry.Drain() {
				client.stopClient()
			}

			close(rs.done)
			return
		}
	}
}

// routeFrame hands the frame to its room's goroutine. Any frame except a
// leave loads the room if it is not resident; leaving a room that is not
// loaded is a no-op.
func (rs *RelayServer) routeFrame(frame *ClientFrame) {
	key := frame.roomKey()

	room, ok := rs.rooms[key]
	if !ok {
		if frame.Type == TypeLeaveRoom {
			return
		}
		room = rs.loadRoom(key)
	}

	select {
	case room.frames <- frame:
	default:
		rs.log.Printf("frames channel full on room %q, dropping %s frame", key, frame.Type)
	}
}

func (rs *RelayServer) loadRoom(key string) *Room {
	room := &Room{
		key:     key,
		rs:      rs,
		db:      rs.db,
		stats:   rs.stats,
		frames:  make(chan *ClientFrame, 256),
		members: make(map[*Client]struct{}),
		log:     rs.log,
		exit:    make(chan exitReq, 1),
	}

	rs.rooms[key] = room
	rs.stats.Incr(statNumActiveRooms)
	go room.start()

	return room
}

func (rs *RelayServer) unloadRoom(room *Room) {
	rs.log.Printf("unloading room %q", room.key)
	delete(rs.rooms, room.key)
	rs.stats.Decr(statNumActiveRooms)

	done := make(chan struct{})
	room.exit <- exitReq{done: done}
	<-done
}

// RegisterClient makes the connection known to the relay. The caller starts
// the read and write pumps.
func (rs *RelayServer) RegisterClient(c *Client) {
	select {
	case rs.registerChan <- c:
	case <-rs.done:
	}
}

func (rs *RelayServer) deregister(c *Client) {
	select {
	case rs.deregisterChan <- c:
	case <-rs.done:
	}
}

// dispatch forwards a validated frame from a read pump to the run loop.
// The send blocks when the loop is saturated, applying backpressure to the
// connection that is producing frames.
func (rs *RelayServer) dispatch(frame *ClientFrame) {
	select {
	case rs.frames <- frame:
	case <-rs.done:
	}
}

// RemoveRoom evicts a room from the relay, detaching its members. Called
// when the backing room record is deleted.
func (rs *RelayServer) RemoveRoom(ctx context.Context, roomKey string) error {
	req := rmRoomReq{roomKey: roomKey, done: make(chan struct{})}

	select {
	case rs.rmRoomChan <- req:
	case <-rs.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-req.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown stops the run loop, unloads every room and stops all connections.
func (rs *RelayServer) Shutdown(ctx context.Context) error {
	rs.stopOnce.Do(func() { close(rs.stop) })

	select {
	case <-rs.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
