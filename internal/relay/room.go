package relay

import (
	"database/sql"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/drawnet/drawboard/internal/board"
	"github.com/drawnet/drawboard/internal/database"
	"github.com/drawnet/drawboard/internal/stats"
)

const idleRoomTimeout = time.Minute

type exitReq struct {
	done chan struct{}
}

// Room is the broadcast domain for one room id. All frames addressed to the
// room are handled by a single goroutine, so every member observes events in
// the same order.
type Room struct {
	key string
	// dbId is the backing room record, resolved on first use. Rooms with no
	// record operate relay-only: broadcasts flow, persistence is skipped.
	dbId        int
	resolved    bool
	rs          *RelayServer
	db          database.Repository
	stats       stats.StatsProvider
	frames      chan *ClientFrame
	members     map[*Client]struct{}
	membersLock sync.RWMutex
	log         *log.Logger
	// killTimer unloads the room after it sits empty for idleRoomTimeout
	killTimer *time.Timer
	exit      chan exitReq
}

func (r *Room) start() {
	r.log.Printf("starting room %q", r.key)
	r.killTimer = time.NewTimer(idleRoomTimeout)

	for {
		select {
		case frame := <-r.frames:
			r.handleFrame(frame)
		case <-r.killTimer.C:
			r.handleRoomTimeout()
		case e := <-r.exit:
			r.handleRoomExit(e)
			return
		}
	}
}

func (r *Room) handleFrame(frame *ClientFrame) {
	switch frame.Type {
	case TypeJoinRoom:
		r.handleJoin(frame.client)
	case TypeLeaveRoom:
		r.handleLeave(frame.client)
	case TypeChat:
		r.handleChat(frame)
	case TypeUpdateShape:
		r.handleUpdateShape(frame)
	case TypeDeleteShape:
		r.handleDeleteShape(frame)
	}
}

func (r *Room) handleRoomTimeout() {
	select {
	case r.rs.unloadChan <- r.key:
	default:
		// the relay loop is busy, try again on the next tick
		r.killTimer.Reset(idleRoomTimeout)
	}
}

func (r *Room) handleRoomExit(e exitReq) {
	r.log.Printf("room %q is exiting", r.key)
	r.killTimer.Stop()

	r.membersLock.Lock()
	for c := range r.members {
		c.delRoom(r.key)
		delete(r.members, c)
	}
	r.membersLock.Unlock()

	if e.done != nil {
		close(e.done)
	}
}

// handleJoin adds the connection to the broadcast set. Joining twice is a
// no-op; the room id is not checked against the database, a room exists on
// the relay the moment someone addresses it.
func (r *Room) handleJoin(c *Client) {
	r.killTimer.Stop()

	r.membersLock.Lock()
	defer r.membersLock.Unlock()

	if _, ok := r.members[c]; ok {
		return
	}

	r.members[c] = struct{}{}
	c.addRoom(r)
	r.log.Printf("conn %s joined room %q", c.id, r.key)
}

func (r *Room) handleLeave(c *Client) {
	r.membersLock.Lock()
	defer r.membersLock.Unlock()

	if _, ok := r.members[c]; !ok {
		return
	}

	delete(r.members, c)
	c.delRoom(r.key)
	r.log.Printf("conn %s left room %q", c.id, r.key)

	if len(r.members) == 0 {
		r.killTimer.Reset(idleRoomTimeout)
	}
}

// handleChat persists the message and fans it out to the room's members.
// A failed write suppresses the broadcast so no client sees an event that
// will be missing from history.
func (r *Room) handleChat(frame *ClientFrame) {
	ts := Now()

	dbId, err := r.backingRoomId()
	if err != nil {
		r.log.Printf("room %q: resolve backing room: %v", r.key, err)
		return
	}

	if dbId != 0 {
		if _, err := r.db.CreateChat(database.Chat{
			RoomId:    dbId,
			UserId:    frame.client.user.Id,
			ShapeId:   board.ExtractShapeId(frame.Message),
			Message:   frame.Message,
			CreatedAt: ts,
		}); err != nil {
			r.log.Printf("room %q: save chat: %v", r.key, err)
			return
		}
	}

	author := Author{
		Id:   frame.client.user.Id,
		Name: frame.client.user.DisplayName(),
	}
	r.broadcast(ChatEvent(r.key, frame.Message, author, ts))
}

func (r *Room) handleUpdateShape(frame *ClientFrame) {
	p := frame.Payload

	dbId, err := r.backingRoomId()
	if err != nil {
		r.log.Printf("room %q: resolve backing room: %v", r.key, err)
		return
	}

	if dbId != 0 {
		if _, err := r.db.UpdateShapeChats(dbId, p.Id, p.Message); err != nil {
			r.log.Printf("room %q: update shape %q: %v", r.key, p.Id, err)
			return
		}
	}

	r.broadcast(UpdateShapeEvent(r.key, p.Id, p.Message))
}

func (r *Room) handleDeleteShape(frame *ClientFrame) {
	p := frame.Payload

	dbId, err := r.backingRoomId()
	if err != nil {
		r.log.Printf("room %q: resolve backing room: %v", r.key, err)
		return
	}

	if dbId != 0 {
		if _, err := r.db.DeleteShapeChats(dbId, p.Id); err != nil {
			r.log.Printf("room %q: delete shape %q: %v", r.key, p.Id, err)
			return
		}
	}

	r.broadcast(DeleteShapeEvent(r.key, p.Id))
}

// backingRoomId resolves the database record for the room key once and
// caches the result. A missing record is cached as zero; a transient lookup
// failure is returned so the caller can decide.
func (r *Room) backingRoomId() (int, error) {
	if r.resolved {
		return r.dbId, nil
	}

	dbRoom, err := r.db.GetRoomByExternalId(r.key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.Printf("room %q has no backing record, persistence disabled", r.key)
			r.resolved = true
			return 0, nil
		}
		return 0, err
	}

	r.dbId = dbRoom.Id
	r.resolved = true

	return r.dbId, nil
}

func (r *Room) broadcast(frame *ServerFrame) {
	r.membersLock.RLock()
	defer r.membersLock.RUnlock()

	for client := range r.members {
		client.queueFrame(frame)
	}

	r.stats.Incr(statEventsDispatched)
}

func (r *Room) numMembers() int {
	r.membersLock.RLock()
	defer r.membersLock.RUnlock()
	return len(r.members)
}
