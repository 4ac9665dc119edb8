// Package realtime relays selection and upload events between clients
// viewing the same workspace. One hub goroutine owns the room maps;
// everything reaches it through channels.
package realtime

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"
)

// Event names on the wire.
const (
	EventSelectPhoto      = "selectPhoto"
	EventUploadPhoto      = "uploadPhoto"
	EventPhotoSelected    = "photoSelected"
	EventPhotoUploaded    = "photoUploaded"
	EventUserConnected    = "userConnected"
	EventUserDisconnected = "userDisconnected"
)

type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type SelectPhotoPayload struct {
	PhotoID string `json:"photoId"`
}

type PhotoSelectedPayload struct {
	PhotoID  string `json:"photoId"`
	Selected bool   `json:"selected"`
	UserID   string `json:"userId"`
	UserName string `json:"userName"`
	Color    string `json:"color"`
}

type UploadPhotoPayload struct {
	Message string `json:"message"`
}

type PhotoUploadedPayload struct {
	Message  string `json:"message"`
	UserID   string `json:"userId"`
	UserName string `json:"userName"`
}

type PresencePayload struct {
	UserID   string `json:"userId"`
	UserName string `json:"userName"`
	Color    string `json:"color"`
}

// SelectionToggler flips the persisted selection row and reports the
// resulting state.
type SelectionToggler interface {
	Toggle(ctx context.Context, photoID, userID string) (bool, error)
}

type broadcastMsg struct {
	workspaceID string
	envelope    Envelope
	exclude     *Client
}

// Hub fans events out to every client subscribed to a workspace room.
// Delivery order follows the transport; there is no replay for missed
// events, clients re-fetch full state on reconnect.
type Hub struct {
	rooms      map[string]map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	broadcast  chan broadcastMsg
	done       chan struct{}

	selections SelectionToggler
	log        zerolog.Logger
}

func NewHub(selections SelectionToggler, log zerolog.Logger) *Hub {
	return &Hub{
		rooms:      make(map[string]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan broadcastMsg, 64),
		done:       make(chan struct{}),
		selections: selections,
		log:        log,
	}
}

// Run owns the room maps until ctx is cancelled. All remaining clients
// are closed on the way out.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			for _, room := range h.rooms {
				for client := range room {
					close(client.send)
				}
			}
			h.rooms = make(map[string]map[*Client]struct{})
			return

		case client := <-h.register:
			room, ok := h.rooms[client.WorkspaceID]
			if !ok {
				room = make(map[*Client]struct{})
				h.rooms[client.WorkspaceID] = room
			}
			room[client] = struct{}{}
			h.send(client.WorkspaceID, NewEnvelope(EventUserConnected, PresencePayload{
				UserID:   client.UserID,
				UserName: client.UserName,
				Color:    client.Color,
			}), client)
			h.log.Debug().
				Str("user_id", client.UserID).
				Str("workspace_id", client.WorkspaceID).
				Msg("client joined room")

		case client := <-h.unregister:
			room, ok := h.rooms[client.WorkspaceID]
			if !ok {
				continue
			}
			if _, ok := room[client]; !ok {
				continue
			}
			delete(room, client)
			close(client.send)
			if len(room) == 0 {
				delete(h.rooms, client.WorkspaceID)
			}
			h.send(client.WorkspaceID, NewEnvelope(EventUserDisconnected, PresencePayload{
				UserID:   client.UserID,
				UserName: client.UserName,
				Color:    client.Color,
			}), client)

		case msg := <-h.broadcast:
			h.send(msg.workspaceID, msg.envelope, msg.exclude)
		}
	}
}

// send delivers to everyone in the room except exclude. A client whose
// buffer is full is dropped rather than throttling the room.
func (h *Hub) send(workspaceID string, env Envelope, exclude *Client) {
	room := h.rooms[workspaceID]
	for client := range room {
		if client == exclude {
			continue
		}
		select {
		case client.send <- env:
		default:
			delete(room, client)
			close(client.send)
			h.log.Warn().
				Str("user_id", client.UserID).
				Str("workspace_id", workspaceID).
				Msg("dropping slow client")
		}
	}
	if len(room) == 0 {
		delete(h.rooms, workspaceID)
	}
}

// Join and Leave hand the client to the hub goroutine. After the hub
// has shut down they return immediately so read pumps finishing late
// do not hang.
func (h *Hub) Join(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
	}
}

func (h *Hub) Leave(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Broadcast queues an event for every room member except exclude (nil
// to reach everyone, e.g. uploads made through the REST endpoint).
func (h *Hub) Broadcast(workspaceID string, env Envelope, exclude *Client) {
	select {
	case h.broadcast <- broadcastMsg{workspaceID: workspaceID, envelope: env, exclude: exclude}:
	case <-h.done:
	}
}

// HandleEvent processes one inbound frame from a client. Runs on the
// client's read goroutine so a database round-trip never stalls the
// hub loop.
func (h *Hub) HandleEvent(ctx context.Context, client *Client, raw []byte) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		h.log.Warn().Err(err).Str("user_id", client.UserID).Msg("malformed realtime frame")
		return
	}

	switch env.Event {
	case EventSelectPhoto:
		var payload SelectPhotoPayload
		if err := json.Unmarshal(env.Data, &payload); err != nil || payload.PhotoID == "" {
			h.log.Warn().Str("user_id", client.UserID).Msg("malformed selectPhoto payload")
			return
		}

		toggleCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		selected, err := h.selections.Toggle(toggleCtx, payload.PhotoID, client.UserID)
		cancel()
		if err != nil {
			h.log.Error().Err(err).
				Str("photo_id", payload.PhotoID).
				Str("user_id", client.UserID).
				Msg("selection toggle failed")
			return
		}

		h.Broadcast(client.WorkspaceID, NewEnvelope(EventPhotoSelected, PhotoSelectedPayload{
			PhotoID:  payload.PhotoID,
			Selected: selected,
			UserID:   client.UserID,
			UserName: client.UserName,
			Color:    client.Color,
		}), client)

	case EventUploadPhoto:
		var payload UploadPhotoPayload
		if err := json.Unmarshal(env.Data, &payload); err != nil {
			payload.Message = ""
		}
		h.Broadcast(client.WorkspaceID, NewEnvelope(EventPhotoUploaded, PhotoUploadedPayload{
			Message:  payload.Message,
			UserID:   client.UserID,
			UserName: client.UserName,
		}), client)

	default:
		h.log.Debug().Str("event", env.Event).Msg("ignoring unknown event")
	}
}

// NewEnvelope wraps a payload for the wire. Marshal errors cannot
// happen for the fixed payload types above.
func NewEnvelope(event string, payload any) Envelope {
	data, _ := json.Marshal(payload)
	return Envelope{Event: event, Data: data}
}
