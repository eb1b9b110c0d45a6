package websocket

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"musicren/types"
)

// AllJobs is the subscription key for clients that want updates from every job.
const AllJobs = "all"

// Hub fans job progress out to subscribed WebSocket clients.
type Hub interface {
	Run()
	Subscribe(w http.ResponseWriter, r *http.Request, jobID string) error
	BroadcastProgress(jobID, msgType, status, currentFile, stage, message string, progress float64)
}

type hub struct {
	// subscribers maps a job ID (or AllJobs) to its connected clients.
	subscribers map[string]map[*client]struct{}

	events   chan types.ProgressMessage
	attach   chan *client
	detach   chan *client
	upgrader websocket.Upgrader

	mu sync.RWMutex
}

// NewHub creates a hub. Run must be called before subscribing clients.
func NewHub() Hub {
	return &hub{
		subscribers: make(map[string]map[*client]struct{}),
		events:      make(chan types.ProgressMessage),
		attach:      make(chan *client),
		detach:      make(chan *client),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Origins are enforced by the CORS middleware in front of the route.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Run owns the subscriber map. It loops until the process exits.
func (h *hub) Run() {
	for {
		select {
		case c := <-h.attach:
			h.mu.Lock()
			set, ok := h.subscribers[c.jobID]
			if !ok {
				set = make(map[*client]struct{})
				h.subscribers[c.jobID] = set
			}
			set[c] = struct{}{}
			h.mu.Unlock()
			log.Printf("WebSocket client subscribed to %s", c.jobID)

		case c := <-h.detach:
			h.mu.Lock()
			h.drop(c)
			h.mu.Unlock()
			log.Printf("WebSocket client left %s", c.jobID)

		case msg := <-h.events:
			h.mu.Lock()
			h.deliver(msg.JobID, msg)
			if msg.JobID != AllJobs {
				h.deliver(AllJobs, msg)
			}
			h.mu.Unlock()
		}
	}
}

// drop removes a client and closes its outbox. Caller holds mu.
func (h *hub) drop(c *client) {
	set, ok := h.subscribers[c.jobID]
	if !ok {
		return
	}
	if _, ok := set[c]; !ok {
		return
	}
	delete(set, c)
	close(c.outbox)
	if len(set) == 0 {
		delete(h.subscribers, c.jobID)
	}
}

// deliver sends msg to every subscriber of key, dropping clients whose
// outbox is full. Caller holds mu.
func (h *hub) deliver(key string, msg types.ProgressMessage) {
	for c := range h.subscribers[key] {
		select {
		case c.outbox <- msg:
		default:
			h.drop(c)
		}
	}
}

// Subscribe upgrades the request to a WebSocket connection and attaches it
// to the given job ID (use AllJobs for the firehose).
func (h *hub) Subscribe(w http.ResponseWriter, r *http.Request, jobID string) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	c := &client{
		hub:    h,
		conn:   conn,
		outbox: make(chan types.ProgressMessage, 256),
		jobID:  jobID,
	}
	h.attach <- c
	go c.writeLoop()
	go c.readLoop()
	return nil
}

// BroadcastProgress publishes a progress event. It never blocks: if the hub
// loop is saturated the message is dropped with a warning.
func (h *hub) BroadcastProgress(jobID, msgType, status, currentFile, stage, message string, progress float64) {
	msg := types.ProgressMessage{
		JobID:       jobID,
		Type:        msgType,
		Progress:    progress,
		Status:      status,
		CurrentFile: currentFile,
		Stage:       stage,
		Message:     message,
		Timestamp:   time.Now(),
	}

	select {
	case h.events <- msg:
	default:
		log.Printf("Warning: dropping progress event for job %s, hub is saturated", jobID)
	}
}
