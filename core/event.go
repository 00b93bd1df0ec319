package core

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	EventMessage = "message"
	EventAction  = "action"
	EventState   = "state"
)

type Event struct {
	Id        string
	Timestamp time.Time
	Source    string // input that produced the event
	Type      string
	Sender    string
	Channel   string
	Public    bool
	Message   string
	Addressed bool // the bot was spoken to, not just overheard
	Processed bool // some processor already responded
	NotAuthed bool // set when an authorised handler was refused
	Responses []Response
	ctx       context.Context
}

type Response struct {
	Reply  string
	Target string
	Source string
}

func NewEvent(source, kind string) *Event {
	return &Event{
		Id:        uuid.New().String(),
		Timestamp: time.Now(),
		Source:    source,
		Type:      kind,
		Responses: make([]Response, 0, 1),
		ctx:       context.Background(),
	}
}

// AddResponse queues a reply to the event channel and marks the event as processed.
func (e *Event) AddResponse(reply string) {
	e.Responses = append(e.Responses, Response{
		Reply:  reply,
		Target: e.Channel,
		Source: e.Source,
	})
	e.Processed = true
}

func (e *Event) AddResponsef(format string, args ...any) {
	e.AddResponse(fmt.Sprintf(format, args...))
}

func (e *Event) Replies() []string {
	replies := make([]string, 0, len(e.Responses))
	for _, r := range e.Responses {
		replies = append(replies, r.Reply)
	}
	return replies
}

// Clone makes a derived event with a new id,
// handlers may return it to replace the event for the rest of a pass.
func (e *Event) Clone() *Event {
	event := *e
	event.Id = uuid.New().String()
	event.Responses = make([]Response, len(e.Responses))
	copy(event.Responses, e.Responses)
	return &event
}

func (e *Event) Context() context.Context {
	if e.ctx == nil {
		return context.Background()
	}
	return e.ctx
}

func (e *Event) ReplaceContext(ctx context.Context) {
	e.ctx = ctx
}
