package events

import "time"

type Event struct {
	Type     string    `json:"type"`
	Actor    string    `json:"actor,omitempty"`
	Subject  string    `json:"subject"`
	Occurred time.Time `json:"occurred_at"`
	Data     any       `json:"data,omitempty"`
}

func NewEvent(typ, actor, subject string, data any) Event {
	return Event{
		Type:     typ,
		Actor:    actor,
		Subject:  subject,
		Occurred: time.Now().UTC(),
		Data:     data,
	}
}
