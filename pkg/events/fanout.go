package events

import (
	"github.com/Veraticus/stretchia/pkg/interfaces"
	"github.com/Veraticus/stretchia/pkg/types"
)

// Fanout publishes each payload to every sink in order.
type Fanout []interfaces.EventSink

// Publish implements interfaces.EventSink.
func (f Fanout) Publish(p types.TickPayload) {
	for _, s := range f {
		if s != nil {
			s.Publish(p)
		}
	}
}
