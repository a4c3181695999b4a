package notify

import "sync"

// BroadcastChannel is the channel name Recorder uses for broadcasts.
const BroadcastChannel = "*"

// Published is one event captured by Recorder.
type Published struct {
	Channel string
	Event   string
	Payload any
}

// Recorder is an in-memory Notifier that remembers what was published.
type Recorder struct {
	mu     sync.Mutex
	events []Published
}

func (r *Recorder) Broadcast(event string, payload any) {
	r.record(Published{Channel: BroadcastChannel, Event: event, Payload: payload})
}

func (r *Recorder) Direct(worker, event string, payload any) {
	r.record(Published{Channel: ChannelKey(worker), Event: event, Payload: payload})
}

func (r *Recorder) record(p Published) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, p)
}

// Events returns a copy of everything published so far.
func (r *Recorder) Events() []Published {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Published(nil), r.events...)
}

// On returns the events published on channel.
func (r *Recorder) On(channel string) []Published {
	var out []Published
	for _, p := range r.Events() {
		if p.Channel == channel {
			out = append(out, p)
		}
	}
	return out
}
