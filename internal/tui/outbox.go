package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// outbox forwards messages to the program in order without making the
// caller wait for the event loop.
type outbox struct {
	mu      sync.Mutex
	queue   []tea.Msg
	send    func(tea.Msg)
	running bool

	wake   chan struct{}
	stopCh chan struct{}
	doneCh chan struct{}
}

func newOutbox() *outbox {
	return &outbox{wake: make(chan struct{}, 1)}
}

// start begins delivering queued and future messages with send.
func (o *outbox) start(send func(tea.Msg)) bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.running {
		return false
	}
	o.running = true
	o.send = send
	o.stopCh = make(chan struct{})
	o.doneCh = make(chan struct{})

	go o.run(o.stopCh, o.doneCh)
	o.signal()
	return true
}

func (o *outbox) stop() {
	o.mu.Lock()
	if !o.running {
		o.mu.Unlock()
		return
	}
	o.running = false
	close(o.stopCh)
	doneCh := o.doneCh
	o.mu.Unlock()

	<-doneCh
}

func (o *outbox) push(msg tea.Msg) {
	o.mu.Lock()
	o.queue = append(o.queue, msg)
	o.mu.Unlock()
	o.signal()
}

func (o *outbox) isRunning() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.running
}

func (o *outbox) signal() {
	select {
	case o.wake <- struct{}{}:
	default:
	}
}

func (o *outbox) run(stopCh, doneCh chan struct{}) {
	defer close(doneCh)

	for {
		select {
		case <-stopCh:
			return
		case <-o.wake:
		}

		for {
			o.mu.Lock()
			if len(o.queue) == 0 {
				o.mu.Unlock()
				break
			}
			msg := o.queue[0]
			o.queue = o.queue[1:]
			send := o.send
			o.mu.Unlock()

			send(msg)

			select {
			case <-stopCh:
				return
			default:
			}
		}
	}
}
