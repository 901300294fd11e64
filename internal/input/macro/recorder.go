package macro

import (
	"fmt"
	"sync"

	"github.com/dshills/modal/internal/input/key"
)

// Recorder collects the keys of one macro recording at a time.
type Recorder struct {
	mu        sync.Mutex
	recording bool
	register  rune
	events    key.Sequence
}

// NewRecorder creates an idle recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Start begins recording for register.
// Returns an error if already recording or if the register is invalid.
func (r *Recorder) Start(register rune) error {
	if !IsValidRegister(register) {
		return fmt.Errorf("invalid register: %c", register)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.recording {
		return fmt.Errorf("already recording to register %c", r.register)
	}
	r.recording = true
	r.register = register
	r.events = nil
	return nil
}

// Stop ends the recording and returns its register and keys. It returns
// 0 and nil when not recording.
func (r *Recorder) Stop() (rune, key.Sequence) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.recording {
		return 0, nil
	}
	r.recording = false
	events := r.events
	r.events = nil
	return r.register, events
}

// Recording returns the register being recorded to, if any.
func (r *Recorder) Recording() (rune, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.register, r.recording
}

// Record adds a key to the current recording.
// Does nothing if not recording.
func (r *Recorder) Record(ev key.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.recording {
		r.events = append(r.events, ev)
	}
}

// Drop removes the last n recorded keys, such as the q that stopped the
// recording.
func (r *Recorder) Drop(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if n > len(r.events) {
		n = len(r.events)
	}
	r.events = r.events[:len(r.events)-n]
}
