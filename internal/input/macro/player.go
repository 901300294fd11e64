package macro

import (
	"errors"
	"fmt"
	"sync"

	"github.com/dshills/modal/internal/input/key"
)

// DefaultMaxDepth bounds macros that play macros.
const DefaultMaxDepth = 100

var (
	// ErrNoLastMacro is returned by @@ before any macro was played.
	ErrNoLastMacro = errors.New("no macro has been played")

	// ErrRecursion is returned when nested playback exceeds the depth limit.
	ErrRecursion = errors.New("macro recursion too deep")
)

// EventHandler processes one replayed key.
type EventHandler func(ev key.Event) error

// Player replays macros. Playback is synchronous and may nest: a replayed
// key can itself start another macro.
type Player struct {
	mu       sync.Mutex
	depth    int
	maxDepth int
	last     rune
}

// NewPlayer creates a player with DefaultMaxDepth.
func NewPlayer() *Player {
	return &Player{maxDepth: DefaultMaxDepth}
}

// Resolve maps '@' to the register played last.
func (p *Player) Resolve(register rune) (rune, error) {
	if register != '@' {
		return register, nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.last == 0 {
		return 0, ErrNoLastMacro
	}
	return p.last, nil
}

// Play sends keys to handler count times (at least once) and remembers
// register for @@. Playback stops at the first handler error.
func (p *Player) Play(register rune, keys key.Sequence, count int, handler EventHandler) error {
	if handler == nil {
		return errors.New("handler cannot be nil")
	}
	if count < 1 {
		count = 1
	}

	p.mu.Lock()
	if p.depth >= p.maxDepth {
		p.mu.Unlock()
		return ErrRecursion
	}
	p.depth++
	p.last = register
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		p.depth--
		p.mu.Unlock()
	}()

	for i := 0; i < count; i++ {
		for _, ev := range keys {
			if err := handler(ev); err != nil {
				return fmt.Errorf("macro @%c: %w", register, err)
			}
		}
	}
	return nil
}

// IsPlaying returns true while a macro is being played.
func (p *Player) IsPlaying() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.depth > 0
}
