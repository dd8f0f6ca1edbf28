package discord

import (
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
)

// Collector routes component clicks and modal submissions to the edit
// session that rendered them.
type Collector struct {
	mu     sync.Mutex
	routes map[string]chan *discordgo.Interaction
}

func NewCollector() *Collector {
	return &Collector{routes: make(map[string]chan *discordgo.Interaction)}
}

// Register reserves a session id. cancel must be called once the session
// no longer reads from events.
func (c *Collector) Register() (id string, events <-chan *discordgo.Interaction, cancel func()) {
	id = uuid.NewString()
	ch := make(chan *discordgo.Interaction, 8)

	c.mu.Lock()
	c.routes[id] = ch
	c.mu.Unlock()

	var once sync.Once
	return id, ch, func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.routes, id)
			c.mu.Unlock()
		})
	}
}

// Dispatch hands i to its session. It reports false when no live session
// owns the custom id or the session is not keeping up.
func (c *Collector) Dispatch(i *discordgo.Interaction) bool {
	id, ok := parseCustomID(interactionCustomID(i))
	if !ok {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	ch, ok := c.routes[id.Session]
	if !ok {
		return false
	}
	select {
	case ch <- i:
		return true
	default:
		return false
	}
}

func (c *Collector) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.routes)
}
