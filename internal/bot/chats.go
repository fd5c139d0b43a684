package bot

import (
	"slices"
	"sync"

	"amsvault/internal/library"
	"amsvault/internal/session"
	"amsvault/internal/store"
)

// chat is the state kept for one Telegram chat: its own session and the last
// search results, which /fav indexes into.
type chat struct {
	mu      sync.Mutex
	svc     *library.Service
	query   string
	results *library.Results
}

// Chats holds one chat state per Telegram chat id. State lives in memory only.
type Chats struct {
	store    store.Store
	searcher library.Searcher
	opts     []library.Option

	mu     sync.Mutex
	byChat map[int64]*chat
}

func NewChats(st store.Store, searcher library.Searcher, opts ...library.Option) *Chats {
	return &Chats{
		store:    st,
		searcher: searcher,
		opts:     opts,
		byChat:   make(map[int64]*chat),
	}
}

func (c *Chats) get(chatID int64) *chat {
	c.mu.Lock()
	defer c.mu.Unlock()
	ch, ok := c.byChat[chatID]
	if !ok {
		ch = &chat{svc: library.New(c.store, c.searcher, session.New(c.store), c.opts...)}
		c.byChat[chatID] = ch
	}
	return ch
}

// ChatIDsForUser returns the chats signed in as userID, in ascending order.
func (c *Chats) ChatIDsForUser(userID int64) []int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	var ids []int64
	for id, ch := range c.byChat {
		if u := ch.svc.Session().CurrentUser(); u != nil && u.ID == userID {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids
}
