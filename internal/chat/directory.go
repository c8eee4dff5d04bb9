package chat

import (
	"sort"
	"sync"
)

// Directory remembers which users have been seen in which guild.
type Directory struct {
	mu     sync.RWMutex
	guilds map[string]map[string]struct{}
}

func NewDirectory() *Directory {
	return &Directory{guilds: make(map[string]map[string]struct{})}
}

// Join records userID as a member of guildID. Empty guild IDs are direct messages and ignored.
func (d *Directory) Join(guildID, userID string) {
	if guildID == "" || userID == "" {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	members, ok := d.guilds[guildID]
	if !ok {
		members = make(map[string]struct{})
		d.guilds[guildID] = members
	}
	members[userID] = struct{}{}
}

// Members returns the member IDs of guildID, sorted, and whether the guild is known.
func (d *Directory) Members(guildID string) ([]string, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	members, ok := d.guilds[guildID]
	if !ok {
		return nil, false
	}
	ids := make([]string, 0, len(members))
	for id := range members {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, true
}
