package service

import "sync"

// busyStore remembers which chats have a universe scan running, so one chat
// cannot queue several full scans at once.
type busyStore struct {
	mu sync.Mutex
	m  map[int64]string // chatID -> command
}

func newBusyStore() *busyStore {
	return &busyStore{m: make(map[int64]string)}
}

// acquire marks chatID busy with cmd; it returns the running command and false when already busy.
func (b *busyStore) acquire(chatID int64, cmd string) (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if running, ok := b.m[chatID]; ok {
		return running, false
	}
	b.m[chatID] = cmd
	return "", true
}

func (b *busyStore) release(chatID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.m, chatID)
}
