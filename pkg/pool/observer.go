package pool

import "sync"

// Update describes one published routing state. Updates are snapshots, not
// deltas; a slow consumer may miss intermediate generations but the last
// update it reads always matches a state that was current.
type Update struct {
	Generation uint64
	Endpoints  []string
	Shards     int
}

// updateFeed fans published routing states out to subscribers. Sends never
// block reconciliation; a subscriber that falls more than a buffer behind
// loses the oldest updates.
type updateFeed struct {
	mutex       *sync.Mutex
	subscribers []chan Update
}

func newUpdateFeed() *updateFeed {
	return &updateFeed{
		mutex:       &sync.Mutex{},
		subscribers: make([]chan Update, 0),
	}
}

func (f *updateFeed) Observe() <-chan Update {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	if f.subscribers == nil {
		return nil
	}
	ret := make(chan Update, 8)
	f.subscribers = append(f.subscribers, ret)
	return ret
}

func (f *updateFeed) Unobserve(ch <-chan Update) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	for i, v := range f.subscribers {
		if v == ch {
			f.subscribers = append(f.subscribers[:i], f.subscribers[i+1:]...)
			close(v)
			return
		}
	}
}

func (f *updateFeed) publish(u Update) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	for _, v := range f.subscribers {
		select {
		case v <- u:
		default:
			// drop the oldest update to make room for the newest
			select {
			case <-v:
			default:
			}
			select {
			case v <- u:
			default:
			}
		}
	}
}

func (f *updateFeed) shutdown() {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	for _, v := range f.subscribers {
		close(v)
	}
	f.subscribers = nil
}
