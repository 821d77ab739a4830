// Package queue implements the per-guild playback queue engine: an ordered
// sequence of tracks where position 0 is whatever is currently streaming
// (once playback has started) and positions 1..len are upcoming.
package queue

import (
	"crypto/rand"
	"math/big"
	"sync"

	"cracktunes-go/music/types"
)

// Queue is a single guild's ordered track list plus the volume applied to
// the current and future tracks. Callers serialize access through the
// voice-session handle's mutex (design §4.2); Queue's own RWMutex exists so
// presenter snapshot reads never block on a slow enqueue.
type Queue struct {
	mu     sync.RWMutex
	items  []*types.ResolvedTrack
	volume float64
}

// New returns an empty queue with the given starting volume.
func New(volume float64) *Queue {
	if volume <= 0 {
		volume = 1.0
	}
	return &Queue{volume: volume}
}

// Len reports the number of tracks, including position 0 if playing.
func (q *Queue) Len() int {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return len(q.items)
}

// Get returns the track at position i without removing it.
func (q *Queue) Get(i int) (*types.ResolvedTrack, error) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if i < 0 || i >= len(q.items) {
		return nil, types.NotInRange("position", 0, len(q.items)-1)
	}
	return q.items[i], nil
}

// EnqueueBack appends a track at the end of the queue.
func (q *Queue) EnqueueBack(t *types.ResolvedTrack) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, t)
}

// EnqueueFront inserts at position 1 (right after the currently playing
// track), unless the queue is too short for "front" to mean anything
// distinct from "end" (len < 3), in which case it behaves like EnqueueBack.
func (q *Queue) EnqueueFront(t *types.ResolvedTrack) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) < 3 {
		q.items = append(q.items, t)
		return
	}
	q.insertAt(1, t)
}

// insertAt inserts t at index i, appending if i > len. Caller holds q.mu.
func (q *Queue) insertAt(i int, t *types.ResolvedTrack) {
	if i > len(q.items) {
		i = len(q.items)
	}
	q.items = append(q.items, nil)
	copy(q.items[i+1:], q.items[i:])
	q.items[i] = t
}

// Insert places t at index i, appending when i exceeds the current length
// (design §4.2 tie-break).
func (q *Queue) Insert(i int, t *types.ResolvedTrack) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.insertAt(i, t)
}

// PlayNext enqueues a single track at position 1.
func (q *Queue) PlayNext(t *types.ResolvedTrack) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.insertAt(1, t)
}

// EnqueueMany merges a batch of tracks into the queue per the given Mode.
// Jump only inserts the batch at the front here; Manager.Enqueue drops the
// old front and force-restarts playback.
func (q *Queue) EnqueueMany(tracks []*types.ResolvedTrack, mode types.EnqueueMode) {
	if len(tracks) == 0 {
		return
	}
	q.mu.Lock()
	defer q.mu.Unlock()

	switch mode {
	case types.ModeNext:
		for i := len(tracks) - 1; i >= 0; i-- {
			q.insertAt(1, tracks[i])
		}
	case types.ModeReverse:
		for i := len(tracks) - 1; i >= 0; i-- {
			q.items = append(q.items, tracks[i])
		}
	case types.ModeShuffle:
		shuffled := make([]*types.ResolvedTrack, len(tracks))
		copy(shuffled, tracks)
		fisherYates(shuffled)
		q.items = append(q.items, shuffled...)
	case types.ModeJump:
		for i := len(tracks) - 1; i >= 0; i-- {
			q.insertAt(0, tracks[i])
		}
	case types.ModeAll, types.ModeEnd, types.ModeSearch, types.ModeDownloadMKV, types.ModeDownloadMP3:
		fallthrough
	default:
		q.items = append(q.items, tracks...)
	}
}

// Remove removes and returns the track at index i.
func (q *Queue) Remove(i int) (*types.ResolvedTrack, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if i < 0 || i >= len(q.items) {
		return nil, types.NotInRange("position", 0, len(q.items)-1)
	}
	t := q.items[i]
	q.items = append(q.items[:i], q.items[i+1:]...)
	return t, nil
}

// RemoveRange removes and returns tracks in [i, j] inclusive.
func (q *Queue) RemoveRange(i, j int) ([]*types.ResolvedTrack, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if i < 0 || j < i || j >= len(q.items) {
		return nil, types.NotInRange("range", 0, len(q.items)-1)
	}
	removed := make([]*types.ResolvedTrack, j-i+1)
	copy(removed, q.items[i:j+1])
	q.items = append(q.items[:i], q.items[j+1:]...)
	return removed, nil
}

// PopBack removes and returns the last track.
func (q *Queue) PopBack() (*types.ResolvedTrack, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return nil, false
	}
	t := q.items[len(q.items)-1]
	q.items = q.items[:len(q.items)-1]
	return t, true
}

// PopFront removes and returns the track at position 0.
func (q *Queue) PopFront() (*types.ResolvedTrack, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return nil, false
	}
	t := q.items[0]
	q.items = q.items[1:]
	return t, true
}

// Shuffle randomizes positions 1..len, leaving position 0 (the currently
// playing track, if any) fixed.
func (q *Queue) Shuffle() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) < 3 {
		return
	}
	tail := q.items[1:]
	fisherYates(tail)
}

// Rotate rotates positions 1..len right by n, leaving position 0 fixed.
// Requires at least 3 entries total (i.e. at least 2 in the rotatable
// tail); otherwise returns CannotRotate.
func (q *Queue) Rotate(n int) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) <= 2 {
		return types.New(types.ErrCannotRotate, "")
	}
	tail := q.items[1:]
	m := len(tail)
	n = ((n % m) + m) % m
	if n == 0 {
		return nil
	}
	rotated := make([]*types.ResolvedTrack, m)
	for i, t := range tail {
		rotated[(i+n)%m] = t
	}
	copy(tail, rotated)
	return nil
}

// Clear drops every track except position 0.
func (q *Queue) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) > 1 {
		q.items = q.items[:1]
	}
}

// Skip drops position 0 (the ending track). If to > 1, positions 1..to-1
// are dropped first so the new position 0 is the pre-skip position `to`.
// Returns the dropped tracks in order (index 0 is the old current track).
func (q *Queue) Skip(to int) ([]*types.ResolvedTrack, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return nil, types.New(types.ErrNothingPlaying, "")
	}
	if to < 1 {
		to = 1
	}
	if to > len(q.items) {
		to = len(q.items)
	}
	dropped := make([]*types.ResolvedTrack, to)
	copy(dropped, q.items[:to])
	q.items = q.items[to:]
	return dropped, nil
}

// SetVolume records the guild's volume setting; it does not change playback
// itself (the player's SetVolume does that).
func (q *Queue) SetVolume(v float64) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.volume = v
}

// Volume returns the queue's current volume setting.
func (q *Queue) Volume() float64 {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.volume
}

// Current returns the track at position 0, if any.
func (q *Queue) Current() (*types.ResolvedTrack, bool) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if len(q.items) == 0 {
		return nil, false
	}
	return q.items[0], true
}

// Snapshot returns a copy of the full queue for display (design §4.2
// current_queue).
func (q *Queue) Snapshot() []*types.ResolvedTrack {
	q.mu.RLock()
	defer q.mu.RUnlock()
	out := make([]*types.ResolvedTrack, len(q.items))
	copy(out, q.items)
	return out
}

// fisherYates shuffles s in place using crypto/rand, matching the teacher's
// security-conscious shuffle implementation.
func fisherYates(s []*types.ResolvedTrack) {
	for i := len(s) - 1; i > 0; i-- {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(i+1)))
		if err != nil {
			continue
		}
		j := int(n.Int64())
		s[i], s[j] = s[j], s[i]
	}
}
