package samplequeue

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
)

const (
	// Number of QueueItem slots in every Queue.
	Capacity = 32

	// Passed as a loop count to play an item from its start indefinitely.
	LoopForever = -1

	// int16 samples are divided by this to land in roughly [-0.5, 0.5).
	sampleScale = 1 << 16
)

var (
	ErrInvalidBuffer    = errors.New("invalid sample buffer")
	ErrInvalidLoopCount = errors.New("invalid loop count")
	ErrQueueFull        = errors.New("sample queue full")
)

type EndBehavior int

const (
	// Retire the item and move on to the next queued item.
	EndAdvance EndBehavior = iota
	// Reset the cursor and play the same item again.
	EndRepeat
)

func (b EndBehavior) String() string {
	switch b {
	case EndAdvance:
		return "advance"
	case EndRepeat:
		return "repeat"
	default:
		return fmt.Sprintf("EndBehavior(%d)", int(b))
	}
}

// A QueueItem is one pending playback of a SampleBuffer.
// Cursor counts stereo frames and satisfies 0 <= Cursor <= Buffer.Frames().
type QueueItem struct {
	Buffer      SampleBuffer
	Cursor      int
	EndBehavior EndBehavior
}

// A Queue is a fixed capacity ring of QueueItems, filled by producers with Push
// and drained by exactly one consumer (the audio callback) with MixInto.
//
// head and tail are monotonically increasing counters; the slot of a counter is
// its value modulo Capacity. head == tail means empty, tail-head == Capacity
// means full. The producer writes slots before publishing tail, and only the
// consumer stores head.
//
// Producers are serialized among themselves by pushMutex. The consumer never
// touches the mutex, so pushing can never block the audio callback.
//
// The zero value is an empty queue ready for use. A Queue must not be copied.
type Queue struct {
	// Separate cache lines for the consumer and producer counters.
	head  atomic.Uint64
	_pad1 [56]byte
	tail  atomic.Uint64
	_pad2 [56]byte

	pushMutex sync.Mutex
	items     [Capacity]QueueItem

	// Mirrors items[i].EndBehavior for observers outside the consumer.
	endBehaviors [Capacity]atomic.Int32
}

// --------------------------------------------------------------------------------
// Producer side

// Push enqueues buf according to loopCount:
//   - loopCount >= 0 enqueues that many back to back plays, each retired when done
//   - loopCount == LoopForever enqueues a single item that repeats indefinitely
//
// Push is all-or-nothing. If the ring cannot hold every item it returns
// ErrQueueFull and the queue is left unmodified. Push may be called from any
// goroutine, including several at once.
func (q *Queue) Push(buf SampleBuffer, loopCount int) error {
	if buf.Frames() == 0 {
		return fmt.Errorf("%w: empty buffer", ErrInvalidBuffer)
	}

	numItems, behavior, err := itemsForLoopCount(loopCount)
	if err != nil {
		return err
	}
	if numItems == 0 {
		return nil
	}

	q.pushMutex.Lock()
	defer q.pushMutex.Unlock()

	tail := q.tail.Load()
	free := Capacity - (tail - q.head.Load())
	if uint64(numItems) > free {
		return fmt.Errorf("%w: %d slots free, %d required", ErrQueueFull, free, numItems)
	}

	for i := range uint64(numItems) {
		slot := (tail + i) % Capacity
		q.items[slot] = QueueItem{
			Buffer:      buf,
			Cursor:      0,
			EndBehavior: behavior,
		}
		q.endBehaviors[slot].Store(int32(behavior))
	}
	q.tail.Store(tail + uint64(numItems))
	return nil
}

func itemsForLoopCount(loopCount int) (int, EndBehavior, error) {
	switch {
	case loopCount == LoopForever:
		return 1, EndRepeat, nil
	case loopCount >= 0:
		return loopCount, EndAdvance, nil
	default:
		return 0, EndAdvance, fmt.Errorf("%w: %d", ErrInvalidLoopCount, loopCount)
	}
}

// --------------------------------------------------------------------------------
// Consumer side

// MixInto adds this queue's contribution to every interleaved stereo frame of
// out, advancing cursors and retiring or looping finished items.
//
// Only the audio callback may call MixInto. It does not allocate or block.
func (q *Queue) MixInto(out []float32) {
	head := q.head.Load()
	tail := q.tail.Load()
	if head == tail {
		return
	}

	item := &q.items[head%Capacity]
	for i := 0; i+1 < len(out); i += 2 {
		frames := item.Buffer.Frames()
		if frames == 0 {
			// Push never enqueues an empty buffer; stay silent rather than spin.
			return
		}

		frame := item.Buffer.samples[2*item.Cursor : 2*item.Cursor+2]
		out[i] += float32(frame[0]) / sampleScale
		out[i+1] += float32(frame[1]) / sampleScale

		item.Cursor++
		if item.Cursor < frames {
			continue
		}

		switch item.EndBehavior {
		case EndAdvance:
			head++
			q.head.Store(head)
			if head == tail {
				// Drained. Items pushed since the call began wait for the next call.
				return
			}
			item = &q.items[head%Capacity]
		case EndRepeat:
			item.Cursor = 0
		}
	}
}

// --------------------------------------------------------------------------------
// Observers, safe from any goroutine

// Number of items queued, including the one currently playing.
func (q *Queue) Len() int {
	head := q.head.Load()
	return int(q.tail.Load() - head)
}

func (q *Queue) Empty() bool {
	return q.Len() == 0
}

// Reports whether the item at the head of the queue repeats forever.
func (q *Queue) Looping() bool {
	for {
		head := q.head.Load()
		if head == q.tail.Load() {
			return false
		}
		behavior := EndBehavior(q.endBehaviors[head%Capacity].Load())
		// The slot may have been retired and refilled meanwhile.
		if q.head.Load() == head {
			return behavior == EndRepeat
		}
	}
}
