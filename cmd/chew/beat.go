package main

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/Honorable-Knights-of-the-Roundtable/chew/pkg/mixer"
	"github.com/Honorable-Knights-of-the-Roundtable/chew/pkg/samplequeue"
)

const beatsPerChomp = 4

// Push buf onto a queue of m. A full queue only drops this sound.
func push(m *mixer.Mixer, queueID int, buf samplequeue.SampleBuffer, loopCount int) {
	err := m.Push(queueID, buf, loopCount)
	switch {
	case err == nil:
	case errors.Is(err, samplequeue.ErrQueueFull):
		slog.Warn("queue full, dropping sound", "queue", queueID, "loopCount", loopCount)
	default:
		slog.Error("failed to push sound", "queue", queueID, "err", err)
	}
}

// Push the beat on every tick of bpm until ctx is done, and a chomp
// chompOffset after every beatsPerChomp-th beat.
//
// Returns the number of beats pushed.
func runBeat(ctx context.Context, m *mixer.Mixer, s sounds, bpm int, chompOffset time.Duration) int {
	ticker := time.NewTicker(time.Minute / time.Duration(bpm))
	defer ticker.Stop()

	beats := 0
	for {
		select {
		case <-ctx.Done():
			return beats
		case <-ticker.C:
			push(m, mixer.QueueBeat, s.beat, 1)
			beats++

			if beats%beatsPerChomp == 0 {
				time.AfterFunc(chompOffset, func() {
					push(m, mixer.QueuePrimary, s.chomp, 1)
				})
			}

			if faults := m.Faults(); faults > 0 && beats%beatsPerChomp == 0 {
				slog.Warn("mixing callback recovered from faults", "faults", faults)
			}
		}
	}
}
