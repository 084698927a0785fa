package scan

import (
	"context"
	"iter"

	"github.com/rs/zerolog/log"
)

// Stream returns a lazy sequence of photos under the project tree, picking
// full traversal, a deterministic sample, or a randomized stratified
// sample according to the root config's Sample() setting. It is the
// scanner's synchronous generator: range over it directly, or drive it
// through EnqueueThread to get the bounded-channel form the preprocessing
// orchestrator consumes.
func (s *Scanner) Stream(ctx context.Context) iter.Seq[Photo] {
	return func(yield func(Photo) bool) {
		sample := s.root().Sample()

		var err error
		switch {
		case sample.Enabled && sample.Random:
			err = s.streamRandom(ctx, sample.Size, yield)
		case sample.Enabled:
			err = s.streamOrdered(ctx, sample.Size, yield)
		default:
			err = s.streamOrdered(ctx, -1, yield)
		}

		if err != nil && ctx.Err() == nil {
			log.Error().Err(err).Msg("directory scan stopped early")
		}
		s.Metrics.Summary(sample.Enabled, sample.Enabled && sample.Random)
	}
}

// EnqueueThread runs the scan in its own goroutine, pushing each photo onto
// out. It polls ctx before every push and closes out when the scan ends
// (the channel close is this port's sentinel, standing in for the original
// enqueue thread's explicit termination sentinel value). The returned
// channel is read-only; the caller should range over it until it closes.
func EnqueueThread(ctx context.Context, s *Scanner) <-chan Photo {
	out := make(chan Photo, 100)
	go func() {
		defer close(out)
		for p := range s.Stream(ctx) {
			select {
			case out <- p:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}
