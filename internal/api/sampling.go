package api

import "math/rand/v2"

const (
	maxStartOffset = 32
	maxSampleBatch = 8
)

// SamplingStrategy controls how the image listing endpoint picks documents
// from the ascending-id scan. StartOffset gives the number of rows to skip
// before collecting, MaxBatch caps the batch, and Shuffle randomizes the
// final batch order.
type SamplingStrategy struct {
	StartOffset func() int
	MaxBatch    int
	Shuffle     func(n int, swap func(i, j int))
}

// DefaultSampling reproduces the original sampling policy: skip a uniformly
// random number of documents in [1, 32] and collect at most 8 matches. The
// fixed offset bound biases sampling once the store grows well past ~40
// documents; swap the strategy, not the handler, to change the policy.
func DefaultSampling() SamplingStrategy {
	return SamplingStrategy{
		StartOffset: func() int { return rand.IntN(maxStartOffset) + 1 },
		MaxBatch:    maxSampleBatch,
		Shuffle:     rand.Shuffle,
	}
}
