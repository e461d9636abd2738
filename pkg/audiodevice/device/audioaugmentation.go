package device

// Scale every sample by gain. Must be non-negative.
// 0.0 means muted, 1.0 is natural scaling, technically uncapped but
// samples clip once quantized if values are made too large.
//
// The mixer sums queues without clamping, so this is where sounds that may
// overlap are attenuated.
func applyGain(samples []float32, gain float32) {
	if gain < 0.0 {
		gain = 0.0
	}
	if gain == 1.0 {
		return
	}
	for i := range samples {
		samples[i] *= gain
	}
}
