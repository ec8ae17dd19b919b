package archive

type settings struct {
	queueCapacity int
	writerCount   int
}

// Option applies a configuration option to the Archiver.
type Option func(*settings)

// WithQueueCapacity sets the maximum number of queued records.
func WithQueueCapacity(capacity int) Option {
	return func(s *settings) {
		if capacity > 0 {
			s.queueCapacity = capacity
		}
	}
}

// WithWriterCount sets the number of writer goroutines.
func WithWriterCount(count int) Option {
	return func(s *settings) {
		if count > 0 {
			s.writerCount = count
		}
	}
}
