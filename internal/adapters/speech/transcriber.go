// Package speech turns recorded audio into text via the AssemblyAI API and
// runs audio playback as explicitly tracked tasks.
package speech

import (
	"context"
	"fmt"
	"io"
	"time"

	assemblyai "github.com/AssemblyAI/assemblyai-go-sdk"

	"github.com/okian/parley/pkg/logger"
	"github.com/okian/parley/pkg/metrics"
)

// Default retry configuration constants.
const (
	defaultRetryAttempts = 3
	defaultRetryBackoff  = time.Second
)

// Transcriber submits audio to AssemblyAI and waits for the transcript.
// Transient failures are retried a bounded number of times with a fixed
// backoff between attempts.
type Transcriber struct {
	client        *assemblyai.Client
	retryAttempts int
	retryBackoff  time.Duration
	logger        logger.Logger
}

// Option applies a configuration option to the Transcriber.
type Option func(*Transcriber)

// WithRetryAttempts bounds the number of transcription attempts.
func WithRetryAttempts(n int) Option {
	return func(t *Transcriber) {
		if n > 0 {
			t.retryAttempts = n
		}
	}
}

// WithRetryBackoff sets the delay between attempts.
func WithRetryBackoff(d time.Duration) Option {
	return func(t *Transcriber) {
		if d > 0 {
			t.retryBackoff = d
		}
	}
}

// NewTranscriber creates a Transcriber authenticated with apiKey.
func NewTranscriber(apiKey string, opts ...Option) (*Transcriber, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("transcriber: API key is required")
	}

	t := &Transcriber{
		client:        assemblyai.NewClient(apiKey),
		retryAttempts: defaultRetryAttempts,
		retryBackoff:  defaultRetryBackoff,
		logger:        logger.Get().Named("speech"),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// Transcribe uploads audio and returns the recognized text. Audio that
// produces an empty transcript returns "" without error.
func (t *Transcriber) Transcribe(ctx context.Context, audio io.Reader) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= t.retryAttempts; attempt++ {
		if attempt > 1 {
			metrics.RecordTranscriptionRetry()
			select {
			case <-time.After(t.retryBackoff):
			case <-ctx.Done():
				return "", fmt.Errorf("transcribe: %w", ctx.Err())
			}
		}

		text, err := t.transcribeOnce(ctx, audio)
		if err == nil {
			metrics.RecordTranscription()
			return text, nil
		}
		lastErr = err
		t.logger.Warn(ctx, "transcription attempt failed",
			logger.Int("attempt", attempt),
			logger.Error(err),
		)

		// The reader is consumed on upload; a retry needs a rewindable source.
		seeker, ok := audio.(io.Seeker)
		if !ok {
			break
		}
		if _, err := seeker.Seek(0, io.SeekStart); err != nil {
			break
		}
	}

	metrics.RecordTranscriptionError()
	metrics.RecordErrorByComponent("speech", "transcribe_failed")
	return "", fmt.Errorf("transcribe after %d attempts: %w", t.retryAttempts, lastErr)
}

func (t *Transcriber) transcribeOnce(ctx context.Context, audio io.Reader) (string, error) {
	transcript, err := t.client.Transcripts.TranscribeFromReader(ctx, audio, nil)
	if err != nil {
		return "", err
	}
	if transcript.Status == assemblyai.TranscriptStatusError {
		if transcript.Error != nil {
			return "", fmt.Errorf("transcript failed: %s", *transcript.Error)
		}
		return "", fmt.Errorf("transcript failed")
	}
	if transcript.Text == nil {
		return "", nil
	}
	return *transcript.Text, nil
}
