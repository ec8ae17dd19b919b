// Package config defines service configuration structures and loading hooks.
//
// Fields are exported and koanf-tagged so the loader can populate them from
// files and environment variables. External errors must be wrapped via this
// package's error helpers.
package config

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// DataDir holds persisted session records, one JSON file per session.
	DataDir string `koanf:"data_dir"`

	// SaveSessions toggles persistence of finalized sessions.
	SaveSessions bool `koanf:"save_sessions"`

	// GeminiAPIKey authenticates the semantic-analysis and reply-generation
	// collaborators. Required at startup.
	GeminiAPIKey string `koanf:"gemini_api_key"`

	// GeminiModel names the generation model. Required at startup.
	GeminiModel string `koanf:"gemini_model"`

	// AssemblyAIAPIKey authenticates the transcription collaborator.
	// Optional: without it the /transcribe endpoint is disabled.
	AssemblyAIAPIKey string `koanf:"assemblyai_api_key"`

	// TargetScore stops the conversation once the current score reaches it.
	TargetScore float64 `koanf:"target_score"`

	// MaxUserTurns stops the conversation at this many user turns.
	MaxUserTurns int `koanf:"max_user_turns"`

	// SessionTimeLimitMin stops the conversation after this many minutes.
	SessionTimeLimitMin int `koanf:"session_time_limit_min"`

	// SnippetWindow sets context words kept on each side of a keyword match.
	SnippetWindow int `koanf:"snippet_window"`

	// MemoSize bounds the scoring result cache.
	MemoSize int `koanf:"memo_size"`

	// ArchiveQueueSize bounds the finalized-record persistence queue.
	ArchiveQueueSize int `koanf:"archive_queue_size"`

	// ArchiveWriterCount sets the number of archive writer goroutines.
	ArchiveWriterCount int `koanf:"archive_writer_count"`

	// SpeechRetryAttempts bounds transcription retries.
	SpeechRetryAttempts int `koanf:"speech_retry_attempts"`

	// SpeechRetryBackoffMS sets the delay between transcription retries.
	SpeechRetryBackoffMS int `koanf:"speech_retry_backoff_ms"`

	// ReplyMaxTokens caps generated reply length.
	ReplyMaxTokens int `koanf:"reply_max_tokens"`

	// ReplyTemperature sets generation creativity in [0,2].
	ReplyTemperature float64 `koanf:"reply_temperature"`

	// ContextMaxTurns caps how many recent turns reply generation sees.
	ContextMaxTurns int `koanf:"context_max_turns"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:             "info",
		Addr:                 ":9080",
		DataDir:              "conversations",
		SaveSessions:         true,
		GeminiModel:          "gemini-2.0-flash",
		TargetScore:          80,
		MaxUserTurns:         8,
		SessionTimeLimitMin:  10,
		SnippetWindow:        10,
		MemoSize:             1024,
		ArchiveQueueSize:     64,
		ArchiveWriterCount:   2,
		SpeechRetryAttempts:  3,
		SpeechRetryBackoffMS: 1000,
		ReplyMaxTokens:       500,
		ReplyTemperature:     0.7,
		ContextMaxTurns:      6,
	}
}
