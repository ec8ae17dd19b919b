package service

import (
	"time"

	"github.com/okian/parley/internal/adapters/repository"
	"github.com/okian/parley/internal/domain/scoring"
	"github.com/okian/parley/internal/domain/topic"
	"github.com/okian/parley/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithCatalog sets the topic catalog.
func WithCatalog(c *topic.Catalog) Option {
	return func(s *Service) {
		if c != nil {
			s.catalog = c
		}
	}
}

// WithSemantic sets the semantic analysis collaborator.
func WithSemantic(sem scoring.Semantic) Option {
	return func(s *Service) {
		s.semantic = sem
	}
}

// WithReplier sets the reply generation collaborator.
func WithReplier(r Replier) Option {
	return func(s *Service) {
		s.replier = r
	}
}

// WithTranscriber sets the transcription collaborator.
func WithTranscriber(t Transcriber) Option {
	return func(s *Service) {
		s.transcriber = t
	}
}

// WithStore sets the record store, overriding the default file store.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		s.store = store
	}
}

// WithDataDir sets the directory of the default file store.
func WithDataDir(dir string) Option {
	return func(s *Service) {
		if dir != "" {
			s.dataDir = dir
		}
	}
}

// WithSaveSessions toggles persistence of finalized sessions.
func WithSaveSessions(save bool) Option {
	return func(s *Service) {
		s.saveSessions = save
	}
}

// WithMemoSize bounds the scoring result cache.
func WithMemoSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.memoSize = n
		}
	}
}

// WithArchiveQueueSize bounds the persistence queue.
func WithArchiveQueueSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.archiveQueueSize = n
		}
	}
}

// WithArchiveWriterCount sets the number of archive writers.
func WithArchiveWriterCount(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.archiveWriterCount = n
		}
	}
}

// WithSnippetWindow sets context words kept around keyword matches.
func WithSnippetWindow(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.snippetWindow = n
		}
	}
}

// WithContextMaxTurns caps the history passed to reply generation.
func WithContextMaxTurns(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.contextMaxTurns = n
		}
	}
}

// WithTargetScore sets the score at which sessions stop.
func WithTargetScore(score float64) Option {
	return func(s *Service) {
		if score > 0 {
			s.targetScore = score
		}
	}
}

// WithMaxUserTurns sets the user turn limit of a session.
func WithMaxUserTurns(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxUserTurns = n
		}
	}
}

// WithTimeLimit sets the session duration limit.
func WithTimeLimit(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.timeLimit = d
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}
