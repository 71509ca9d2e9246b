package repository

import "github.com/vishalyl/GlassBoxAI-sub000/pkg/logger"

// Option applies a configuration option to the GormStore.
type Option func(*GormStore)

// WithLogger sets the logger used for store diagnostics.
func WithLogger(l logger.Logger) Option {
	return func(s *GormStore) {
		if l != nil {
			s.log = l
		}
	}
}

// WithSQLLogging turns on gorm's statement logging.
func WithSQLLogging(enabled bool) Option {
	return func(s *GormStore) {
		s.sqlLogging = enabled
	}
}

// WithAutoMigrate controls whether Open creates missing tables. Defaults to true.
func WithAutoMigrate(enabled bool) Option {
	return func(s *GormStore) {
		s.autoMigrate = enabled
	}
}
