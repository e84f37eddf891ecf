package logger

// Default rotation settings for the file sink.
const (
	defaultMaxSizeMB  = 100
	defaultMaxBackups = 3
	defaultMaxAgeDays = 28
)

type settings struct {
	filePath   string
	maxSizeMB  int
	maxBackups int
	maxAgeDays int
	compress   bool
}

func defaultSettings() settings {
	return settings{
		maxSizeMB:  defaultMaxSizeMB,
		maxBackups: defaultMaxBackups,
		maxAgeDays: defaultMaxAgeDays,
		compress:   true,
	}
}

// Option applies a configuration option to Init.
type Option func(*settings)

// WithFile adds a JSON log sink on the given path, rotated by size.
func WithFile(path string) Option {
	return func(s *settings) {
		if path != "" {
			s.filePath = path
		}
	}
}

// WithMaxSize sets the size in megabytes at which the log file rotates.
func WithMaxSize(megabytes int) Option {
	return func(s *settings) {
		if megabytes > 0 {
			s.maxSizeMB = megabytes
		}
	}
}

// WithMaxBackups sets how many rotated files to retain.
func WithMaxBackups(count int) Option {
	return func(s *settings) {
		if count > 0 {
			s.maxBackups = count
		}
	}
}

// WithMaxAge sets how many days rotated files are retained.
func WithMaxAge(days int) Option {
	return func(s *settings) {
		if days > 0 {
			s.maxAgeDays = days
		}
	}
}
