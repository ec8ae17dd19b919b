package repository

import "io/fs"

// Option applies a configuration option to the FileStore.
type Option func(*FileStore)

// WithFileMode sets the permission bits for written record files.
func WithFileMode(perm fs.FileMode) Option {
	return func(s *FileStore) {
		if perm != 0 {
			s.perm = perm
		}
	}
}

// WithDirMode sets the permission bits for the created data directory.
func WithDirMode(perm fs.FileMode) Option {
	return func(s *FileStore) {
		if perm != 0 {
			s.dirPerm = perm
		}
	}
}
