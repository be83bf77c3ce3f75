package repository

import "os"

type options struct {
	perm     os.FileMode
	prefix   string
	db       int
	password string
}

func newOptions(opts []Option) options {
	o := options{perm: 0o644, prefix: "salarycast"}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Option configures a store.
type Option func(*options)

// WithFileMode sets the permission bits of written artifact files.
func WithFileMode(perm os.FileMode) Option {
	return func(o *options) {
		if perm != 0 {
			o.perm = perm
		}
	}
}

// WithPrefix sets the redis key prefix.
func WithPrefix(prefix string) Option {
	return func(o *options) {
		if prefix != "" {
			o.prefix = prefix
		}
	}
}

// WithDB selects the redis database.
func WithDB(db int) Option {
	return func(o *options) {
		if db >= 0 {
			o.db = db
		}
	}
}

// WithPassword sets the redis password.
func WithPassword(password string) Option {
	return func(o *options) {
		o.password = password
	}
}
