package segdeque

import "github.com/cockroachdb/errors"

const (
	// DefaultBlockSize is the number of elements per block when
	// Options.BlockSize is unset.
	DefaultBlockSize = 64
	// DefaultMapSize is the initial number of block handles in the map when
	// Options.MapSize is unset.
	DefaultMapSize = 8
)

// Options configures the storage layout of a Deque. The zero value uses the
// defaults.
//
// BlockSize trades per-block overhead (one allocation and one map entry per
// block) against the amount of memory left unused at both ends. MapSize only
// affects how many pushes can happen before the map is grown for the first
// time.
type Options struct {
	// BlockSize is the number of elements held by every block.
	BlockSize int
	// MapSize is the number of block handles the map of an empty Deque starts
	// with.
	MapSize int
}

// EnsureDefaults fills in zero fields with their default values and returns
// the receiver. A nil receiver returns a new Options with defaults.
func (o *Options) EnsureDefaults() *Options {
	if o == nil {
		o = &Options{}
	}
	if o.BlockSize == 0 {
		o.BlockSize = DefaultBlockSize
	}
	if o.MapSize == 0 {
		o.MapSize = DefaultMapSize
	}
	return o
}

// Validate returns an error wrapping ErrInvalidOptions if the options cannot
// describe a Deque.
func (o *Options) Validate() error {
	if o.BlockSize < 1 {
		return errors.Wrapf(ErrInvalidOptions, "deque: block size %d must be positive", o.BlockSize)
	}
	if o.MapSize < 1 {
		return errors.Wrapf(ErrInvalidOptions, "deque: map size %d must be positive", o.MapSize)
	}
	return nil
}
