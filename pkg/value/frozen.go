package value

import (
	"errors"
	"math"
	"sync/atomic"

	verrors "github.com/vango-dev/vstore/internal/errors"
)

// ErrFrozen is returned by every mutating method of a frozen composite.
var ErrFrozen = errors.New("vstore: value is frozen")

// frozenFlag is embedded by every composite to carry its read-only mark.
type frozenFlag struct {
	frozen atomic.Bool
}

// IsFrozen reports whether the value has been marked read-only.
func (f *frozenFlag) IsFrozen() bool {
	return f.frozen.Load()
}

// MarkFrozen marks the value itself read-only. It does not touch children;
// freeze.Deep handles recursion.
func (f *frozenFlag) MarkFrozen() {
	f.frozen.Store(true)
}

func (f *frozenFlag) checkWritable(op string) error {
	if f.frozen.Load() {
		return verrors.New("E001").WithDetail(op).Wrap(ErrFrozen)
	}
	return nil
}

// sameKey matches map keys and set members the way a keyed collection does:
// by identity for references, by value for scalars, with NaN matching NaN.
func sameKey(a, b any) (same bool) {
	defer func() {
		if recover() != nil {
			same = false
		}
	}()
	if a == b {
		return true
	}
	return isNaN(a) && isNaN(b)
}

func isNaN(v any) bool {
	switch f := v.(type) {
	case float64:
		return math.IsNaN(f)
	case float32:
		return math.IsNaN(float64(f))
	}
	return false
}
