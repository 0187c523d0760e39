package fileops

import (
	"errors"
	"fmt"
	iofs "io/fs"

	"github.com/justyntemme/razorcore/internal/trash"
)

// Reason classifies a per-item failure.
type Reason int

const (
	ReasonUnknown Reason = iota
	ReasonCollision
	ReasonPermission
	ReasonCrossDevice
	ReasonNotFound
	ReasonInvalidName
	ReasonIntoItself
)

func (r Reason) String() string {
	switch r {
	case ReasonCollision:
		return "collision"
	case ReasonPermission:
		return "permission"
	case ReasonCrossDevice:
		return "cross_device"
	case ReasonNotFound:
		return "not_found"
	case ReasonInvalidName:
		return "invalid_name"
	case ReasonIntoItself:
		return "into_itself"
	default:
		return "unknown"
	}
}

// Failure is a typed per-item failure.
type Failure struct {
	Path   string
	Reason Reason
	Err    error
}

func (f *Failure) Error() string {
	return fmt.Sprintf("%s: %s: %v", f.Path, f.Reason, f.Err)
}

func (f *Failure) Unwrap() error {
	return f.Err
}

func newFailure(path string, err error) *Failure {
	return &Failure{Path: path, Reason: ReasonOf(err), Err: err}
}

// ReasonOf classifies an error from the filesystem or the trash.
func ReasonOf(err error) Reason {
	var ve *ValidationError
	switch {
	case err == nil:
		return ReasonUnknown
	case errors.As(err, &ve):
		return ReasonInvalidName
	case errors.Is(err, errIntoItself):
		return ReasonIntoItself
	case errors.Is(err, iofs.ErrExist), errors.Is(err, trash.ErrOccupied):
		return ReasonCollision
	case errors.Is(err, iofs.ErrPermission):
		return ReasonPermission
	case errors.Is(err, iofs.ErrNotExist), errors.Is(err, trash.ErrNotFound):
		return ReasonNotFound
	case isCrossDevice(err):
		return ReasonCrossDevice
	default:
		return ReasonUnknown
	}
}

var errIntoItself = errors.New("cannot place a directory inside itself")

// dominantReason is the most frequent reason among failures, for a single
// summary notification.
func dominantReason(fs []*Failure) Reason {
	counts := make(map[Reason]int)
	best, bestN := ReasonUnknown, 0
	for _, f := range fs {
		counts[f.Reason]++
		if n := counts[f.Reason]; n > bestN {
			best, bestN = f.Reason, n
		}
	}
	return best
}
