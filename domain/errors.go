package domain

import "errors"

// Error kinds returned by the core packages. Wrap them with fmt.Errorf("%w: ...")
// and test with errors.Is; only the presentation layer turns them into text.
var (
	ErrInvalidRange  = errors.New("invalid range")
	ErrInvalidColumn = errors.New("invalid column")
	ErrMalformedFile = errors.New("malformed file")
	ErrIO            = errors.New("io failure")
	ErrNoData        = errors.New("no data loaded")
)

// Kind classifies an error returned by a core operation.
type Kind int

const (
	KindUnknown Kind = iota
	KindInvalidRange
	KindInvalidColumn
	KindMalformedFile
	KindIO
	KindNoData
)

func (k Kind) String() string {
	switch k {
	case KindInvalidRange:
		return "invalid range"
	case KindInvalidColumn:
		return "invalid column"
	case KindMalformedFile:
		return "malformed file"
	case KindIO:
		return "io"
	case KindNoData:
		return "no data"
	default:
		return "unknown"
	}
}

// KindOf returns the kind of err, KindUnknown if none matches.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindUnknown
	case errors.Is(err, ErrInvalidRange):
		return KindInvalidRange
	case errors.Is(err, ErrInvalidColumn):
		return KindInvalidColumn
	case errors.Is(err, ErrMalformedFile):
		return KindMalformedFile
	case errors.Is(err, ErrIO):
		return KindIO
	case errors.Is(err, ErrNoData):
		return KindNoData
	default:
		return KindUnknown
	}
}
