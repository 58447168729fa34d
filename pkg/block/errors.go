package block

import "fmt"

type ErrKind int

const (
	// InvalidArgument: the caller can recover by correcting its input.
	InvalidArgument ErrKind = iota
	// UnsupportedOperation: the accessor is not part of this block kind's
	// contract. Signals an engine bug, not a data error.
	UnsupportedOperation
	// IllegalState: protocol violation on a stateful writer.
	IllegalState
	// InternalConsistency: a build-time invariant was violated. Fatal,
	// never repaired here.
	InternalConsistency
)

func (k ErrKind) String() string {
	switch k {
	case InvalidArgument:
		return "invalid argument"
	case UnsupportedOperation:
		return "unsupported operation"
	case IllegalState:
		return "illegal state"
	case InternalConsistency:
		return "internal consistency"
	}
	return fmt.Sprintf("unknown kind %d", int(k))
}

// Error is carried by panics raised on contract violations inside the
// block layer. The layer performs no retries and no recovery; the
// operator layer above decides what to do with the kind tag.
type Error struct {
	Kind ErrKind
	Msg  string
}

func (e *Error) Error() string {
	return e.Kind.String() + ": " + e.Msg
}

func throw(kind ErrKind, format string, args ...any) {
	panic(&Error{Kind: kind, Msg: fmt.Sprintf(format, args...)})
}

func throwUnsupported(enc string, op string) {
	throw(UnsupportedOperation, "%s does not support %s", enc, op)
}

func checkValidRegion(positionCount, offset, length int) {
	if offset < 0 || length < 0 || offset+length > positionCount {
		throw(InvalidArgument,
			"invalid region [%d, %d) in block with %d positions",
			offset, offset+length, positionCount)
	}
}

func checkReadablePosition(b Block, pos int) {
	if pos < 0 || pos >= b.PositionCount() {
		throw(InvalidArgument,
			"position %d out of range for block with %d positions",
			pos, b.PositionCount())
	}
}

func checkValidPositions(positions []int, positionCount int) {
	for _, p := range positions {
		if p < 0 || p >= positionCount {
			throw(InvalidArgument,
				"position %d out of range for block with %d positions",
				p, positionCount)
		}
	}
}
