package glkapi

import "errors"

// Discriminated Glk error values. Each is a distinct sentinel so callers can
// compare with errors.Is instead of string matching.
var (
	ErrCannotCloseWindowStream    = errors.New("cannot close a window stream directly")
	ErrIllegalFilemode            = errors.New("illegal filemode")
	ErrInvalidReference           = errors.New("invalid reference")
	ErrInvalidSplitwin            = errors.New("invalid splitwin")
	ErrInvalidWindowDirection     = errors.New("invalid window direction")
	ErrInvalidWindowDivision      = errors.New("invalid window division")
	ErrInvalidWindowDivisionBlank = errors.New("invalid window division for blank window")
	ErrInvalidWintype             = errors.New("invalid wintype")
	ErrNotFileStream              = errors.New("not a file stream")
	ErrNotGraphicsWindow          = errors.New("not a graphics window")
	ErrNotGridWindow              = errors.New("not a grid window")
	ErrNotPairWindow              = errors.New("not a pair window")
	ErrPendingLineInput           = errors.New("pending line input")
	ErrPendingKeyboardRequest     = errors.New("pending keyboard request")
	ErrReadFromWriteOnly          = errors.New("read from write-only stream")
	ErrSplitMustBeNull            = errors.New("split must be null")
	ErrSplitParentIsntPair        = errors.New("split's parent isn't a pair window")
	ErrWindowNoCharInput          = errors.New("window doesn't support char input")
	ErrWindowNoLineInput          = errors.New("window doesn't support line input")
	ErrWriteToReadOnly            = errors.New("write to read-only stream")
	ErrKeywinCantBePair           = errors.New("key window cannot be a pair window")
	ErrKeywinMustBeDescendant     = errors.New("key window must be a descendant of the pair window")
	ErrCannotChangeSplitDirection = errors.New("cannot change pair window split direction")
	ErrOutspacingMustBeZero       = errors.New("outspacing must be zero")
	ErrWrongGeneration            = errors.New("wrong generation")
	ErrEventNotSupported          = errors.New("event type not supported")
)
