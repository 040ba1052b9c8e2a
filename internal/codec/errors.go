package codec

import "errors"

var (
	errLengthNotMultipleOfThree = errors.New("malformed encoding: digit length not a multiple of three")
	errDigitOutOfRange          = errors.New("malformed encoding: digit greater than nine")
	errTripleOverflow           = errors.New("malformed encoding: triple decodes past 255")
)
