package genome

import "errors"

var (
	errEventTypeTooLong       = errors.New("event_type does not fit in its field")
	errPayloadTooLong         = errors.New("payload does not fit in its field")
	errPayloadNotDecimal      = errors.New("payload contains a non-decimal byte")
	errEventTypeNotTerminated = errors.New("event_type field is not NUL-terminated")
	errPayloadNotTerminated   = errors.New("payload field is not NUL-terminated")
	errNoNulTerminator        = errors.New("field has no NUL terminator")
	errIndexMismatch          = errors.New("block index does not match expected sequence position")
	errPrevHashMismatch       = errors.New("prev_hash does not match SHA-256 of the previous block")
	errHMACMismatch           = errors.New("hmac does not authenticate the block")
	errTrailingPartialBlock   = errors.New("file length is not a multiple of the block size")
	errNotOpen                = errors.New("genome context is not open")
	errAlreadyOpen            = errors.New("genome context is already open")
	errKeyLength              = errors.New("hmac key must be 1 to 64 bytes")
)
