package symboltable

import "errors"

var errUnknownDigits = errors.New("digit tuple has no assigned codepoint")
