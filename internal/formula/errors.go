package formula

import "errors"

var (
	errNoAssociation = errors.New("formula: no association for input hash")
	errGeneNotFound  = errors.New("formula: no formula with matching gene")
)
