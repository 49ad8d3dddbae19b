package cluster

import "github.com/rotisserie/eris"

// Sentinel errors for the clustering engine. Callers match with eris.Is.
var (
	// ErrInvalidParameter indicates a bad eps or minPts value.
	ErrInvalidParameter = eris.New("cluster: invalid parameter")

	// ErrInvalidInput indicates a malformed input set, such as summarizing
	// an empty member list.
	ErrInvalidInput = eris.New("cluster: invalid input")

	// ErrEmptyInput indicates an empty point or store sequence.
	ErrEmptyInput = eris.New("cluster: empty input")
)
