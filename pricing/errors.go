package pricing

import "errors"

var (
	// ErrDataUnavailable means the required current-sample file is
	// missing or unparsable. It is the only failure fatal to snapshot
	// production; everything else degrades.
	ErrDataUnavailable = errors.New("current price data unavailable")

	// ErrMalformedRecord marks a single bad line in a historical file.
	// Scans skip the line with a warning and continue.
	ErrMalformedRecord = errors.New("malformed record")
)
