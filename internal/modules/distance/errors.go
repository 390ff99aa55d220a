package distance

import "errors"

var errBadOracleValue = errors.New("oracle returned a non-finite or negative distance")
