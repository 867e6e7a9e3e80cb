package reading

import "errors"

var ErrReadingNotFound = errors.New("control unit data not found")
