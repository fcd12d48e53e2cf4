package headless

import "errors"

var errRemoved = errors.New("headless: chart removed")
