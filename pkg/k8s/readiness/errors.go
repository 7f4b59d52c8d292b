package readiness

import "errors"

// ErrReadinessTimeout is returned when a readiness poll exhausts its
// attempt budget without the resource becoming ready.
var ErrReadinessTimeout = errors.New("readiness timeout exceeded")
