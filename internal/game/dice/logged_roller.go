package dice

import "go.uber.org/zap"

// Roller wraps a Source and logger to provide logged dice throwing.
// Every throw is logged at debug level with both die values and the sum.
type Roller struct {
	src    Source
	logger *zap.Logger
}

// NewRoller creates a Roller that throws with src and logs each throw to logger.
//
// Precondition: src and logger must be non-nil.
func NewRoller(src Source, logger *zap.Logger) *Roller {
	return &Roller{src: src, logger: logger}
}

// RollPair throws two dice and logs the result at debug level.
//
// Postcondition: Both values of the returned Pair are in [1, Sides].
func (r *Roller) RollPair() Pair {
	p := RollPair(r.src)
	r.logger.Debug("dice throw",
		zap.Int("first", p.First),
		zap.Int("second", p.Second),
		zap.Int("sum", p.Sum()),
	)
	return p
}

// Intn exposes the underlying Source so a Roller can stand in wherever a
// Source is accepted.
//
// Precondition: n > 0.
func (r *Roller) Intn(n int) int {
	return r.src.Intn(n)
}
