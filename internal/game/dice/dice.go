// Package dice provides the randomness abstraction shared by the game engine,
// the question picker, and room code generation.
package dice

import "fmt"

// Sides is the number of faces on every die thrown by the game.
const Sides = 6

// Pair holds the result of one throw of two independent dice.
//
// Invariant: First and Second are in [1, Sides].
type Pair struct {
	First  int
	Second int
}

// Sum returns the combined value of both dice.
func (p Pair) Sum() int {
	return p.First + p.Second
}

// String returns a human-readable audit string in the format:
//
//	"[4 5] = 9"
func (p Pair) String() string {
	return fmt.Sprintf("[%d %d] = %d", p.First, p.Second, p.Sum())
}

// Source is the randomness provider for dice throws and code generation.
//
// Implementations MUST be safe for concurrent use.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
}

// RollPair throws two independent uniform dice using src.
//
// Precondition: src must be non-nil.
// Postcondition: Both values of the returned Pair are in [1, Sides].
func RollPair(src Source) Pair {
	return Pair{
		First:  src.Intn(Sides) + 1,
		Second: src.Intn(Sides) + 1,
	}
}
