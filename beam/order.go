package beam

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrBeamNotInteger is returned when a beam token cannot be read as a
// diffraction order.
var ErrBeamNotInteger = errors.New("beam is not an integer order")

// axeLetterOrders maps the aXe beam letters to diffraction orders.
var axeLetterOrders = map[string]int{
	"A": 1,
	"B": 0,
	"C": 2,
	"D": 3,
	"E": -1,
	"F": -2,
}

// Order converts a beam token to its integer diffraction order. Signed
// integers ("+1", "-1", "2") are parsed directly; the aXe letters A-F map to
// +1, 0, +2, +3, -1, -2.
func Order(token string) (int, error) {
	if n, err := strconv.Atoi(token); err == nil {
		return n, nil
	}
	if n, ok := axeLetterOrders[token]; ok {
		return n, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrBeamNotInteger, token)
}

// Orders converts every beam name of b, in order.
func (b *Beams) Orders() ([]int, error) {
	out := make([]int, 0, len(b.names))
	for _, name := range b.names {
		n, err := Order(name)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}
