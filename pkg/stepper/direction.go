package stepper

// Direction selects the sense of rotation. It maps directly to the level of
// the DIR signal: Forward is HIGH, Backward is LOW.
type Direction int

const (
	Forward  Direction = 1
	Backward Direction = -1
)

// Unit returns the signed step increment for the direction (+1 or -1).
func (d Direction) Unit() int {
	return int(d)
}

func (d Direction) String() string {
	switch d {
	case Forward:
		return "forward"
	case Backward:
		return "backward"
	}
	return "unknown"
}
