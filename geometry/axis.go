package geometry

// Axis selects one of the three coordinate axes.
type Axis uint8

// The three coordinate axes.
const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

// String returns the axis name ("X", "Y" or "Z").
func (a Axis) String() string {
	switch a {
	case AxisX:
		return "X"
	case AxisY:
		return "Y"
	case AxisZ:
		return "Z"
	default:
		return "Unknown"
	}
}
