package enums

import "fmt"

// AreaType tells whether a service area governs vehicle pickup or return.
// Values match the upstream directory's integer codes.
type AreaType int

const (
	AreaTypePickup AreaType = 1
	AreaTypeReturn AreaType = 2
)

func (a AreaType) String() string {
	switch a {
	case AreaTypePickup:
		return "pickup"
	case AreaTypeReturn:
		return "return"
	}
	return fmt.Sprintf("area_type(%d)", int(a))
}
