package enums

// DeliveryType labels how the vehicle changes hands for a quote.
type DeliveryType string

const (
	DeliveryTypeDoorToDoor DeliveryType = "door-to-door"
	DeliveryTypeInStore    DeliveryType = "in-store pickup/return"
)

// String implements fmt.Stringer.
func (d DeliveryType) String() string {
	return string(d)
}
