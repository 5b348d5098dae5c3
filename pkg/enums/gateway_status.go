package enums

// GatewayStatus mirrors the payment-link gateway's transaction states.
type GatewayStatus string

const (
	GatewayStatusPending    GatewayStatus = "PENDING"
	GatewayStatusProcessing GatewayStatus = "PROCESSING"
	GatewayStatusPaid       GatewayStatus = "PAID"
	GatewayStatusCancelled  GatewayStatus = "CANCELLED"
	GatewayStatusExpired    GatewayStatus = "EXPIRED"
)

// String implements fmt.Stringer.
func (g GatewayStatus) String() string {
	return string(g)
}
