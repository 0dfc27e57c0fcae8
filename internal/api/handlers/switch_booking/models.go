package switch_booking

// SwitchBookingRequest HTTP request model
type SwitchBookingRequest struct {
	ToInstanceID string `json:"toInstanceId"`
}
