package book_class

// BookClassRequest HTTP request model
type BookClassRequest struct {
	InstanceID string `json:"instanceId"`
	// MemberID для кого создаётся запись; персонал может записывать других
	MemberID *int64 `json:"memberId,omitempty"`
	// ForceWaitlist принудительная постановка в лист ожидания (только персонал)
	ForceWaitlist bool `json:"forceWaitlist,omitempty"`
}
