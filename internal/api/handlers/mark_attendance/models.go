package mark_attendance

// MarkAttendanceRequest HTTP request model
type MarkAttendanceRequest struct {
	// Outcome результат посещения: attended, no_show, late или reset
	Outcome string `json:"outcome"`
}
