package dto

// BreakStartInput là body của POST /attendance/breaks/start
type BreakStartInput struct {
	Reason string `json:"reason" validate:"omitempty,no_xss,max=200"`
}
