package members

// ===== Requests =====

type CreateMemberRequest struct {
	Name         string  `json:"name" binding:"required"`
	MemberNumber string  `json:"member_number" binding:"required"`
	Phone        *string `json:"phone,omitempty"`
}

// ===== Responses =====

type MemberResponse struct {
	MemberID     int64   `json:"id"`
	Name         string  `json:"name"`
	MemberNumber string  `json:"member_number"`
	Phone        *string `json:"phone,omitempty"`
}
