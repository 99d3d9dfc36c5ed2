package dto

// UpdateProfileRequest represents profile update data
type UpdateProfileRequest struct {
	FirstName    string  `json:"firstName" binding:"required,max=50"`
	LastName     string  `json:"lastName" binding:"required,max=50"`
	MobileNumber *string `json:"mobileNumber" binding:"omitempty,mobile"`
}
