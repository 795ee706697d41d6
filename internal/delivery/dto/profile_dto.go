package dto

// UpdateProfileRequest is read from a multipart form; the optional image is
// passed to the usecase separately.
type UpdateProfileRequest struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	DOB     string `json:"dob"`
	Gender  string `json:"gender"`
	Address string `json:"address"` // JSON object {"line1": "...", "line2": "..."}
}
