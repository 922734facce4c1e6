package certificate

type Certificate struct {
	ID        string `json:"id"`
	UserID    string `json:"userId"`
	CourseID  string `json:"courseId"`
	Number    string `json:"number"`
	IssuedAt  int64  `json:"issuedAt"`
	IsValid   bool   `json:"isValid"`
	RevokedAt *int64 `json:"revokedAt,omitempty"`
}
