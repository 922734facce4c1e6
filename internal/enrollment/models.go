package enrollment

const (
	StatusActive  = "active"
	StatusDropped = "dropped"
)

type Enrollment struct {
	ID         string  `json:"id"`
	UserID     string  `json:"userId"`
	CourseID   string  `json:"courseId"`
	Status     string  `json:"status"`
	Progress   float64 `json:"progress"`
	EnrolledAt int64   `json:"enrolledAt"`
	UpdatedAt  int64   `json:"updatedAt"`
}

func (e Enrollment) Active() bool { return e.Status == StatusActive }
