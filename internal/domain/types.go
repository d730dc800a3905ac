package domain

import "time"

type CourseStatus string

const (
	StatusDraft     CourseStatus = "draft"
	StatusPublished CourseStatus = "published"
	StatusArchived  CourseStatus = "archived"
)

// ParseCourseStatus maps a raw string onto a known status.
func ParseCourseStatus(raw string) (CourseStatus, bool) {
	switch CourseStatus(raw) {
	case StatusDraft, StatusPublished, StatusArchived:
		return CourseStatus(raw), true
	default:
		return "", false
	}
}

// PreferredCategories is the fixed set used for grouping in listings.
// Category remains free-form on the record itself.
var PreferredCategories = []string{
	"Web Development",
	"Data Science",
	"Design",
	"Marketing",
	"Business",
	"Photography",
}

type Course struct {
	ID           string       `json:"id"`
	OwnerID      string       `json:"ownerId"`
	Title        string       `json:"title"`
	Description  string       `json:"description,omitempty"`
	VideoLink    string       `json:"videoLink,omitempty"`
	ThumbnailURL string       `json:"thumbnailUrl,omitempty"`
	Price        float64      `json:"price"`
	Status       CourseStatus `json:"status"`
	Duration     int          `json:"duration,omitempty"`
	Category     string       `json:"category,omitempty"`
	Tags         []string     `json:"tags,omitempty"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`
}

// Free reports whether the course renders as "Free" (zero or absent price).
func (c Course) Free() bool {
	return c.Price <= 0
}

type Lesson struct {
	ID          string    `json:"id"`
	CourseID    string    `json:"courseId"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	VideoURL    string    `json:"videoUrl,omitempty"`
	Duration    int       `json:"duration,omitempty"`
	Order       int       `json:"order"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Member is the external membership platform identity, referenced not owned.
type Member struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
}
