package models

import "time"

// CourseVisibility controls who can see a course at all
type CourseVisibility string

const (
	CourseVisibilityPublic   CourseVisibility = "public"
	CourseVisibilityInternal CourseVisibility = "internal"
)

// AccessType classifies how a user obtained access to a course
type AccessType string

const (
	AccessTypeFree      AccessType = "free"
	AccessTypePurchased AccessType = "purchased"
	AccessTypeGranted   AccessType = "granted"
)

// Course represents a sellable course in the catalog
type Course struct {
	ID               int              `json:"id"`
	Slug             string           `json:"slug"`
	Title            string           `json:"title"`
	Description      string           `json:"description"`
	ShortDescription string           `json:"shortDescription,omitempty"`
	ImageURL         string           `json:"imageUrl,omitempty"`
	Visibility       CourseVisibility `json:"visibility"`
	Price            int              `json:"price"` // cents, 0 = free
	StripePriceID    string           `json:"stripePriceId,omitempty"`
	IsActive         bool             `json:"isActive"`
	SortOrder        int              `json:"sortOrder"`
	CreatedAt        time.Time        `json:"createdAt,omitempty"`
	UpdatedAt        time.Time        `json:"updatedAt,omitempty"`
}

// UserCourseAccess is a stored access grant for a paid or internal course
type UserCourseAccess struct {
	ID              int        `json:"id"`
	UserID          string     `json:"userId"`
	CourseID        int        `json:"courseId"`
	AccessType      AccessType `json:"accessType"`
	StripeSessionID string     `json:"stripeSessionId,omitempty"`
	CreatedAt       time.Time  `json:"createdAt,omitempty"`
}

// CourseListItem represents a course in catalog list responses
type CourseListItem struct {
	ID               int              `json:"id"`
	Slug             string           `json:"slug"`
	Title            string           `json:"title"`
	ShortDescription string           `json:"shortDescription,omitempty"`
	ImageURL         string           `json:"imageUrl,omitempty"`
	Visibility       CourseVisibility `json:"visibility"`
	Price            int              `json:"price"`
	ModuleCount      int              `json:"moduleCount"`
	LessonCount      int              `json:"lessonCount"`
	Enrolled         bool             `json:"enrolled"`
}

// CourseDetailResponse represents a course with its sections for the learner view
type CourseDetailResponse struct {
	Course     Course          `json:"course"`
	Sections   []Section       `json:"sections"`
	Modules    []ModuleSummary `json:"modules"`
	FullAccess bool            `json:"fullAccess"`
}

// ModuleSummary is a module card on the course detail page
type ModuleSummary struct {
	ID            int    `json:"id"`
	Title         string `json:"title"`
	Section       string `json:"section"`
	Description   string `json:"description"`
	Tier          Tier   `json:"tier"`
	LessonCount   int    `json:"lessonCount"`
	QuestionCount int    `json:"questionCount"`
	Locked        bool   `json:"locked"`
	Completed     bool   `json:"completed"`
}

// CreateCourseRequest represents a request to create a course
type CreateCourseRequest struct {
	Slug             string           `json:"slug" validate:"required"`
	Title            string           `json:"title" validate:"required"`
	Description      string           `json:"description" validate:"required"`
	ShortDescription string           `json:"shortDescription"`
	ImageURL         string           `json:"imageUrl"`
	Visibility       CourseVisibility `json:"visibility" validate:"omitempty,oneof=public internal"`
	Price            int              `json:"price" validate:"gte=0"`
	StripePriceID    string           `json:"stripePriceId"`
	SortOrder        int              `json:"sortOrder"`
}

// UpdateCourseRequest represents a request to update a course (partial update)
type UpdateCourseRequest struct {
	Slug             string           `json:"slug,omitempty"`
	Title            string           `json:"title,omitempty"`
	Description      string           `json:"description,omitempty"`
	ShortDescription string           `json:"shortDescription,omitempty"`
	ImageURL         string           `json:"imageUrl,omitempty"`
	Visibility       CourseVisibility `json:"visibility,omitempty" validate:"omitempty,oneof=public internal"`
	Price            *int             `json:"price,omitempty" validate:"omitempty,gte=0"`
	StripePriceID    string           `json:"stripePriceId,omitempty"`
	IsActive         *bool            `json:"isActive,omitempty"`
	SortOrder        *int             `json:"sortOrder,omitempty"`
}

// CheckoutRequest asks for a payment session for a paid course
type CheckoutRequest struct {
	CourseID int `json:"courseId" validate:"required"`
}

// CheckoutResponse carries the payment redirect URL
type CheckoutResponse struct {
	URL string `json:"url"`
}
