package record

import "encoding/json"

// Collections owned by the hosted backend. The schema is the backend's;
// only the field names referenced below are relied upon.
const (
	CollectionUsers           = "users"
	CollectionCourses         = "courses"
	CollectionLessons         = "lessons"
	CollectionLessonResources = "lesson_resources"
	CollectionReviews         = "reviews"
	CollectionEnrollments     = "enrollments"
	CollectionSettings        = "settings"
	CollectionSupportTickets  = "support_tickets"
)

// Roles
const (
	RoleStudent    = "student"
	RoleInstructor = "instructor"
	RoleAdmin      = "admin"
)

// Base holds the fields the backend sets on every record.
// Timestamps are kept as the backend's opaque strings.
type Base struct {
	ID             string `json:"id"`
	CollectionID   string `json:"collectionId,omitempty"`
	CollectionName string `json:"collectionName,omitempty"`
	Created        string `json:"created,omitempty"`
	Updated        string `json:"updated,omitempty"`
}

// AccessList normalizes the duck-typed course_access field: depending on the
// record's age it arrives as a single ID, a list of IDs or nothing at all.
// Absent/empty means no access.
type AccessList []string

func (l *AccessList) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*l = nil
		return nil
	}
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		if single == "" {
			*l = nil
		} else {
			*l = AccessList{single}
		}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*l = many
	return nil
}

func (l AccessList) Contains(id string) bool {
	for _, v := range l {
		if v == id {
			return true
		}
	}
	return false
}

type User struct {
	Base
	Name         string     `json:"name"`
	Username     string     `json:"username"`
	Avatar       string     `json:"avatar,omitempty"`
	Role         string     `json:"role"`
	Email        string     `json:"email,omitempty"`
	CourseAccess AccessList `json:"course_access,omitempty"`
	PushToken    string     `json:"pushToken,omitempty"`
}

func (u *User) IsAdmin() bool      { return u.Role == RoleAdmin }
func (u *User) IsInstructor() bool { return u.Role == RoleInstructor }
func (u *User) IsStudent() bool    { return u.Role == RoleStudent }

type Course struct {
	Base
	Title         string   `json:"course_title"`
	Description   string   `json:"description"`
	Thumbnail     string   `json:"thumbnail,omitempty"`
	Instructor    string   `json:"instructor"`
	Duration      string   `json:"duration,omitempty"`
	Level         string   `json:"level,omitempty"`
	Enabled       bool     `json:"enabled"`
	Prerequisites []string `json:"prerequisites,omitempty"`
	Skills        []string `json:"skills,omitempty"`
	Expand        struct {
		Instructor *User `json:"instructor,omitempty"`
	} `json:"expand,omitempty"`
}

type Lesson struct {
	Base
	Title       string   `json:"lessons_title"`
	Description string   `json:"description,omitempty"`
	Course      string   `json:"course"`
	VideoURL    string   `json:"videoUrl"`
	Order       int      `json:"order"`
	Duration    string   `json:"duration,omitempty"`
	Objectives  []string `json:"objectives,omitempty"`
	Expand      struct {
		Course *Course `json:"course,omitempty"`
	} `json:"expand,omitempty"`
}

type LessonResource struct {
	Base
	Lesson      string `json:"lesson"`
	Title       string `json:"resource_title"`
	File        string `json:"resource_file"`
	Type        string `json:"resource_type"` // document | video | exercise | other
	Description string `json:"resource_description,omitempty"`
}

type Review struct {
	Base
	Course  string `json:"course"`
	User    string `json:"user"`
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
	Expand  struct {
		User *User `json:"user,omitempty"`
	} `json:"expand,omitempty"`
}

type Enrollment struct {
	Base
	User             string   `json:"user"`
	Course           string   `json:"course"`
	Progress         int      `json:"progress"`
	CompletedLessons []string `json:"completedLessons,omitempty"`
}

type Settings struct {
	Base
	PrivacyPolicy            string `json:"privacy_policy,omitempty"`
	PrivacyPolicyLastUpdated string `json:"privacy_policy_last_updated,omitempty"`
}

// Support ticket statuses & priorities
const (
	TicketStatusOpen       = "open"
	TicketStatusInProgress = "in_progress"
	TicketStatusResolved   = "resolved"
	TicketStatusClosed     = "closed"
)

type SupportTicket struct {
	Base
	User     string `json:"user"`
	Subject  string `json:"subject"`
	Message  string `json:"message"`
	Priority string `json:"priority"` // low | medium | high | urgent
	Status   string `json:"status"`
	Expand   struct {
		User *User `json:"user,omitempty"`
	} `json:"expand,omitempty"`
}
