package store

import "time"

// Status is the pipeline stage of an application.
type Status string

const (
	StatusApplied     Status = "applied"
	StatusPhoneScreen Status = "phone_screen"
	StatusTechnical   Status = "technical"
	StatusOnsite      Status = "onsite"
	StatusOffer       Status = "offer"
	StatusRejected    Status = "rejected"
)

var statuses = []Status{StatusApplied, StatusPhoneScreen, StatusTechnical, StatusOnsite, StatusOffer, StatusRejected}

func (s Status) Valid() bool {
	for _, v := range statuses {
		if s == v {
			return true
		}
	}
	return false
}

// Statuses lists the known statuses in pipeline order.
func Statuses() []Status {
	return append([]Status(nil), statuses...)
}

type RoundType string

const (
	RoundPhone      RoundType = "phone"
	RoundTechnical  RoundType = "technical"
	RoundBehavioral RoundType = "behavioral"
	RoundOnsite     RoundType = "onsite"
)

func (r RoundType) Valid() bool {
	switch r {
	case RoundPhone, RoundTechnical, RoundBehavioral, RoundOnsite:
		return true
	}
	return false
}

type Outcome string

const (
	OutcomePending Outcome = "pending"
	OutcomePassed  Outcome = "passed"
	OutcomeFailed  Outcome = "failed"
)

func (o Outcome) Valid() bool {
	switch o {
	case OutcomePending, OutcomePassed, OutcomeFailed:
		return true
	}
	return false
}

type SkillType string

const (
	SkillRequired   SkillType = "required"
	SkillPreferred  SkillType = "preferred"
	SkillNiceToHave SkillType = "nice-to-have"
)

func (t SkillType) Valid() bool {
	switch t {
	case SkillRequired, SkillPreferred, SkillNiceToHave:
		return true
	}
	return false
}

// DateLayout is the format of Application.DateApplied.
const DateLayout = "2006-01-02"

type Application struct {
	ID             int64     `json:"id" yaml:"id"`
	CompanyName    string    `json:"company_name" yaml:"company_name"`
	PositionTitle  string    `json:"position_title" yaml:"position_title"`
	JobURL         string    `json:"job_url" yaml:"job_url,omitempty"`
	DateApplied    string    `json:"date_applied" yaml:"date_applied"`
	Status         Status    `json:"status" yaml:"status"`
	SalaryMin      *int64    `json:"salary_min" yaml:"salary_min,omitempty"`
	SalaryMax      *int64    `json:"salary_max" yaml:"salary_max,omitempty"`
	Location       string    `json:"location" yaml:"location,omitempty"`
	JobDescription string    `json:"job_description" yaml:"job_description,omitempty"`
	Notes          string    `json:"notes" yaml:"notes,omitempty"`
	CreatedAt      time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" yaml:"updated_at"`
}

// ApplicationSummary is a list row with related record counts.
type ApplicationSummary struct {
	Application    `yaml:",inline"`
	InterviewCount int64 `json:"interview_count" yaml:"interview_count"`
	SkillsCount    int64 `json:"skills_count" yaml:"skills_count"`
}

// ApplicationDetail is an application with its interviews and skills.
type ApplicationDetail struct {
	Application `yaml:",inline"`
	Interviews  []Interview `json:"interviews" yaml:"interviews"`
	Skills      []Skill     `json:"skills" yaml:"skills"`
}

type Interview struct {
	ID              int64     `json:"id" yaml:"id"`
	ApplicationID   int64     `json:"application_id" yaml:"application_id"`
	InterviewDate   string    `json:"interview_date" yaml:"interview_date,omitempty"`
	RoundType       RoundType `json:"round_type" yaml:"round_type,omitempty"`
	InterviewerName string    `json:"interviewer_name" yaml:"interviewer_name,omitempty"`
	QuestionsAsked  string    `json:"questions_asked" yaml:"questions_asked,omitempty"`
	MyAnswers       string    `json:"my_answers" yaml:"my_answers,omitempty"`
	Outcome         Outcome   `json:"outcome" yaml:"outcome"`
	Notes           string    `json:"notes" yaml:"notes,omitempty"`
	CreatedAt       time.Time `json:"created_at" yaml:"created_at"`
}

type Skill struct {
	ID            int64     `json:"id" yaml:"id"`
	ApplicationID int64     `json:"application_id" yaml:"application_id"`
	SkillName     string    `json:"skill_name" yaml:"skill_name"`
	SkillType     SkillType `json:"skill_type" yaml:"skill_type"`
	CreatedAt     time.Time `json:"created_at" yaml:"created_at"`
}

type StatusCount struct {
	Status Status `json:"status" yaml:"status"`
	Count  int64  `json:"count" yaml:"count"`
}

type SkillCount struct {
	SkillName string `json:"skill_name" yaml:"skill_name"`
	Count     int64  `json:"count" yaml:"count"`
}

// WeekCount counts applications in the Monday-based week starting at Week.
type WeekCount struct {
	Week  string `json:"week" yaml:"week"`
	Count int64  `json:"count" yaml:"count"`
}
