package models

// Profile is the single owner profile shown on the landing terminal.
type Profile struct {
	ID              int64    `json:"id"`
	Name            string   `json:"name"`
	Role            string   `json:"role"`
	Company         string   `json:"company"`
	Location        string   `json:"location"`
	Email           string   `json:"email"`
	Github          string   `json:"github"`
	Linkedin        string   `json:"linkedin"`
	Leetcode        *string  `json:"leetcode"`
	Phone           *string  `json:"phone"`
	ExperienceYears int      `json:"experienceYears"`
	Specialization  []string `json:"specialization"`
}

type Skill struct {
	ID           int64    `json:"id"`
	Category     string   `json:"category"`
	Technologies []string `json:"technologies"`
}

// Experience.StartDate and EndDate use the "YYYY-MM" form.
type Experience struct {
	ID           int64    `json:"id"`
	Company      string   `json:"company"`
	Role         string   `json:"role"`
	Duration     string   `json:"duration"`
	Location     string   `json:"location"`
	Achievements []string `json:"achievements"`
	Technologies []string `json:"technologies"`
	StartDate    string   `json:"startDate"`
	EndDate      *string  `json:"endDate"`
}

type Project struct {
	ID           int64    `json:"id"`
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	GithubURL    *string  `json:"githubUrl"`
	Technologies []string `json:"technologies"`
	CodePreview  *string  `json:"codePreview"`
	Year         int      `json:"year"`
}

type Metric struct {
	ID          int64   `json:"id"`
	Category    string  `json:"category"`
	Metric      string  `json:"metric"`
	Value       string  `json:"value"`
	Description *string `json:"description"`
}

// Content bundles every static entity seeded at start.
type Content struct {
	Profile     Profile
	Skills      []Skill
	Experiences []Experience
	Projects    []Project
	Metrics     []Metric
}
