package store

import (
	"encoding/json"
	"fmt"
	"os"

	"portfolio/api/models"
)

// LoadContentFile reads a content fixture in the JSON shape served by the API.
func LoadContentFile(path string) (models.Content, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return models.Content{}, fmt.Errorf("failed to read content file: %w", err)
	}
	var fixture struct {
		Profile     models.Profile      `json:"profile"`
		Skills      []models.Skill      `json:"skills"`
		Experiences []models.Experience `json:"experiences"`
		Projects    []models.Project    `json:"projects"`
		Metrics     []models.Metric     `json:"metrics"`
	}
	if err := json.Unmarshal(raw, &fixture); err != nil {
		return models.Content{}, fmt.Errorf("failed to parse content file %s: %w", path, err)
	}
	if fixture.Profile.Name == "" {
		return models.Content{}, fmt.Errorf("content file %s has no profile name", path)
	}
	return models.Content{
		Profile:     fixture.Profile,
		Skills:      fixture.Skills,
		Experiences: fixture.Experiences,
		Projects:    fixture.Projects,
		Metrics:     fixture.Metrics,
	}, nil
}

func ptr[T any](v T) *T { return &v }

// DefaultContent is the fixture used when no content file is configured.
func DefaultContent() models.Content {
	return models.Content{
		Profile: models.Profile{
			ID:              1,
			Name:            "Alex Rivera",
			Role:            "Software Engineer II",
			Company:         "Northwind Systems",
			Location:        "Lisbon, Portugal",
			Email:           "alex@example.dev",
			Github:          "github.com/alexrivera-dev",
			Linkedin:        "linkedin.com/in/alexrivera-dev",
			Leetcode:        ptr("leetcode.com/u/alexrivera-dev/"),
			Phone:           nil,
			ExperienceYears: 4,
			Specialization:  []string{"Backend Development", "API Design", "Cloud Services", "System Design"},
		},
		Skills: []models.Skill{
			{ID: 2, Category: "Backend Development", Technologies: []string{"Go", "Python", "gRPC", "RESTful APIs", "System Design", "SQL", "Microservices"}},
			{ID: 3, Category: "Database & Cloud", Technologies: []string{"PostgreSQL", "ClickHouse", "Redis", "Kafka", "AWS (EC2, S3)", "Kubernetes"}},
			{ID: 4, Category: "Observability & DevOps", Technologies: []string{"Prometheus", "OpenTelemetry", "Docker", "CI/CD", "Terraform", "Git"}},
		},
		Experiences: []models.Experience{
			{
				ID:       5,
				Company:  "Northwind Systems",
				Role:     "Software Engineer II",
				Duration: "Sept 2023 - Present",
				Location: "Lisbon, Portugal",
				Achievements: []string{
					"Built a test-analytics API on PostgreSQL that cut debugging time by 40%",
					"Moved a search-heavy service from Elasticsearch to PostgreSQL, removing 97 seconds of tail latency",
					"Designed CI/CD pipelines with automated testing, reducing deployment time by 60%",
				},
				Technologies: []string{"Go", "PostgreSQL", "RESTful APIs", "Database design"},
				StartDate:    "2023-09",
			},
			{
				ID:       6,
				Company:  "Contoso Cloud",
				Role:     "Associate Software Engineer",
				Duration: "Dec 2021 - Feb 2023",
				Location: "Porto, Portugal",
				Achievements: []string{
					"Engineered failover-aware REST APIs keeping critical services at 98.9% uptime",
					"Improved API response time by 45% under peak load via query tuning and caching",
				},
				Technologies: []string{"Python", "Linux", "RESTful APIs", "Scripting", "Git"},
				StartDate:    "2021-12",
				EndDate:      ptr("2023-02"),
			},
			{
				ID:       7,
				Company:  "Contoso Cloud",
				Role:     "Intern - Cloud Reliability",
				Duration: "Mar 2021 - Nov 2021",
				Location: "Porto, Portugal",
				Achievements: []string{
					"Automated build verification that caught 15+ critical issues before release",
				},
				Technologies: []string{"Python", "Linux tools", "Scripting"},
				StartDate:    "2021-03",
				EndDate:      ptr("2021-11"),
			},
		},
		Projects: []models.Project{
			{
				ID:           8,
				Name:         "Natural Language Query Bot",
				Description:  "A chat bot that turns natural language questions into SQL against a SQLite database.",
				GithubURL:    ptr("https://github.com/alexrivera-dev/nlq-bot"),
				Technologies: []string{"Go", "SQLite", "Docker"},
				Year:         2022,
				CodePreview: ptr(`func handleQuery(ctx context.Context, q string) (string, error) {
	stmt, err := translate(ctx, q)
	if err != nil {
		return "", err
	}
	return run(ctx, stmt)
}`),
			},
			{
				ID:           9,
				Name:         "Terminal Portfolio",
				Description:  "This site: a terminal-themed portfolio with a live activity feed over SSE and WebSocket.",
				GithubURL:    ptr("https://github.com/alexrivera-dev/portfolio"),
				Technologies: []string{"Go", "Gin", "WebSocket", "SSE"},
				Year:         2024,
			},
		},
		Metrics: []models.Metric{
			{ID: 10, Category: "performance", Metric: "latency_reduction", Value: "97 seconds", Description: ptr("Latency reduction achieved through optimization")},
			{ID: 11, Category: "performance", Metric: "deployment_efficiency", Value: "60%", Description: ptr("Deployment time reduction")},
			{ID: 12, Category: "performance", Metric: "uptime_achievement", Value: "98.9%", Description: ptr("Critical service availability")},
			{ID: 13, Category: "performance", Metric: "api_optimization", Value: "45%", Description: ptr("API response time improvement")},
			{ID: 14, Category: "impact", Metric: "bugs_prevented", Value: "15+", Description: ptr("Critical issues identified before production")},
		},
	}
}
