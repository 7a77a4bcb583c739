package store

import (
	"context"
	"sort"

	"portfolio/api/models"
)

// MemoryContentStore serves the seeded content. It is read-only after construction.
type MemoryContentStore struct {
	content models.Content
}

// NewMemoryContentStore copies content and applies the display ordering once.
func NewMemoryContentStore(content models.Content) *MemoryContentStore {
	c := models.Content{
		Profile:     content.Profile,
		Skills:      append([]models.Skill(nil), content.Skills...),
		Experiences: append([]models.Experience(nil), content.Experiences...),
		Projects:    append([]models.Project(nil), content.Projects...),
		Metrics:     append([]models.Metric(nil), content.Metrics...),
	}
	sortExperiences(c.Experiences)
	sortProjects(c.Projects)
	return &MemoryContentStore{content: c}
}

func (s *MemoryContentStore) Profile(ctx context.Context) (*models.Profile, error) {
	p := s.content.Profile
	return &p, nil
}

func (s *MemoryContentStore) Skills(ctx context.Context) ([]models.Skill, error) {
	return append([]models.Skill(nil), s.content.Skills...), nil
}

func (s *MemoryContentStore) Experiences(ctx context.Context) ([]models.Experience, error) {
	return append([]models.Experience(nil), s.content.Experiences...), nil
}

func (s *MemoryContentStore) Projects(ctx context.Context) ([]models.Project, error) {
	return append([]models.Project(nil), s.content.Projects...), nil
}

func (s *MemoryContentStore) Metrics(ctx context.Context) ([]models.Metric, error) {
	return append([]models.Metric(nil), s.content.Metrics...), nil
}

// Newest first; "YYYY-MM" sorts lexically.
func sortExperiences(exps []models.Experience) {
	sort.SliceStable(exps, func(i, j int) bool {
		return exps[i].StartDate > exps[j].StartDate
	})
}

func sortProjects(projects []models.Project) {
	sort.SliceStable(projects, func(i, j int) bool {
		return projects[i].Year > projects[j].Year
	})
}
