package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolio/api/database"
	"portfolio/api/logs"
	"portfolio/api/models"
)

func TestMemoryContentStore_Ordering(t *testing.T) {
	s := NewMemoryContentStore(DefaultContent())
	ctx := context.Background()

	exps, err := s.Experiences(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, exps)
	for i := 1; i < len(exps); i++ {
		assert.GreaterOrEqual(t, exps[i-1].StartDate, exps[i].StartDate)
	}

	projects, err := s.Projects(ctx)
	require.NoError(t, err)
	for i := 1; i < len(projects); i++ {
		assert.GreaterOrEqual(t, projects[i-1].Year, projects[i].Year)
	}

	profile, err := s.Profile(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Alex Rivera", profile.Name)
}

func TestMemoryContentStore_ReadOnly(t *testing.T) {
	s := NewMemoryContentStore(DefaultContent())
	skills, err := s.Skills(context.Background())
	require.NoError(t, err)
	skills[0].Category = "changed"

	again, err := s.Skills(context.Background())
	require.NoError(t, err)
	assert.NotEqual(t, "changed", again[0].Category)
}

func TestLoadContentFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "content.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"profile": {"name": "Sam", "role": "SRE", "specialization": ["ops"]},
		"skills": [{"id": 1, "category": "Ops", "technologies": ["Linux"]}],
		"projects": [{"id": 2, "name": "p", "description": "d", "technologies": [], "year": 2020}]
	}`), 0o600))

	content, err := LoadContentFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Sam", content.Profile.Name)
	assert.Len(t, content.Skills, 1)
	assert.Len(t, content.Projects, 1)

	require.NoError(t, os.WriteFile(path, []byte(`{"profile": {}}`), 0o600))
	_, err = LoadContentFile(path)
	assert.Error(t, err)

	_, err = LoadContentFile(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}

func TestSQLContentStore_SQLiteSeed(t *testing.T) {
	client, err := database.NewSQLiteDB(":memory:", logs.Discard())
	require.NoError(t, err)
	defer client.Close()

	ctx := context.Background()
	content := DefaultContent()
	s, err := NewSQLContentStore(ctx, client, content, logs.Discard())
	require.NoError(t, err)

	profile, err := s.Profile(ctx)
	require.NoError(t, err)
	assert.Equal(t, content.Profile.Name, profile.Name)
	assert.Equal(t, content.Profile.Specialization, profile.Specialization)
	assert.Equal(t, content.Profile.Leetcode, profile.Leetcode)
	assert.Nil(t, profile.Phone)

	skills, err := s.Skills(ctx)
	require.NoError(t, err)
	require.Len(t, skills, len(content.Skills))
	assert.Equal(t, content.Skills[0].Technologies, skills[0].Technologies)

	exps, err := s.Experiences(ctx)
	require.NoError(t, err)
	require.Len(t, exps, len(content.Experiences))
	assert.Equal(t, "2023-09", exps[0].StartDate)
	assert.Nil(t, exps[0].EndDate)

	projects, err := s.Projects(ctx)
	require.NoError(t, err)
	require.Len(t, projects, len(content.Projects))
	assert.Equal(t, 2024, projects[0].Year)

	metrics, err := s.Metrics(ctx)
	require.NoError(t, err)
	assert.Len(t, metrics, len(content.Metrics))

	// a second construction must not seed twice
	_, err = NewSQLContentStore(ctx, client, content, logs.Discard())
	require.NoError(t, err)
	skills, err = s.Skills(ctx)
	require.NoError(t, err)
	assert.Len(t, skills, len(content.Skills))
}

func TestSQLContentStore_EmptyProfile(t *testing.T) {
	client, err := database.NewSQLiteDB(":memory:", logs.Discard())
	require.NoError(t, err)
	defer client.Close()

	s := &SQLContentStore{db: client.DB, dialect: client.Dialect}
	_, err = s.Profile(context.Background())
	assert.ErrorIs(t, err, ErrNotFound)

	skills, err := s.Skills(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []models.Skill{}, skills)
}
