package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"portfolio/api/database"
	"portfolio/api/models"
)

type SQLContentStore struct {
	db      *sql.DB
	dialect database.Dialect
}

// NewSQLContentStore seeds the content tables from content when they are empty.
func NewSQLContentStore(ctx context.Context, client *database.DBClient, content models.Content, logger *slog.Logger) (*SQLContentStore, error) {
	s := &SQLContentStore{db: client.DB, dialect: client.Dialect}

	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM profiles`).Scan(&n); err != nil {
		return nil, unavailable("count profiles", err)
	}
	if n > 0 {
		return s, nil
	}
	if err := s.seed(ctx, content); err != nil {
		return nil, err
	}
	logger.Info("seeded content tables",
		"skills", len(content.Skills),
		"experiences", len(content.Experiences),
		"projects", len(content.Projects),
		"metrics", len(content.Metrics))
	return s, nil
}

func (s *SQLContentStore) seed(ctx context.Context, c models.Content) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return unavailable("begin seed", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	exec := func(query string, args ...any) error {
		if _, err := tx.ExecContext(ctx, s.dialect.Rebind(query), args...); err != nil {
			return unavailable("seed content", err)
		}
		return nil
	}

	spec, err := encodeList(c.Profile.Specialization)
	if err != nil {
		return err
	}
	p := c.Profile
	if err = exec(`INSERT INTO profiles (name, role, company, location, email, github, linkedin, leetcode, phone, experience_years, specialization)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.Name, p.Role, p.Company, p.Location, p.Email, p.Github, p.Linkedin,
		nullString(p.Leetcode), nullString(p.Phone), p.ExperienceYears, spec); err != nil {
		return err
	}

	for _, sk := range c.Skills {
		techs, err := encodeList(sk.Technologies)
		if err != nil {
			return err
		}
		if err = exec(`INSERT INTO skills (category, technologies) VALUES (?, ?)`, sk.Category, techs); err != nil {
			return err
		}
	}

	for _, e := range c.Experiences {
		achievements, err := encodeList(e.Achievements)
		if err != nil {
			return err
		}
		techs, err := encodeList(e.Technologies)
		if err != nil {
			return err
		}
		if err = exec(`INSERT INTO experiences (company, role, duration, location, achievements, technologies, start_date, end_date)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			e.Company, e.Role, e.Duration, e.Location, achievements, techs, e.StartDate, nullString(e.EndDate)); err != nil {
			return err
		}
	}

	for _, pr := range c.Projects {
		techs, err := encodeList(pr.Technologies)
		if err != nil {
			return err
		}
		if err = exec(`INSERT INTO projects (name, description, github_url, technologies, code_preview, year)
			VALUES (?, ?, ?, ?, ?, ?)`,
			pr.Name, pr.Description, nullString(pr.GithubURL), techs, nullString(pr.CodePreview), pr.Year); err != nil {
			return err
		}
	}

	for _, m := range c.Metrics {
		if err = exec(`INSERT INTO metrics (category, metric, value, description) VALUES (?, ?, ?, ?)`,
			m.Category, m.Metric, m.Value, nullString(m.Description)); err != nil {
			return err
		}
	}

	if err = tx.Commit(); err != nil {
		return unavailable("commit seed", err)
	}
	return nil
}

func (s *SQLContentStore) Profile(ctx context.Context) (*models.Profile, error) {
	var (
		p               models.Profile
		leetcode, phone sql.NullString
		specialization  string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, role, company, location, email, github, linkedin, leetcode, phone, experience_years, specialization
		FROM profiles
		ORDER BY id
		LIMIT 1
	`).Scan(&p.ID, &p.Name, &p.Role, &p.Company, &p.Location, &p.Email, &p.Github, &p.Linkedin,
		&leetcode, &phone, &p.ExperienceYears, &specialization)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("profile: %w", ErrNotFound)
		}
		return nil, unavailable("get profile", err)
	}
	p.Leetcode = fromNullString(leetcode)
	p.Phone = fromNullString(phone)
	if p.Specialization, err = decodeList(specialization); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *SQLContentStore) Skills(ctx context.Context) ([]models.Skill, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, category, technologies FROM skills ORDER BY id`)
	if err != nil {
		return nil, unavailable("query skills", err)
	}
	defer rows.Close()

	results := []models.Skill{}
	for rows.Next() {
		var sk models.Skill
		var techs string
		if err := rows.Scan(&sk.ID, &sk.Category, &techs); err != nil {
			return nil, unavailable("scan skill", err)
		}
		if sk.Technologies, err = decodeList(techs); err != nil {
			return nil, err
		}
		results = append(results, sk)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("iterate skills", err)
	}
	return results, nil
}

func (s *SQLContentStore) Experiences(ctx context.Context) ([]models.Experience, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, company, role, duration, location, achievements, technologies, start_date, end_date
		FROM experiences
		ORDER BY start_date DESC, id
	`)
	if err != nil {
		return nil, unavailable("query experiences", err)
	}
	defer rows.Close()

	results := []models.Experience{}
	for rows.Next() {
		var (
			e                   models.Experience
			achievements, techs string
			endDate             sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.Company, &e.Role, &e.Duration, &e.Location, &achievements, &techs, &e.StartDate, &endDate); err != nil {
			return nil, unavailable("scan experience", err)
		}
		e.EndDate = fromNullString(endDate)
		if e.Achievements, err = decodeList(achievements); err != nil {
			return nil, err
		}
		if e.Technologies, err = decodeList(techs); err != nil {
			return nil, err
		}
		results = append(results, e)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("iterate experiences", err)
	}
	return results, nil
}

func (s *SQLContentStore) Projects(ctx context.Context) ([]models.Project, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, description, github_url, technologies, code_preview, year
		FROM projects
		ORDER BY year DESC, id
	`)
	if err != nil {
		return nil, unavailable("query projects", err)
	}
	defer rows.Close()

	results := []models.Project{}
	for rows.Next() {
		var (
			p                  models.Project
			githubURL, preview sql.NullString
			techs              string
		)
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &githubURL, &techs, &preview, &p.Year); err != nil {
			return nil, unavailable("scan project", err)
		}
		p.GithubURL = fromNullString(githubURL)
		p.CodePreview = fromNullString(preview)
		if p.Technologies, err = decodeList(techs); err != nil {
			return nil, err
		}
		results = append(results, p)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("iterate projects", err)
	}
	return results, nil
}

func (s *SQLContentStore) Metrics(ctx context.Context) ([]models.Metric, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, category, metric, value, description FROM metrics ORDER BY id`)
	if err != nil {
		return nil, unavailable("query metrics", err)
	}
	defer rows.Close()

	results := []models.Metric{}
	for rows.Next() {
		var m models.Metric
		var description sql.NullString
		if err := rows.Scan(&m.ID, &m.Category, &m.Metric, &m.Value, &description); err != nil {
			return nil, unavailable("scan metric", err)
		}
		m.Description = fromNullString(description)
		results = append(results, m)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("iterate metrics", err)
	}
	return results, nil
}
