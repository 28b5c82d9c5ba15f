// ABOUTME: Loads the operator profile, projects and skills from a YAML file
// ABOUTME: Records without an id get a stable one derived from their name
package outreach

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/harperreed/outreach/models"
	"gopkg.in/yaml.v3"
)

type portfolioFile struct {
	Profile  *models.Profile    `yaml:"profile"`
	Projects []portfolioProject `yaml:"projects"`
	Skills   []portfolioSkill   `yaml:"skills"`
}

type portfolioProject struct {
	ID               string   `yaml:"id"`
	Title            string   `yaml:"title"`
	ShortDescription string   `yaml:"short_description"`
	Technologies     []string `yaml:"technologies"`
	Status           string   `yaml:"status"`
	Featured         bool     `yaml:"featured"`
	Order            int      `yaml:"order"`
}

type portfolioSkill struct {
	ID       string `yaml:"id"`
	Name     string `yaml:"name"`
	Featured bool   `yaml:"featured"`
	Order    int    `yaml:"order"`
}

// PortfolioSummary counts what LoadPortfolio wrote.
type PortfolioSummary struct {
	Profile  bool `json:"profile"`
	Projects int  `json:"projects"`
	Skills   int  `json:"skills"`
}

// LoadPortfolio reads a portfolio YAML document and upserts its contents.
// Loading the same file twice leaves the store unchanged.
func (s *Service) LoadPortfolio(ctx context.Context, r io.Reader) (*PortfolioSummary, error) {
	var file portfolioFile
	if err := yaml.NewDecoder(r).Decode(&file); err != nil && err != io.EOF {
		return nil, BadRequest("Invalid portfolio file: %v", err)
	}

	summary := &PortfolioSummary{}
	if file.Profile != nil {
		if err := validateProfile(file.Profile); err != nil {
			return nil, err
		}
		if err := s.store.SaveProfile(ctx, file.Profile); err != nil {
			return nil, err
		}
		summary.Profile = true
	}

	for i, p := range file.Projects {
		project, err := p.toModel()
		if err != nil {
			return nil, BadRequest("project %d: %v", i+1, err)
		}
		if err := s.store.UpsertProject(ctx, project); err != nil {
			return nil, fmt.Errorf("failed to save project %q: %w", project.Title, err)
		}
		summary.Projects++
	}

	for i, sk := range file.Skills {
		skill, err := sk.toModel()
		if err != nil {
			return nil, BadRequest("skill %d: %v", i+1, err)
		}
		if err := s.store.UpsertSkill(ctx, skill); err != nil {
			return nil, fmt.Errorf("failed to save skill %q: %w", skill.Name, err)
		}
		summary.Skills++
	}

	s.logger.Info("portfolio loaded", "profile", summary.Profile, "projects", summary.Projects, "skills", summary.Skills)
	return summary, nil
}

func validateProfile(p *models.Profile) error {
	p.FullName = strings.TrimSpace(p.FullName)
	p.DefaultTone = strings.TrimSpace(p.DefaultTone)
	if p.FullName == "" {
		return BadRequest("profile full_name is required")
	}
	if p.DefaultTone != "" && !models.IsValidTone(p.DefaultTone) {
		return BadRequest("Invalid default_tone. Must be one of: %s", strings.Join(models.Tones, ", "))
	}
	if p.DefaultFollowUpGapDays != 0 && (p.DefaultFollowUpGapDays < 1 || p.DefaultFollowUpGapDays > 30) {
		return BadRequest("default_follow_up_gap_days must be between 1 and 30")
	}
	if p.MaxFollowUps < 0 || p.MaxFollowUps > models.FollowUpCountCeiling {
		return BadRequest("max_follow_ups must be between 0 and %d", models.FollowUpCountCeiling)
	}
	return nil
}

func (p portfolioProject) toModel() (*models.Project, error) {
	title := strings.TrimSpace(p.Title)
	if title == "" {
		return nil, fmt.Errorf("title is required")
	}
	id, err := stableID("project", p.ID, title)
	if err != nil {
		return nil, err
	}
	status := strings.TrimSpace(p.Status)
	if status == "" {
		status = models.ProjectStatusPublished
	}
	if status != models.ProjectStatusPublished && status != models.ProjectStatusDraft {
		return nil, fmt.Errorf("invalid status %q", status)
	}
	return &models.Project{
		ID:               id,
		Title:            title,
		ShortDescription: strings.TrimSpace(p.ShortDescription),
		Technologies:     models.NewTagList(p.Technologies),
		Status:           status,
		Featured:         p.Featured,
		SortOrder:        p.Order,
	}, nil
}

func (sk portfolioSkill) toModel() (*models.Skill, error) {
	name := strings.TrimSpace(sk.Name)
	if name == "" {
		return nil, fmt.Errorf("name is required")
	}
	id, err := stableID("skill", sk.ID, name)
	if err != nil {
		return nil, err
	}
	return &models.Skill{ID: id, Name: name, Featured: sk.Featured, SortOrder: sk.Order}, nil
}

func stableID(kind, raw, name string) (uuid.UUID, error) {
	raw = strings.TrimSpace(raw)
	if raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return uuid.Nil, fmt.Errorf("invalid id %q", raw)
		}
		return id, nil
	}
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte("outreach/"+kind+"/"+models.NormalizeKey(name))), nil
}
