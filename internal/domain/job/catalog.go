package job

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Posting is a catalog job offered when the client does not send its own list.
type Posting struct {
	ID              string `json:"job_id" yaml:"job_id"`
	Title           string `json:"job_title" yaml:"job_title"`
	Company         string `json:"company" yaml:"company"`
	Type            string `json:"job_type" yaml:"job_type"`
	Description     string `json:"description" yaml:"description"`
	Requirements    string `json:"requirements" yaml:"requirements"`
	ExperienceLevel string `json:"experience_level" yaml:"experience_level"`
	Location        string `json:"location" yaml:"location"`
}

// Map renders the posting the way jobs arrive over HTTP.
func (p Posting) Map() map[string]any {
	return map[string]any{
		"job_id":           p.ID,
		"job_title":        p.Title,
		"company":          p.Company,
		"job_type":         p.Type,
		"description":      p.Description,
		"requirements":     p.Requirements,
		"experience_level": p.ExperienceLevel,
		"location":         p.Location,
	}
}

// EmbeddingText is the text embedded for similarity search.
func (p Posting) EmbeddingText() string {
	return strings.TrimSpace(fmt.Sprintf("%s\n%s\n%s", p.Title, p.Description, p.Requirements))
}

type Catalog struct {
	postings []Posting
}

func NewCatalog(postings []Posting) *Catalog {
	return &Catalog{postings: postings}
}

func (c *Catalog) All() []Posting {
	return append([]Posting(nil), c.postings...)
}

func (c *Catalog) Len() int { return len(c.postings) }

// Page returns a 1-based page of postings.
func (c *Catalog) Page(page, pageSize int) []Posting {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}
	from := (page - 1) * pageSize
	if from >= len(c.postings) {
		return []Posting{}
	}
	to := min(from+pageSize, len(c.postings))
	return append([]Posting(nil), c.postings[from:to]...)
}

func (c *Catalog) Maps() []map[string]any {
	jobs := make([]map[string]any, 0, len(c.postings))
	for _, p := range c.postings {
		jobs = append(jobs, p.Map())
	}
	return jobs
}

// LoadCatalogFile reads a YAML list of postings. An empty path returns the
// built-in catalog.
func LoadCatalogFile(path string) (*Catalog, error) {
	if strings.TrimSpace(path) == "" {
		return NewCatalog(DefaultPostings()), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read job catalog: %w", err)
	}

	var postings []Posting
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&postings); err != nil {
		return nil, fmt.Errorf("parse job catalog: %w", err)
	}

	for i, p := range postings {
		if strings.TrimSpace(p.ID) == "" {
			return nil, fmt.Errorf("job catalog entry %d: job_id is required", i)
		}
		if strings.TrimSpace(p.Title) == "" {
			return nil, fmt.Errorf("job catalog entry %d: job_title is required", i)
		}
	}
	return NewCatalog(postings), nil
}

func DefaultPostings() []Posting {
	return []Posting{
		{
			ID:              "1",
			Title:           "Full Stack Developer",
			Company:         "TechCorp Tunisia",
			Type:            "Stage d'été",
			Description:     "Develop and maintain web applications using modern technologies",
			Requirements:    "JavaScript, React, Node.js, Python, SQL, Git",
			ExperienceLevel: "Junior",
			Location:        "Tunis, Tunisia",
		},
		{
			ID:              "2",
			Title:           "Data Scientist",
			Company:         "DataTech Solutions",
			Type:            "PFE",
			Description:     "Analyze large datasets and build predictive models",
			Requirements:    "Python, Machine Learning, SQL, Statistics, Pandas, Scikit-learn",
			ExperienceLevel: "Entry Level",
			Location:        "Tunis, Tunisia",
		},
		{
			ID:              "3",
			Title:           "DevOps Engineer",
			Company:         "CloudTech",
			Type:            "Stage d'été",
			Description:     "Manage infrastructure and deployment pipelines",
			Requirements:    "Docker, Kubernetes, AWS, Linux, CI/CD, Python, Bash",
			ExperienceLevel: "Junior",
			Location:        "Sfax, Tunisia",
		},
		{
			ID:              "4",
			Title:           "Mobile App Developer",
			Company:         "MobileTech",
			Type:            "PFE",
			Description:     "Develop native and cross-platform mobile applications",
			Requirements:    "React Native, Flutter, iOS, Android, JavaScript, Dart",
			ExperienceLevel: "Entry Level",
			Location:        "Tunis, Tunisia",
		},
		{
			ID:              "5",
			Title:           "Cybersecurity Analyst",
			Company:         "SecureTech",
			Type:            "Stage d'été",
			Description:     "Monitor and protect systems against security threats",
			Requirements:    "Network Security, Penetration Testing, Python, Linux, SIEM",
			ExperienceLevel: "Junior",
			Location:        "Tunis, Tunisia",
		},
	}
}
