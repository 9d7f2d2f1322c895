package backend

import (
	"encoding/json"
	"strings"
	"time"
)

// BlogPost is a published article teaser.
type BlogPost struct {
	ID            int64
	Title         string
	Slug          string
	Summary       string
	CoverImageURL string
	Author        string
	CreatedAt     time.Time
	PublishedAt   time.Time
}

// Date returns the publication date, falling back to the creation date.
func (p BlogPost) Date() time.Time {
	if !p.PublishedAt.IsZero() {
		return p.PublishedAt
	}
	return p.CreatedAt
}

// PersonalityTest describes one personality assessment.
type PersonalityTest struct {
	ID          int64
	Slug        string
	Title       string
	Tagline     string
	Description string
	ReportName  string
	Highlights  []string
}

// MysteryAssessment describes one mystery-shopper style assessment.
type MysteryAssessment struct {
	ID           int64
	Name         string
	Slug         string
	Summary      string
	PreviewImage string
	CreatedAt    time.Time
}

// Answers maps question identifiers to numeric answers.
type Answers map[string]int

// SubmitResult is the parsed backend reply to an answer submission.
type SubmitResult struct {
	Success bool
	Message string
	Data    json.RawMessage
}

// Health mirrors the backend health endpoint.
type Health struct {
	Status      string
	Database    string
	Environment string
	Timestamp   time.Time
}

// Credentials are forwarded to the backend login endpoints.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResult carries the token issued by the backend.
type LoginResult struct {
	Token    string
	UserID   int64
	Username string
	Role     string
	Message  string
}

type blogPostPayload struct {
	ID            int64  `json:"id"`
	Title         string `json:"title"`
	Slug          string `json:"slug"`
	Excerpt       string `json:"excerpt"`
	Summary       string `json:"summary"`
	CoverImageURL string `json:"cover_image_url"`
	Author        string `json:"author"`
	CreatedAt     string `json:"created_at"`
	PublishedAt   string `json:"published_at"`
}

func (p blogPostPayload) toBlogPost() BlogPost {
	return BlogPost{
		ID:            p.ID,
		Title:         strings.TrimSpace(p.Title),
		Slug:          strings.TrimSpace(p.Slug),
		Summary:       firstNonEmpty(p.Excerpt, p.Summary),
		CoverImageURL: strings.TrimSpace(p.CoverImageURL),
		Author:        strings.TrimSpace(p.Author),
		CreatedAt:     parseTime(p.CreatedAt),
		PublishedAt:   parseTime(p.PublishedAt),
	}
}

type personalityTestPayload struct {
	ID          int64    `json:"id"`
	Slug        string   `json:"slug"`
	Name        string   `json:"name"`
	Title       string   `json:"title"`
	Tagline     string   `json:"tagline"`
	Description string   `json:"description"`
	ReportName  string   `json:"report_name"`
	Highlights  []string `json:"highlights"`
}

func (p personalityTestPayload) toPersonalityTest() PersonalityTest {
	highlights := make([]string, 0, len(p.Highlights))
	for _, h := range p.Highlights {
		if h = strings.TrimSpace(h); h != "" {
			highlights = append(highlights, h)
		}
	}
	return PersonalityTest{
		ID:          p.ID,
		Slug:        strings.TrimSpace(p.Slug),
		Title:       firstNonEmpty(p.Name, p.Title),
		Tagline:     strings.TrimSpace(p.Tagline),
		Description: strings.TrimSpace(p.Description),
		ReportName:  strings.TrimSpace(p.ReportName),
		Highlights:  highlights,
	}
}

type mysteryAssessmentPayload struct {
	ID               int64  `json:"id"`
	Name             string `json:"name"`
	Slug             string `json:"slug"`
	ShortDescription string `json:"short_description"`
	Summary          string `json:"summary"`
	PreviewImage     string `json:"preview_image"`
	CreatedAt        string `json:"created_at"`
}

func (p mysteryAssessmentPayload) toMysteryAssessment() MysteryAssessment {
	return MysteryAssessment{
		ID:           p.ID,
		Name:         strings.TrimSpace(p.Name),
		Slug:         strings.TrimSpace(p.Slug),
		Summary:      firstNonEmpty(p.ShortDescription, p.Summary),
		PreviewImage: strings.TrimSpace(p.PreviewImage),
		CreatedAt:    parseTime(p.CreatedAt),
	}
}

type healthPayload struct {
	Status      string `json:"status"`
	Database    string `json:"database"`
	Environment string `json:"environment"`
	Timestamp   string `json:"timestamp"`
}

type loginPayload struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Token   string `json:"token"`
	User    *struct {
		ID       int64  `json:"id"`
		UserID   int64  `json:"userId"`
		Username string `json:"username"`
		Role     string `json:"role"`
	} `json:"user"`
	Data *struct {
		Token string `json:"token"`
	} `json:"data"`
}

func (p loginPayload) toLoginResult() LoginResult {
	res := LoginResult{Token: strings.TrimSpace(p.Token), Message: strings.TrimSpace(p.Message)}
	if res.Token == "" && p.Data != nil {
		res.Token = strings.TrimSpace(p.Data.Token)
	}
	if p.User != nil {
		res.UserID = p.User.UserID
		if res.UserID == 0 {
			res.UserID = p.User.ID
		}
		res.Username = strings.TrimSpace(p.User.Username)
		res.Role = strings.TrimSpace(p.User.Role)
	}
	return res
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func parseTime(val string) time.Time {
	val = strings.TrimSpace(val)
	if val == "" {
		return time.Time{}
	}
	layouts := []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05.999999", "2006-01-02T15:04:05", "2006-01-02 15:04:05", "2006-01-02"}
	for _, layout := range layouts {
		if ts, err := time.Parse(layout, val); err == nil {
			return ts
		}
	}
	return time.Time{}
}
