// Package sections builds the landing page sections from static copy and backend data.
package sections

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"booteh.app/web/internal/backend"
	"booteh.app/web/internal/cms"
	"booteh.app/web/internal/observability"
)

const (
	// InsightsLimit bounds the blog teaser.
	InsightsLimit = 3
	// AssessmentsLimit bounds each assessment list.
	AssessmentsLimit = 4

	// ErrorKey is the single localized message shown when a section fails to load.
	ErrorKey = "errors.load_failed"
)

// State is the render state of a data-backed section.
type State string

const (
	StateReady State = "ready"
	StateEmpty State = "empty"
	StateError State = "error"
)

// Source is the backend surface the sections read from.
type Source interface {
	BlogPosts(ctx context.Context, limit int) ([]backend.BlogPost, error)
	PersonalityTests(ctx context.Context) ([]backend.PersonalityTest, error)
	MysteryAssessments(ctx context.Context) ([]backend.MysteryAssessment, error)
}

// Translator resolves message keys per language.
type Translator interface {
	T(lang, key string) string
	Fallback() string
}

// Loader assembles sections for one request at a time. It holds no per-request state.
type Loader struct {
	source Source
	tr     Translator
}

// NewLoader returns a Loader reading from source and localizing with tr.
func NewLoader(source Source, tr Translator) *Loader {
	return &Loader{source: source, tr: tr}
}

// Insights is the blog teaser section.
type Insights struct {
	State   State
	Title   string
	Message string
	Posts   []backend.BlogPost
}

// Assessments is the assessment teaser section.
type Assessments struct {
	State       State
	Title       string
	Message     string
	Personality []backend.PersonalityTest
	Mystery     []backend.MysteryAssessment
}

// Landing is the full landing page.
type Landing struct {
	Hero        Hero
	Features    Features
	Insights    Insights
	Assessments Assessments
}

// Landing loads insights and assessments concurrently. The two loads are
// independent: one failing never affects the other.
func (l *Loader) Landing(ctx context.Context) Landing {
	page := Landing{
		Hero:     l.Hero(ctx),
		Features: l.Features(ctx),
	}
	var g errgroup.Group
	g.Go(func() error {
		page.Insights = l.Insights(ctx)
		return nil
	})
	g.Go(func() error {
		page.Assessments = l.Assessments(ctx)
		return nil
	})
	_ = g.Wait()
	return page
}

// Insights fetches the latest posts, bounded to InsightsLimit.
func (l *Loader) Insights(ctx context.Context) Insights {
	lang := l.lang(ctx)
	sec := Insights{Title: l.tr.T(lang, "insights.title")}

	posts, err := l.source.BlogPosts(ctx, InsightsLimit)
	if err != nil {
		l.logFailure(ctx, "insights", err)
		sec.State = StateError
		sec.Message = l.tr.T(lang, ErrorKey)
		return sec
	}
	if len(posts) > InsightsLimit {
		posts = posts[:InsightsLimit]
	}
	if len(posts) == 0 {
		sec.State = StateEmpty
		sec.Message = l.tr.T(lang, "insights.empty")
		return sec
	}
	for i := range posts {
		posts[i].Summary = cms.PlainText(posts[i].Summary)
	}
	sec.State = StateReady
	sec.Posts = posts
	return sec
}

// Assessments fetches both assessment kinds concurrently, each bounded to
// AssessmentsLimit. Any failure fails the whole section.
func (l *Loader) Assessments(ctx context.Context) Assessments {
	lang := l.lang(ctx)
	sec := Assessments{Title: l.tr.T(lang, "assessments.title")}

	var (
		tests   []backend.PersonalityTest
		mystery []backend.MysteryAssessment
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		tests, err = l.source.PersonalityTests(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		mystery, err = l.source.MysteryAssessments(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		l.logFailure(ctx, "assessments", err)
		sec.State = StateError
		sec.Message = l.tr.T(lang, ErrorKey)
		return sec
	}

	if len(tests) > AssessmentsLimit {
		tests = tests[:AssessmentsLimit]
	}
	if len(mystery) > AssessmentsLimit {
		mystery = mystery[:AssessmentsLimit]
	}
	for i := range mystery {
		mystery[i].Summary = cms.PlainText(mystery[i].Summary)
	}
	sec.Personality = tests
	sec.Mystery = mystery
	if len(tests) == 0 && len(mystery) == 0 {
		sec.State = StateEmpty
		sec.Message = l.tr.T(lang, "assessments.empty")
		return sec
	}
	sec.State = StateReady
	return sec
}

func (l *Loader) lang(ctx context.Context) string {
	if lang := backend.LocaleFrom(ctx); lang != "" {
		return lang
	}
	return l.tr.Fallback()
}

func (l *Loader) logFailure(ctx context.Context, section string, err error) {
	observability.FromContext(ctx).Warn("section load failed",
		zap.String("section", section),
		zap.Error(err),
	)
}
