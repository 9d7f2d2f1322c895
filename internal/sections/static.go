package sections

import "context"

// Link is a localized call to action.
type Link struct {
	Label string
	Href  string
}

// Hero is the opening banner.
type Hero struct {
	Eyebrow   string
	Title     string
	Subtitle  string
	Primary   Link
	Secondary Link
}

// Feature is one entry of the features grid.
type Feature struct {
	Icon  string
	Title string
	Body  string
}

// Features is the features grid.
type Features struct {
	Title    string
	Subtitle string
	Items    []Feature
}

// featureKeys lists the feature cards in display order.
var featureKeys = []struct {
	icon string
	key  string
}{
	{icon: "compass", key: "features.assessment"},
	{icon: "chart", key: "features.reports"},
	{icon: "users", key: "features.teams"},
	{icon: "spark", key: "features.growth"},
}

// Hero returns the hero copy for the request locale.
func (l *Loader) Hero(ctx context.Context) Hero {
	lang := l.lang(ctx)
	return Hero{
		Eyebrow:   l.tr.T(lang, "hero.eyebrow"),
		Title:     l.tr.T(lang, "hero.title"),
		Subtitle:  l.tr.T(lang, "hero.subtitle"),
		Primary:   Link{Label: l.tr.T(lang, "hero.cta_primary"), Href: "/assessments"},
		Secondary: Link{Label: l.tr.T(lang, "hero.cta_secondary"), Href: "#insights"},
	}
}

// Features returns the features grid for the request locale.
func (l *Loader) Features(ctx context.Context) Features {
	lang := l.lang(ctx)
	items := make([]Feature, 0, len(featureKeys))
	for _, f := range featureKeys {
		items = append(items, Feature{
			Icon:  f.icon,
			Title: l.tr.T(lang, f.key+".title"),
			Body:  l.tr.T(lang, f.key+".body"),
		})
	}
	return Features{
		Title:    l.tr.T(lang, "features.title"),
		Subtitle: l.tr.T(lang, "features.subtitle"),
		Items:    items,
	}
}
