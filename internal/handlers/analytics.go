package handlers

// Analytics holds client instrumentation configuration surfaced to templates.
type Analytics struct {
	PlausibleDomain string // e.g. booteh.app
	Debug           bool
}

// Enabled reports whether any analytics snippet should render.
func (a Analytics) Enabled() bool { return a.PlausibleDomain != "" }
