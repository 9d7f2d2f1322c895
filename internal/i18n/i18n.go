// Package i18n loads flat JSON translation tables and resolves locales.
package i18n

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"golang.org/x/text/language"
)

// Text directions rendered into the document's dir attribute.
const (
	RTL = "rtl"
	LTR = "ltr"
)

// Locale is the explicit per-request language and direction.
type Locale struct {
	Lang string
	Dir  string
}

// RTL reports whether the locale reads right to left.
func (l Locale) RTL() bool { return l.Dir == RTL }

// Bundle holds translation tables per supported language.
type Bundle struct {
	mu        sync.RWMutex
	dir       string
	dict      map[string]map[string]string
	fallback  string
	supported []string
	matcher   language.Matcher
}

// Load reads <dir>/<lang>.json for every supported language. Only the
// fallback file is mandatory.
func Load(dir string, fallback string, supported []string) (*Bundle, error) {
	fallback = strings.ToLower(strings.TrimSpace(fallback))
	if fallback == "" {
		fallback = "ar"
	}
	if len(supported) == 0 {
		supported = []string{"ar", "en"}
	}
	langs := []string{fallback}
	for _, l := range supported {
		l = strings.ToLower(strings.TrimSpace(l))
		if l != "" && l != fallback {
			langs = append(langs, l)
		}
	}
	tags := make([]language.Tag, 0, len(langs))
	for _, l := range langs {
		tag, err := language.Parse(l)
		if err != nil {
			return nil, fmt.Errorf("parse locale %s: %w", l, err)
		}
		tags = append(tags, tag)
	}
	b := &Bundle{
		dir:       dir,
		fallback:  fallback,
		supported: langs,
		matcher:   language.NewMatcher(tags),
	}
	if err := b.Reload(); err != nil {
		return nil, err
	}
	return b, nil
}

// Reload re-reads every locale file from disk and swaps the tables in.
func (b *Bundle) Reload() error {
	dict := make(map[string]map[string]string, len(b.supported))
	for _, l := range b.supported {
		raw, err := os.ReadFile(filepath.Join(b.dir, l+".json"))
		if err != nil {
			if l == b.fallback {
				return fmt.Errorf("load locale %s: %w", l, err)
			}
			continue
		}
		var m map[string]string
		if err := json.Unmarshal(raw, &m); err != nil {
			return fmt.Errorf("unmarshal %s: %w", l, err)
		}
		dict[l] = m
	}
	b.mu.Lock()
	b.dict = dict
	b.mu.Unlock()
	return nil
}

// Dir returns the directory locale files are read from.
func (b *Bundle) Dir() string { return b.dir }

// Supported returns the supported languages, sorted.
func (b *Bundle) Supported() []string {
	out := append([]string(nil), b.supported...)
	sort.Strings(out)
	return out
}

// Fallback returns the configured fallback language.
func (b *Bundle) Fallback() string { return b.fallback }

// IsSupported reports whether lang has a table.
func (b *Bundle) IsSupported(lang string) bool {
	lang = strings.ToLower(strings.TrimSpace(lang))
	for _, l := range b.supported {
		if l == lang {
			return true
		}
	}
	return false
}

// Locale returns the Locale for lang, or the fallback when unsupported.
func (b *Bundle) Locale(lang string) Locale {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if !b.IsSupported(lang) {
		lang = b.fallback
	}
	return Locale{Lang: lang, Dir: Direction(lang)}
}

// T returns translation for key in lang, falling back to default and finally key.
func (b *Bundle) T(lang, key string) string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if lang != "" {
		if m, ok := b.dict[lang]; ok {
			if v, ok := m[key]; ok {
				return v
			}
		}
	}
	if m, ok := b.dict[b.fallback]; ok {
		if v, ok := m[key]; ok {
			return v
		}
	}
	return key
}

// Resolve chooses the best supported language from an Accept-Language header.
func (b *Bundle) Resolve(acceptLang string) string {
	tags, _, err := language.ParseAcceptLanguage(acceptLang)
	if err != nil || len(tags) == 0 {
		return b.fallback
	}
	_, index, confidence := b.matcher.Match(tags...)
	if confidence == language.No || index < 0 || index >= len(b.supported) {
		return b.fallback
	}
	return b.supported[index]
}

var rtlScripts = map[string]struct{}{
	"Arab": {}, "Hebr": {}, "Thaa": {}, "Syrc": {}, "Nkoo": {}, "Adlm": {}, "Rohg": {},
}

// Direction returns rtl for languages written in a right-to-left script.
func Direction(lang string) string {
	tag, err := language.Parse(strings.TrimSpace(lang))
	if err != nil {
		return LTR
	}
	script, _ := tag.Script()
	if _, ok := rtlScripts[script.String()]; ok {
		return RTL
	}
	return LTR
}
