package i18n

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeLocales(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
	return dir
}

func TestResolveHonorsQValues(t *testing.T) {
	b, err := Load("../../locales", "ar", []string{"ar", "en"})
	require.NoError(t, err)
	require.Equal(t, "en", b.Resolve("ar;q=0.8, en;q=0.9"))
	require.Equal(t, "ar", b.Resolve("ar-EG,ar;q=0.9"))
	require.Equal(t, "en", b.Resolve("en-GB"))
	require.Equal(t, "ar", b.Resolve("ja"))
	require.Equal(t, "ar", b.Resolve(""))
}

func TestTranslationFallsBack(t *testing.T) {
	dir := writeLocales(t, map[string]string{
		"ar.json": `{"hero.title":"مرحبا","only.ar":"عربي"}`,
		"en.json": `{"hero.title":"Hello"}`,
	})
	b, err := Load(dir, "ar", []string{"ar", "en"})
	require.NoError(t, err)
	require.Equal(t, "Hello", b.T("en", "hero.title"))
	require.Equal(t, "عربي", b.T("en", "only.ar"))
	require.Equal(t, "missing.key", b.T("en", "missing.key"))
}

func TestLoadRequiresFallbackFile(t *testing.T) {
	dir := writeLocales(t, map[string]string{"en.json": `{}`})
	_, err := Load(dir, "ar", []string{"ar", "en"})
	require.Error(t, err)
}

func TestDirection(t *testing.T) {
	cases := map[string]string{
		"ar": RTL, "fa": RTL, "he": RTL, "ur": RTL,
		"en": LTR, "ja": LTR, "": LTR, "not a tag": LTR,
	}
	for lang, want := range cases {
		require.Equal(t, want, Direction(lang), lang)
	}
}

func TestLocaleFallsBackWhenUnsupported(t *testing.T) {
	b, err := Load("../../locales", "ar", nil)
	require.NoError(t, err)
	require.Equal(t, Locale{Lang: "en", Dir: LTR}, b.Locale("EN"))
	require.Equal(t, Locale{Lang: "ar", Dir: RTL}, b.Locale("de"))
	require.True(t, b.Locale("ar").RTL())
}

func TestShippedLocalesShareKeys(t *testing.T) {
	b, err := Load("../../locales", "ar", []string{"ar", "en"})
	require.NoError(t, err)
	b.mu.RLock()
	defer b.mu.RUnlock()
	for key := range b.dict["ar"] {
		_, ok := b.dict["en"][key]
		require.True(t, ok, "en is missing %q", key)
	}
	for key := range b.dict["en"] {
		_, ok := b.dict["ar"][key]
		require.True(t, ok, "ar is missing %q", key)
	}
}

func TestWatchReloadsChangedFiles(t *testing.T) {
	dir := writeLocales(t, map[string]string{
		"ar.json": `{"greeting":"مرحبا"}`,
		"en.json": `{"greeting":"Hello"}`,
	})
	b, err := Load(dir, "ar", []string{"ar", "en"})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, Watch(ctx, b, nil))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "en.json"), []byte(`{"greeting":"Hi"}`), 0o644))
	require.Eventually(t, func() bool {
		return b.T("en", "greeting") == "Hi"
	}, 5*time.Second, 50*time.Millisecond)
}
