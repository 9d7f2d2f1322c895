package seo

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewMetaAlternates(t *testing.T) {
	m := NewMeta("https://booteh.app/", "/about", "ar", "About", "Who we are", []string{"ar", "en"})
	require.Equal(t, "https://booteh.app/about", m.Canonical)
	require.Equal(t, "ar_AR", m.OG.Locale)
	require.Equal(t, []Alternate{
		{Href: "https://booteh.app/about?hl=ar", Hreflang: "ar"},
		{Href: "https://booteh.app/about?hl=en", Hreflang: "en"},
		{Href: "https://booteh.app/about", Hreflang: "x-default"},
	}, m.Alternates)
}

func TestItemListJSON(t *testing.T) {
	out := JSON(ItemList([]map[string]any{Article("Soft skills", "", "", "Sara", "2024-03-02")}))
	require.JSONEq(t, `{"@context":"https://schema.org","@type":"ItemList","itemListElement":[{"@type":"ListItem","position":1,"item":{"@context":"https://schema.org","@type":"Article","headline":"Soft skills","author":{"@type":"Person","name":"Sara"},"datePublished":"2024-03-02"}}]}`, out)
}
