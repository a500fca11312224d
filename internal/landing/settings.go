// Package landing renders community landing pages: it loads the normalized
// content of a version from the store, resolves its links and caches the
// resulting tree.
package landing

// Settings carries the application values that link resolvers substitute
// into content.
type Settings struct {
	// Paths maps path ids to application routes.
	Paths map[string]string

	// Colors maps marketplace color ids to color values.
	Colors map[string]string

	// AssetPrefix is prepended to every asset src.
	AssetPrefix string
}

// Defaults used when the configuration does not override them.
const (
	DefaultAssetPrefix  = "landing_page"
	DefaultFontPath     = "/landing_page/fonts"
	DefaultPrimaryColor = "#347F9D"
)

// DefaultSettings returns the built-in paths, colors and asset prefix.
func DefaultSettings() Settings {
	return Settings{
		Paths: map[string]string{
			"search_path": "/search/",
			"signup_path": "/signup",
		},
		Colors: map[string]string{
			"primary_color": DefaultPrimaryColor,
		},
		AssetPrefix: DefaultAssetPrefix,
	}
}
