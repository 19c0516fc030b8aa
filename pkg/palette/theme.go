package palette

// Style holds the colors a chart is drawn with.
type Style struct {
	Background string
	Text       string
	Accent     string
	Grid       string
}

// Theme names.
const (
	ThemeDark  = "dark"
	ThemeLight = "light"
)

var themes = map[string]Style{
	ThemeDark:  {Background: "#000000", Text: "#ffffff", Accent: "#4ba3ff", Grid: "#444444"},
	ThemeLight: {Background: "#ffffff", Text: "#000000", Accent: "#0066cc", Grid: "#cccccc"},
}

// Theme returns the style registered under name, falling back to the dark
// theme for unknown names.
func Theme(name string) Style {
	if s, ok := themes[name]; ok {
		return s
	}
	return themes[ThemeDark]
}
