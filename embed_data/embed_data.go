package embed_data

import _ "embed"

//go:embed templates/page.html.tmpl
var PageTemplate string

//go:embed templates/sidebar.html.tmpl
var SidebarTemplate string

//go:embed assets/style.css
var StyleSheet string

//go:embed assets/theme.js
var ThemeScript string

//go:embed assets/sun.svg
var SunIcon string

//go:embed assets/moon.svg
var MoonIcon string
