package frontend

import "github.com/maxence-charriere/go-app/v10/pkg/app"

// Options configures the page shell served for every route
type Options struct {
	Title       string
	Description string
	Version     string
}

// Handler builds the go-app handler serving the page shell and the wasm
// resources from the web directory
func Handler(opts Options) *app.Handler {
	if opts.Title == "" {
		opts.Title = "Country Chatbot"
	}
	if opts.Description == "" {
		opts.Description = "Ask about the capitals, national symbols and facts of countries around the world"
	}
	return &app.Handler{
		Name:            "countrybot",
		ShortName:       "countrybot",
		Title:           opts.Title,
		Description:     opts.Description,
		Lang:            "en",
		Version:         opts.Version,
		BackgroundColor: "#ffffff",
		ThemeColor:      "#1d4ed8",
		Styles:          []string{"/web/styles.css"},
	}
}
