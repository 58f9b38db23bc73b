// Command web is the browser side of countrybot, compiled to
// web/app.wasm with GOARCH=wasm GOOS=js.
package main

import (
	"github.com/masingita/countrybot/frontend"
	"github.com/masingita/countrybot/routes"
	"github.com/maxence-charriere/go-app/v10/pkg/app"
)

func main() {
	frontend.Register(routes.Default())
	app.RunWhenOnBrowser()
}
