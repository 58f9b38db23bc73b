package frontend

import "github.com/maxence-charriere/go-app/v10/pkg/app"

// Home is the landing page
type Home struct {
	app.Compo
}

func (h *Home) Render() app.UI {
	return app.Main().Class("page home").Body(
		app.H1().Text("Country Chatbot"),
		app.P().Text("Ask about the capital, national animal, national flower, population and area of countries around the world."),
		app.A().Class("button").Href("/chat").Text("Start chatting"),
	)
}

// NotFound is shown for every path the route table does not know
type NotFound struct {
	app.Compo
}

func (n *NotFound) Render() app.UI {
	return app.Main().Class("page not-found").Body(
		app.H1().Text("404"),
		app.P().Text("This page does not exist."),
		app.A().Href("/").Text("Back to the home page"),
	)
}
