package frontend

import (
	"strings"

	"github.com/maxence-charriere/go-app/v10/pkg/app"
	"github.com/rs/zerolog/log"
)

// Chat is the conversation page
type Chat struct {
	app.Compo

	client    *apiClient
	messages  []chatMessage
	input     string
	sending   bool
	errorText string
}

func (c *Chat) api() *apiClient {
	if c.client == nil {
		c.client = newBrowserClient()
	}
	return c.client
}

func (c *Chat) OnMount(ctx app.Context) {
	// prerendered pages show the empty conversation
	if app.IsServer {
		return
	}
	client := c.api()
	ctx.Async(func() {
		history, err := client.history(ctx)
		ctx.Dispatch(func(ctx app.Context) {
			if err != nil {
				log.Warn().Err(err).Msg("Failed to load conversation")
				c.errorText = "Could not load the conversation."
				return
			}
			c.messages = history.Messages
		})
	})
}

func (c *Chat) Render() app.UI {
	body := []app.UI{
		app.H1().Text("Country Chatbot"),
		app.Div().Class("messages").Body(c.renderMessages()...),
	}
	if c.errorText != "" {
		body = append(body, app.P().Class("error").Text(c.errorText))
	}
	body = append(body,
		app.Form().Class("composer").OnSubmit(c.onSubmit).Body(
			app.Input().
				Type("text").
				Placeholder("Type a country name, an option letter or \"help\"").
				Value(c.input).
				AutoFocus(true).
				Disabled(c.sending).
				OnInput(c.ValueTo(&c.input)),
			app.Button().Type("submit").Disabled(c.sending).Text("Send"),
			app.Button().Type("button").Class("secondary").OnClick(c.onReset).Text("New conversation"),
		),
		app.A().Href("/").Text("Home"),
	)
	return app.Main().Class("page chat").Body(body...)
}

func (c *Chat) renderMessages() []app.UI {
	if len(c.messages) == 0 {
		return []app.UI{app.P().Class("hint").Text("Say hello to start the conversation.")}
	}
	out := make([]app.UI, len(c.messages))
	for i, m := range c.messages {
		if m.Role == "bot" && m.HTML != "" {
			out[i] = app.Div().Class("message bot").Body(app.Raw(`<div class="content">` + m.HTML + `</div>`))
			continue
		}
		out[i] = app.Div().Class("message " + m.Role).Text(m.Content)
	}
	return out
}

func (c *Chat) onSubmit(ctx app.Context, e app.Event) {
	e.PreventDefault()

	message := strings.TrimSpace(c.input)
	if message == "" || c.sending {
		return
	}
	c.input = ""
	c.sending = true
	c.errorText = ""
	c.messages = append(c.messages, chatMessage{Role: "user", Content: message})

	client := c.api()
	ctx.Async(func() {
		reply, err := client.send(ctx, message)
		ctx.Dispatch(func(ctx app.Context) {
			c.sending = false
			if err != nil {
				log.Warn().Err(err).Msg("Failed to send chat message")
				c.errorText = "The message could not be sent. Please try again."
				return
			}
			c.messages = append(c.messages, chatMessage{Role: "bot", Content: reply.Reply, HTML: reply.ReplyHTML})
		})
	})
}

func (c *Chat) onReset(ctx app.Context, e app.Event) {
	client := c.api()
	ctx.Async(func() {
		err := client.reset(ctx)
		ctx.Dispatch(func(ctx app.Context) {
			if err != nil {
				log.Warn().Err(err).Msg("Failed to reset conversation")
				c.errorText = "Could not start a new conversation."
				return
			}
			c.messages = nil
			c.errorText = ""
		})
	})
}
