package chatbot

import (
	"slices"

	"github.com/masingita/countrybot/constants"
)

// maxPreviousCountries bounds the list of earlier selections kept in a context
const maxPreviousCountries = 10

// Context is the conversation state carried between messages
type Context struct {
	CurrentStep       constants.ConversationStep `json:"current_step"`
	SelectedCountry   string                     `json:"selected_country,omitempty"`
	DetailedMode      bool                       `json:"detailed_mode"`
	InteractionCount  int                        `json:"interaction_count"`
	LastQuery         string                     `json:"last_query,omitempty"`
	PreviousCountries []string                   `json:"previous_countries,omitempty"`
}

// IncrementInteraction counts one more user message
func (c *Context) IncrementInteraction() {
	c.InteractionCount++
}

// IsFirstInteraction reports whether the message being processed is the
// first one of the conversation
func (c *Context) IsFirstInteraction() bool {
	return c.InteractionCount == 1
}

// UpdateSelectedCountry selects country and remembers the previous selection
func (c *Context) UpdateSelectedCountry(country string) {
	if c.SelectedCountry != "" && c.SelectedCountry != country {
		c.PreviousCountries = slices.DeleteFunc(c.PreviousCountries, func(s string) bool { return s == c.SelectedCountry })
		c.PreviousCountries = append(c.PreviousCountries, c.SelectedCountry)
		if len(c.PreviousCountries) > maxPreviousCountries {
			c.PreviousCountries = c.PreviousCountries[len(c.PreviousCountries)-maxPreviousCountries:]
		}
	}
	c.SelectedCountry = country
}
