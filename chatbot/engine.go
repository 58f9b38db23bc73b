package chatbot

import (
	"context"
	"fmt"
	"strings"

	"github.com/masingita/countrybot/constants"
	"github.com/masingita/countrybot/metrics"
	"github.com/rs/zerolog/log"
)

const welcomeMessage = "👋 Welcome to the Country Chatbot! I can provide information about countries around the world.\n" +
	"Please enter a country name to get started."

const optionsMessage = `What would you like to know about %s?

A) Capital
B) National Animal
C) National Flower
D) Population and Area
E) All Information
F) Choose another country
G) Exit

You can also toggle detailed mode by typing "detailed" or "simple".
`

const (
	detailedModeMessage = "Detailed mode activated. You'll receive more comprehensive information about countries."
	simpleModeMessage   = "Simple mode activated. You'll receive basic information about countries."
	startOverMessage    = "Let's start over. Please enter a country name."
	errorMessage        = "I encountered an error. Let's try again. Please enter a country name."
	newCountryMessage   = "Please enter a new country name."
	goodbyeMessage      = "Thank you for using the Country Chatbot! Goodbye!"
)

// CountryService is the country data the engine answers from
type CountryService interface {
	WithPrefix(ctx context.Context, prefix string) []string
	Property(ctx context.Context, country, property string) string
	Format(ctx context.Context, country string, detailed bool) string
}

// Engine is the rule based conversation engine
type Engine struct {
	countries CountryService
}

func NewEngine(countries CountryService) *Engine {
	return &Engine{countries: countries}
}

// Process handles one user message, advancing c, and returns the reply
func (e *Engine) Process(ctx context.Context, message string, c *Context) string {
	message = strings.TrimSpace(message)
	c.IncrementInteraction()
	c.LastQuery = message
	metrics.RecordChatMessage(c.CurrentStep)

	switch strings.ToLower(message) {
	case "help":
		return helpMessage(c)
	case "detailed":
		c.DetailedMode = true
		return detailedModeMessage
	case "simple":
		c.DetailedMode = false
		return simpleModeMessage
	}

	if c.IsFirstInteraction() {
		c.CurrentStep = constants.StepSelectCountry
		return welcomeMessage
	}

	var (
		reply string
		err   error
	)
	switch c.CurrentStep {
	case constants.StepSelectCountry:
		reply, err = e.selectCountry(ctx, message, c)
	case constants.StepChooseOption:
		reply, err = e.chooseOption(ctx, message, c)
	default:
		log.Warn().Ctx(ctx).Str("step", string(c.CurrentStep)).Msg("Unexpected conversation step, starting over")
		c.CurrentStep = constants.StepSelectCountry
		return startOverMessage
	}
	if err != nil {
		log.Error().Ctx(ctx).Err(err).Str("step", string(c.CurrentStep)).Msg("Failed to process chat message")
		c.CurrentStep = constants.StepSelectCountry
		return errorMessage
	}
	return reply
}

func (e *Engine) selectCountry(ctx context.Context, message string, c *Context) (string, error) {
	var matches []string
	if message != "" {
		matches = e.countries.WithPrefix(ctx, message)
	}
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("country lookup interrupted: %w", err)
	}

	country := ""
	switch len(matches) {
	case 0:
		return fmt.Sprintf("No country found matching '%s'.\nPlease enter a valid country name.", message), nil
	case 1:
		country = matches[0]
	default:
		for _, m := range matches {
			if strings.EqualFold(m, message) {
				country = m
				break
			}
		}
		if country == "" {
			return fmt.Sprintf("Multiple matches found: %s.\nPlease be more specific.", strings.Join(matches, ", ")), nil
		}
	}

	c.UpdateSelectedCountry(country)
	c.CurrentStep = constants.StepChooseOption
	metrics.RecordCountrySelected()
	return fmt.Sprintf("Selected %s.\n\n%s", country, options(country)), nil
}

func (e *Engine) chooseOption(ctx context.Context, message string, c *Context) (string, error) {
	country := c.SelectedCountry
	if !isOption(message) {
		return "Invalid option. Please select one of the options (A-G).\n\n" + options(country), nil
	}

	option := strings.ToUpper(message)
	metrics.RecordOptionSelected(option)

	var answer string
	switch option {
	case "A":
		answer = fmt.Sprintf("The capital of %s is %s.", country, e.countries.Property(ctx, country, "capital"))
	case "B":
		answer = fmt.Sprintf("The national animal of %s is %s.", country, e.countries.Property(ctx, country, "nationalAnimal"))
	case "C":
		answer = fmt.Sprintf("The national flower of %s is %s.", country, e.countries.Property(ctx, country, "nationalFlower"))
	case "D":
		answer = fmt.Sprintf("Population: %s\nArea: %s",
			e.countries.Property(ctx, country, "population"),
			e.countries.Property(ctx, country, "area"))
	case "E":
		answer = e.countries.Format(ctx, country, c.DetailedMode)
	case "F":
		c.CurrentStep = constants.StepSelectCountry
		return newCountryMessage, nil
	case "G":
		c.CurrentStep = constants.StepExit
		return goodbyeMessage, nil
	}
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("country lookup interrupted: %w", err)
	}

	return answer + "\n\n" + options(country), nil
}

func helpMessage(c *Context) string {
	switch c.CurrentStep {
	case constants.StepSelectCountry:
		return "Please enter the name of a country you'd like to learn about. " +
			"I'll tell you about its capital, national symbols, and more!"
	case constants.StepChooseOption:
		return fmt.Sprintf("Please select an option (A-G) to learn about %s.\n\n%s", c.SelectedCountry, options(c.SelectedCountry))
	default:
		return "I can provide information about countries. Enter a country name to get started."
	}
}

func options(country string) string {
	return fmt.Sprintf(optionsMessage, country)
}

// isOption reports whether s is a single menu letter A-G in either case
func isOption(s string) bool {
	return len(s) == 1 && strings.Contains("ABCDEFGabcdefg", s)
}
