package api

import (
	"time"

	"github.com/masingita/countrybot/chatbot"
	"github.com/masingita/countrybot/countries"
)

// Version is reported by the info endpoint
var Version = "dev"

var (
	startTime time.Time
	chat      *chatbot.Service
	country   *countries.Service
)

// Init initializes the API package with the services the handlers use
func Init(chatService *chatbot.Service, countryService *countries.Service) {
	startTime = time.Now()
	chat = chatService
	country = countryService
}

// ErrorResponse is a generic error response
type ErrorResponse struct {
	Error string `json:"error"`
}
