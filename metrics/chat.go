package metrics

import (
	"github.com/masingita/countrybot/constants"
	"github.com/prometheus/client_golang/prometheus"
)

var chatMessagesHandled = makeCollector(prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: metricPrefix + "chat_messages_handled_count",
	Help: "Total number of chat messages handled, by the step the conversation was in",
}, []string{"step"}))

var chatOptionsSelected = makeCollector(prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: metricPrefix + "chat_options_selected_count",
	Help: "Total number of menu options selected",
}, []string{"option"}))

var chatCountriesSelected = makeCollector(prometheus.NewCounter(prometheus.CounterOpts{
	Name: metricPrefix + "chat_countries_selected_count",
	Help: "Total number of countries selected in conversations",
}))

var conversationsSaved = makeCollector(prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: metricPrefix + "conversations_saved_count",
	Help: "Total number of conversation saves",
}, []string{"status"}))

var conversationsDeleted = makeCollector(prometheus.NewCounter(prometheus.CounterOpts{
	Name: metricPrefix + "conversations_deleted_count",
	Help: "Total number of conversations removed by retention",
}))

var chatRateLimited = makeCollector(prometheus.NewCounter(prometheus.CounterOpts{
	Name: metricPrefix + "chat_rate_limited_count",
	Help: "Total number of chat messages rejected by the rate limiter",
}))

var chatResponseLatency = makeCollector(prometheus.NewHistogram(prometheus.HistogramOpts{
	Name:    metricPrefix + "chat_response_latency_seconds",
	Help:    "Histogram of chat response latencies in seconds",
	Buckets: defaultBuckets,
}))

func init() {
	for _, step := range constants.AllConversationSteps {
		chatMessagesHandled.WithLabelValues(stepLabel(step))
	}
	conversationsSaved.WithLabelValues("success")
	conversationsSaved.WithLabelValues("failure")
}

func stepLabel(step constants.ConversationStep) string {
	if step == constants.StepStart {
		return "START"
	}
	return string(step)
}

// RecordChatMessage records a chat message handled in step
func RecordChatMessage(step constants.ConversationStep) {
	chatMessagesHandled.WithLabelValues(stepLabel(step)).Inc()
}

// RecordOptionSelected records a menu option being chosen
func RecordOptionSelected(option string) {
	chatOptionsSelected.WithLabelValues(option).Inc()
}

// RecordCountrySelected records a country being selected
func RecordCountrySelected() {
	chatCountriesSelected.Inc()
}

// RecordConversationSaved records a conversation save attempt
func RecordConversationSaved(success bool) {
	conversationsSaved.WithLabelValues(statusLabel(success)).Inc()
}

// RecordConversationsDeleted records conversations removed by retention
func RecordConversationsDeleted(count int64) {
	if count > 0 {
		conversationsDeleted.Add(float64(count))
	}
}

// RecordChatRateLimited records a chat message rejected by the rate limiter
func RecordChatRateLimited() {
	chatRateLimited.Inc()
}

// RecordChatResponseLatency records how long producing a reply took
func RecordChatResponseLatency(latencySec float64) {
	if latencySec > 0 {
		chatResponseLatency.Observe(latencySec)
	}
}
