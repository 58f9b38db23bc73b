package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/masingita/countrybot/chatbot"
	"github.com/masingita/countrybot/constants"
	"github.com/masingita/countrybot/render"
	"github.com/rs/zerolog/log"
)

// ChatRequest is the body of POST /api/chat
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatResponse is the bot reply with the resulting conversation state
type ChatResponse struct {
	Reply            string                     `json:"reply"`
	ReplyHTML        string                     `json:"reply_html"`
	Step             constants.ConversationStep `json:"step"`
	SelectedCountry  string                     `json:"selected_country,omitempty"`
	DetailedMode     bool                       `json:"detailed_mode"`
	InteractionCount int                        `json:"interaction_count"`
}

// MessageResponse is one message of a conversation
type MessageResponse struct {
	Role      constants.MessageRole `json:"role"`
	Content   string                `json:"content"`
	HTML      string                `json:"html,omitempty"`
	Timestamp string                `json:"timestamp"`
}

// ConversationResponse is a conversation as shown to its owner
type ConversationResponse struct {
	SessionID   string            `json:"session_id"`
	Messages    []MessageResponse `json:"messages"`
	Context     chatbot.Context   `json:"context"`
	CreatedAt   string            `json:"created_at,omitempty"`
	LastUpdated string            `json:"last_updated,omitempty"`
}

// ChatHandler runs one message through the conversation of the session
// POST /api/chat
func ChatHandler(c *gin.Context) {
	ctx := c.Request.Context()

	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body"})
		return
	}

	reply, err := chat.Respond(ctx, chatbot.Request{
		SessionID: SessionID(c),
		UserID:    VisitorID(c),
		UserAgent: c.Request.UserAgent(),
		IPAddress: c.ClientIP(),
		Message:   req.Message,
	})
	if errors.Is(err, chatbot.ErrEmptyMessage) {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Message is required"})
		return
	}
	if err != nil {
		log.Error().Ctx(ctx).Err(err).Msg("Failed to respond to chat message")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to process message"})
		return
	}

	c.JSON(http.StatusOK, ChatResponse{
		Reply:            reply.Text,
		ReplyHTML:        reply.HTML,
		Step:             reply.Context.CurrentStep,
		SelectedCountry:  reply.Context.SelectedCountry,
		DetailedMode:     reply.Context.DetailedMode,
		InteractionCount: reply.Context.InteractionCount,
	})
}

// HistoryHandler returns the conversation of the current session, empty when
// nothing has been said yet
// GET /api/chat/history
func HistoryHandler(c *gin.Context) {
	ctx := c.Request.Context()
	sessionID := SessionID(c)

	conversation, err := chat.History(ctx, sessionID)
	if errors.Is(err, chatbot.ErrConversationNotFound) {
		c.JSON(http.StatusOK, ConversationResponse{SessionID: sessionID, Messages: []MessageResponse{}})
		return
	}
	if err != nil {
		log.Error().Ctx(ctx).Err(err).Msg("Failed to fetch chat history")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to fetch history"})
		return
	}

	c.JSON(http.StatusOK, newConversationResponse(conversation))
}

// LatestHandler returns the visitor's most recently updated conversation
// GET /api/chat/latest
func LatestHandler(c *gin.Context) {
	ctx := c.Request.Context()

	conversation, err := chat.Latest(ctx, VisitorID(c))
	if errors.Is(err, chatbot.ErrConversationNotFound) {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "No conversation found"})
		return
	}
	if err != nil {
		log.Error().Ctx(ctx).Err(err).Msg("Failed to fetch latest conversation")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to fetch conversation"})
		return
	}

	c.JSON(http.StatusOK, newConversationResponse(conversation))
}

// ResetHandler starts a new conversation by issuing a new session cookie.
// The previous conversation stays stored for the visitor.
// POST /api/chat/reset
func ResetHandler(c *gin.Context) {
	previous := SessionID(c)
	sessionID := startSession(c)
	log.Info().Ctx(c.Request.Context()).Str("previous_session_id", previous).Str("new_session_id", sessionID).Msg("Chat session reset")

	c.JSON(http.StatusOK, ConversationResponse{SessionID: sessionID, Messages: []MessageResponse{}})
}

func newConversationResponse(conversation *chatbot.Conversation) ConversationResponse {
	messages := make([]MessageResponse, len(conversation.Messages))
	for i, m := range conversation.Messages {
		messages[i] = MessageResponse{
			Role:      m.Role,
			Content:   m.Content,
			Timestamp: m.Timestamp.UTC().Format(time.RFC3339),
		}
		if m.Role == constants.RoleBot {
			messages[i].HTML = render.MarkdownToHTML(m.Content)
		}
	}
	return ConversationResponse{
		SessionID:   conversation.SessionID,
		Messages:    messages,
		Context:     conversation.Context,
		CreatedAt:   formatTime(conversation.CreatedAt),
		LastUpdated: formatTime(conversation.LastUpdated),
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
