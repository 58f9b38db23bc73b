package constants

// ConversationStep is the position of a conversation in the rule engine
type ConversationStep string

const (
	StepStart         ConversationStep = ""
	StepSelectCountry ConversationStep = "SELECT_COUNTRY"
	StepChooseOption  ConversationStep = "CHOOSE_OPTION"
	StepExit          ConversationStep = "EXIT"
)

// AllConversationSteps contains all valid step values
var AllConversationSteps = []ConversationStep{StepStart, StepSelectCountry, StepChooseOption, StepExit}

// MessageRole identifies the author of a conversation message
type MessageRole string

const (
	RoleUser MessageRole = "user"
	RoleBot  MessageRole = "bot"
)
