// ABOUTME: Inbound event types the dialogue controller accepts.
// ABOUTME: Transport-agnostic shapes; the Telegram frontend maps updates onto these.

package dialogue

// MessageRef identifies a previously sent message so its affordance can be
// cleared (e.g. removing a keyboard after a button press).
type MessageRef struct {
	ChatID    int64
	MessageID int
}

// StartSession is emitted when a user begins (or restarts) a conversation.
type StartSession struct {
	UserID       int64
	Username     string
	ClientLocale string
}

// LanguageSelected is emitted when the user picks a language during onboarding.
type LanguageSelected struct {
	UserID       int64
	LanguageCode string
	Ref          MessageRef
}

// QuestionAsked is emitted for a plain user message in the Q&A stage.
type QuestionAsked struct {
	UserID       int64
	Text         string
	ClientLocale string
}

// EscalationRequested is emitted when the user activates the contact-support
// affordance.
type EscalationRequested struct {
	UserID       int64
	ClientLocale string
}

// SupportQuestionSubmitted is emitted for the user's message while awaiting
// a support question.
type SupportQuestionSubmitted struct {
	UserID       int64
	Username     string
	Text         string
	ClientLocale string
}

// OperatorClaimedReply is emitted when an operator activates the reply
// affordance on a relayed support question.
type OperatorClaimedReply struct {
	OperatorID   int64
	TargetUserID int64
	OriginChatID int64
	Ref          MessageRef
}

// OperatorChannelMessage is emitted for a plain message in the operator channel.
type OperatorChannelMessage struct {
	OperatorID   int64
	Text         string
	OriginChatID int64
}
