// ABOUTME: Tests for the dialogue controller.
// ABOUTME: Covers onboarding, Q&A chunking, the escalation offer, support relay, and operator routing.

package dialogue

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1e0cf/globustelecom-bot/internal/claims"
	"github.com/1e0cf/globustelecom-bot/internal/escalation"
	"github.com/1e0cf/globustelecom-bot/internal/session"
	"github.com/1e0cf/globustelecom-bot/internal/users"
)

const testOperatorChat int64 = -100500

type sentText struct {
	userID int64
	text   string
}

type sentAffordance struct {
	userID     int64
	text       string
	affordance string
}

// fakeTransport records every outbound effect for assertions.
type fakeTransport struct {
	mu        sync.Mutex
	texts     []sentText
	keyboards []sentAffordance
	relays    []*escalation.RelayEnvelope
	cleared   []MessageRef
	failRelay bool
}

func (f *fakeTransport) SendText(_ context.Context, userID int64, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.texts = append(f.texts, sentText{userID, text})
	return nil
}

func (f *fakeTransport) SendTextWithAffordance(_ context.Context, userID int64, text, affordanceID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.keyboards = append(f.keyboards, sentAffordance{userID, text, affordanceID})
	return nil
}

func (f *fakeTransport) SendToOperatorChannel(_ context.Context, env *escalation.RelayEnvelope) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failRelay {
		return errors.New("operator channel unreachable")
	}
	f.relays = append(f.relays, env)
	return nil
}

func (f *fakeTransport) ClearAffordance(_ context.Context, ref MessageRef) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cleared = append(f.cleared, ref)
	return nil
}

// fakeAnswerer returns a canned answer, or empty when failing.
type fakeAnswerer struct {
	answer   string
	fail     bool
	lastLang string
}

func (f *fakeAnswerer) Answer(_ context.Context, _, languageCode string) string {
	f.lastLang = languageCode
	if f.fail {
		return ""
	}
	return f.answer
}

type fixture struct {
	controller *Controller
	tracker    *session.Tracker
	transport  *fakeTransport
	answerer   *fakeAnswerer
	languages  *users.MockStore
}

func newFixture(t *testing.T, configured bool) *fixture {
	t.Helper()

	tracker := session.NewTracker()
	store := claims.NewMemoryStore()
	t.Cleanup(func() { _ = store.Close() })

	router := escalation.NewRouter(tracker, store, 15*time.Minute, 3, configured, nil)
	transport := &fakeTransport{}
	answerer := &fakeAnswerer{answer: "here is your answer"}
	languages := users.NewMockStore()

	operatorChat := testOperatorChat
	if !configured {
		operatorChat = 0
	}

	return &fixture{
		controller: NewController(tracker, router, answerer, languages, transport, operatorChat, 4000, nil),
		tracker:    tracker,
		transport:  transport,
		answerer:   answerer,
		languages:  languages,
	}
}

func (fx *fixture) onboard(t *testing.T, userID int64, lang string) {
	t.Helper()
	ctx := context.Background()
	fx.controller.HandleStart(ctx, StartSession{UserID: userID, Username: "alice", ClientLocale: "en"})
	fx.controller.HandleLanguageSelected(ctx, LanguageSelected{UserID: userID, LanguageCode: lang})
	fx.transport.texts = nil
	fx.transport.keyboards = nil
	fx.transport.cleared = nil
}

func TestController_Start_SendsLanguageKeyboard(t *testing.T) {
	fx := newFixture(t, true)

	fx.controller.HandleStart(context.Background(), StartSession{UserID: 1, Username: "alice", ClientLocale: "ru"})

	require.Len(t, fx.transport.keyboards, 1)
	assert.Equal(t, AffordanceLanguageChoice, fx.transport.keyboards[0].affordance)
	assert.Equal(t, "Пожалуйста, выберите язык:", fx.transport.keyboards[0].text)

	s, ok := fx.tracker.Current(1)
	require.True(t, ok)
	assert.Equal(t, session.StageChoosingLanguage, s.Stage)
	assert.Equal(t, 0, s.MessagesSinceStart)
}

func TestController_Start_ResetsExistingSession(t *testing.T) {
	fx := newFixture(t, true)
	fx.onboard(t, 1, "en")

	fx.controller.HandleQuestion(context.Background(), QuestionAsked{UserID: 1, Text: "q"})

	fx.controller.HandleStart(context.Background(), StartSession{UserID: 1, Username: "alice"})

	s, _ := fx.tracker.Current(1)
	assert.Equal(t, session.StageChoosingLanguage, s.Stage)
	assert.Equal(t, 0, s.MessagesSinceStart)
}

func TestController_LanguageSelected(t *testing.T) {
	fx := newFixture(t, true)
	ctx := context.Background()

	fx.controller.HandleStart(ctx, StartSession{UserID: 1, Username: "alice"})
	fx.controller.HandleLanguageSelected(ctx, LanguageSelected{
		UserID:       1,
		LanguageCode: "pt",
		Ref:          MessageRef{ChatID: 1, MessageID: 10},
	})

	// Persisted for future sessions
	lang, err := fx.languages.GetLanguage(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "pt", lang)

	// Keyboard cleared, localized prompt sent
	require.Len(t, fx.transport.cleared, 1)
	assert.Equal(t, 10, fx.transport.cleared[0].MessageID)
	require.Len(t, fx.transport.texts, 1)
	assert.Equal(t, "Ótimo! Agora envie sua pergunta.", fx.transport.texts[0].text)
}

func TestController_LanguageSelected_DuplicateClickDropped(t *testing.T) {
	fx := newFixture(t, true)
	fx.onboard(t, 1, "en")

	fx.controller.HandleLanguageSelected(context.Background(), LanguageSelected{UserID: 1, LanguageCode: "fr"})

	// Dropped silently: no reply, language unchanged
	assert.Empty(t, fx.transport.texts)
	assert.Equal(t, "en", fx.tracker.Language(1, ""))
}

func TestController_Question_AnswerDelivered(t *testing.T) {
	fx := newFixture(t, true)
	fx.onboard(t, 1, "en")

	fx.controller.HandleQuestion(context.Background(), QuestionAsked{UserID: 1, Text: "how do I top up?"})

	require.Len(t, fx.transport.texts, 1)
	assert.Equal(t, "here is your answer", fx.transport.texts[0].text)
	assert.Equal(t, "en", fx.answerer.lastLang)
}

func TestController_Question_OfferExactlyOnThirdTurn(t *testing.T) {
	fx := newFixture(t, true)
	fx.onboard(t, 1, "es")
	ctx := context.Background()

	for turn := 1; turn <= 5; turn++ {
		fx.transport.texts = nil
		fx.transport.keyboards = nil

		fx.controller.HandleQuestion(ctx, QuestionAsked{UserID: 1, Text: "pregunta"})

		if turn == 3 {
			assert.Empty(t, fx.transport.texts, "turn 3 reply should carry the offer")
			require.Len(t, fx.transport.keyboards, 1, "turn %d", turn)
			kb := fx.transport.keyboards[0]
			assert.Equal(t, AffordanceContactSupport, kb.affordance)
			assert.Contains(t, kb.text, "here is your answer")
			assert.Contains(t, kb.text, "equipo de soporte", "offer must be in Spanish")
		} else {
			assert.Empty(t, fx.transport.keyboards, "turn %d must not offer", turn)
			require.Len(t, fx.transport.texts, 1)
		}
	}
}

func TestController_Question_FailedAnswerDoesNotAdvanceOfferCounter(t *testing.T) {
	fx := newFixture(t, true)
	fx.onboard(t, 1, "en")
	ctx := context.Background()

	// Two successful turns
	fx.controller.HandleQuestion(ctx, QuestionAsked{UserID: 1, Text: "q1"})
	fx.controller.HandleQuestion(ctx, QuestionAsked{UserID: 1, Text: "q2"})

	// A failed one: apology, no counter movement
	fx.answerer.fail = true
	fx.transport.texts = nil
	fx.controller.HandleQuestion(ctx, QuestionAsked{UserID: 1, Text: "q3"})

	require.Len(t, fx.transport.texts, 1)
	assert.Contains(t, fx.transport.texts[0].text, "Sorry, I couldn't generate an answer")
	s, _ := fx.tracker.Current(1)
	assert.Equal(t, 2, s.MessagesSinceStart)
	assert.Equal(t, session.StageAskingQuestion, s.Stage)

	// The next successful turn is the third: offer appears now
	fx.answerer.fail = false
	fx.transport.keyboards = nil
	fx.controller.HandleQuestion(ctx, QuestionAsked{UserID: 1, Text: "q4"})
	require.Len(t, fx.transport.keyboards, 1)
	assert.Equal(t, AffordanceContactSupport, fx.transport.keyboards[0].affordance)
}

func TestController_Question_LongAnswerChunked(t *testing.T) {
	fx := newFixture(t, true)
	fx.onboard(t, 1, "en")

	fx.answerer.answer = strings.Repeat("a", 9500)
	fx.controller.HandleQuestion(context.Background(), QuestionAsked{UserID: 1, Text: "q"})

	require.Len(t, fx.transport.texts, 3)
	assert.Len(t, fx.transport.texts[0].text, 4000)
	assert.Len(t, fx.transport.texts[1].text, 4000)
	assert.Len(t, fx.transport.texts[2].text, 1500)
}

func TestController_Question_OfferAppendedToLastChunkOnly(t *testing.T) {
	fx := newFixture(t, true)
	fx.onboard(t, 1, "en")
	ctx := context.Background()

	fx.controller.HandleQuestion(ctx, QuestionAsked{UserID: 1, Text: "q1"})
	fx.controller.HandleQuestion(ctx, QuestionAsked{UserID: 1, Text: "q2"})

	fx.answerer.answer = strings.Repeat("b", 8000)
	fx.transport.texts = nil
	fx.controller.HandleQuestion(ctx, QuestionAsked{UserID: 1, Text: "q3"})

	// First chunk plain, second chunk carries the offer
	require.Len(t, fx.transport.texts, 1)
	assert.NotContains(t, fx.transport.texts[0].text, "support")
	require.Len(t, fx.transport.keyboards, 1)
	assert.Equal(t, AffordanceContactSupport, fx.transport.keyboards[0].affordance)
}

func TestController_Question_UsesClientLocaleWithoutStoredLanguage(t *testing.T) {
	fx := newFixture(t, true)
	ctx := context.Background()

	// Session in Q&A without a chosen language (restored mid-flight)
	fx.tracker.Start(1)
	require.NoError(t, fx.tracker.ChooseLanguage(1, ""))

	fx.controller.HandleQuestion(ctx, QuestionAsked{UserID: 1, Text: "q", ClientLocale: "de"})
	assert.Equal(t, "de", fx.answerer.lastLang)

	// Persisted preference beats the client locale
	require.NoError(t, fx.languages.SetLanguage(ctx, 1, "ko"))
	fx.controller.HandleQuestion(ctx, QuestionAsked{UserID: 1, Text: "q", ClientLocale: "de"})
	assert.Equal(t, "ko", fx.answerer.lastLang)
}

func TestController_EscalationRequested(t *testing.T) {
	fx := newFixture(t, true)
	fx.onboard(t, 1, "fr")

	fx.controller.HandleEscalationRequested(context.Background(), EscalationRequested{UserID: 1})

	s, _ := fx.tracker.Current(1)
	assert.Equal(t, session.StageAwaitingSupportQuestion, s.Stage)
	require.Len(t, fx.transport.texts, 1)
	assert.Equal(t, "Veuillez écrire maintenant votre question pour l'équipe d'assistance.", fx.transport.texts[0].text)
}

func TestController_EscalationRequested_NotConfigured(t *testing.T) {
	fx := newFixture(t, false)
	fx.onboard(t, 1, "en")

	fx.controller.HandleEscalationRequested(context.Background(), EscalationRequested{UserID: 1})

	// Degrades to a notice; session stays in Q&A
	require.Len(t, fx.transport.texts, 1)
	assert.Contains(t, fx.transport.texts[0].text, "not available")
	s, _ := fx.tracker.Current(1)
	assert.Equal(t, session.StageAskingQuestion, s.Stage)
}

func TestController_SupportQuestion_Relayed(t *testing.T) {
	fx := newFixture(t, true)
	fx.onboard(t, 42, "en")
	ctx := context.Background()

	fx.controller.HandleEscalationRequested(ctx, EscalationRequested{UserID: 42})
	fx.transport.texts = nil

	fx.controller.HandleSupportQuestion(ctx, SupportQuestionSubmitted{
		UserID:   42,
		Username: "alice",
		Text:     "my esim won't activate",
	})

	require.Len(t, fx.transport.relays, 1)
	env := fx.transport.relays[0]
	assert.Equal(t, int64(42), env.TargetUserID)
	assert.Equal(t, "alice", env.DisplayName)
	assert.Equal(t, "my esim won't activate", env.Question)

	// User acknowledged, session back in Q&A
	require.Len(t, fx.transport.texts, 1)
	assert.Contains(t, fx.transport.texts[0].text, "forwarded")
	s, _ := fx.tracker.Current(42)
	assert.Equal(t, session.StageAskingQuestion, s.Stage)
}

func TestController_SupportQuestion_DeliveryFailureStillReturnsToQA(t *testing.T) {
	fx := newFixture(t, true)
	fx.onboard(t, 1, "en")
	ctx := context.Background()

	fx.controller.HandleEscalationRequested(ctx, EscalationRequested{UserID: 1})
	fx.transport.failRelay = true

	fx.controller.HandleSupportQuestion(ctx, SupportQuestionSubmitted{UserID: 1, Username: "alice", Text: "help"})

	s, _ := fx.tracker.Current(1)
	assert.Equal(t, session.StageAskingQuestion, s.Stage)
}

func TestController_UserMessage_DispatchesByStage(t *testing.T) {
	fx := newFixture(t, true)
	ctx := context.Background()

	// No session: dropped
	fx.controller.HandleUserMessage(ctx, 1, "alice", "hello", "en")
	assert.Empty(t, fx.transport.texts)

	// Choosing language: dropped
	fx.controller.HandleStart(ctx, StartSession{UserID: 1, Username: "alice"})
	fx.controller.HandleUserMessage(ctx, 1, "alice", "hello", "en")
	assert.Empty(t, fx.transport.texts)

	// Q&A: answered
	require.NoError(t, fx.tracker.ChooseLanguage(1, "en"))
	fx.controller.HandleUserMessage(ctx, 1, "alice", "how?", "en")
	require.Len(t, fx.transport.texts, 1)
	assert.Equal(t, "here is your answer", fx.transport.texts[0].text)

	// Awaiting support: relayed
	fx.controller.HandleEscalationRequested(ctx, EscalationRequested{UserID: 1})
	fx.controller.HandleUserMessage(ctx, 1, "alice", "need a human", "en")
	require.Len(t, fx.transport.relays, 1)
	assert.Equal(t, "need a human", fx.transport.relays[0].Question)
}

func TestController_OperatorClaimAndReply(t *testing.T) {
	fx := newFixture(t, true)
	ctx := context.Background()

	fx.controller.HandleOperatorClaim(ctx, OperatorClaimedReply{
		OperatorID:   100,
		TargetUserID: 1,
		OriginChatID: testOperatorChat,
		Ref:          MessageRef{ChatID: testOperatorChat, MessageID: 7},
	})

	// Reply button cleared after claim
	require.Len(t, fx.transport.cleared, 1)

	fx.controller.HandleOperatorMessage(ctx, OperatorChannelMessage{
		OperatorID:   100,
		Text:         "try restarting",
		OriginChatID: testOperatorChat,
	})

	// Exactly one verbatim delivery, no operator identity attached
	require.Len(t, fx.transport.texts, 1)
	assert.Equal(t, sentText{userID: 1, text: "try restarting"}, fx.transport.texts[0])

	// A repeat message no longer routes
	fx.controller.HandleOperatorMessage(ctx, OperatorChannelMessage{
		OperatorID:   100,
		Text:         "anything else?",
		OriginChatID: testOperatorChat,
	})
	assert.Len(t, fx.transport.texts, 1)
}

func TestController_OperatorClaim_OutsideChannelIgnored(t *testing.T) {
	fx := newFixture(t, true)
	ctx := context.Background()

	fx.controller.HandleOperatorClaim(ctx, OperatorClaimedReply{
		OperatorID:   100,
		TargetUserID: 1,
		OriginChatID: 777, // not the operator channel
	})

	fx.controller.HandleOperatorMessage(ctx, OperatorChannelMessage{
		OperatorID:   100,
		Text:         "leaked?",
		OriginChatID: testOperatorChat,
	})

	// No claim was stored, so nothing routed
	assert.Empty(t, fx.transport.texts)
}

func TestController_OperatorMessage_OutsideChannelIgnored(t *testing.T) {
	fx := newFixture(t, true)
	ctx := context.Background()

	fx.controller.HandleOperatorClaim(ctx, OperatorClaimedReply{
		OperatorID:   100,
		TargetUserID: 1,
		OriginChatID: testOperatorChat,
	})

	fx.controller.HandleOperatorMessage(ctx, OperatorChannelMessage{
		OperatorID:   100,
		Text:         "private chatter",
		OriginChatID: 777,
	})

	// The claim survives; nothing was delivered
	assert.Empty(t, fx.transport.texts)
}

func TestController_OperatorChatter_WithoutClaimIgnored(t *testing.T) {
	fx := newFixture(t, true)

	fx.controller.HandleOperatorMessage(context.Background(), OperatorChannelMessage{
		OperatorID:   100,
		Text:         "good morning team",
		OriginChatID: testOperatorChat,
	})

	assert.Empty(t, fx.transport.texts)
}

// End-to-end scenario: Spanish onboarding, three answers, escalation, relay,
// claim, and operator reply.
func TestController_SupportScenario(t *testing.T) {
	fx := newFixture(t, true)
	ctx := context.Background()

	fx.controller.HandleStart(ctx, StartSession{UserID: 42, Username: "anna", ClientLocale: "es"})
	fx.controller.HandleLanguageSelected(ctx, LanguageSelected{UserID: 42, LanguageCode: "es"})

	fx.transport.texts = nil
	fx.transport.keyboards = nil
	for i := 0; i < 3; i++ {
		fx.controller.HandleUserMessage(ctx, 42, "anna", "¿cómo activo mi esim?", "es")
	}

	// Third reply carries the Spanish offer with the contact-support affordance
	require.Len(t, fx.transport.keyboards, 1)
	assert.Equal(t, AffordanceContactSupport, fx.transport.keyboards[0].affordance)
	assert.Contains(t, fx.transport.keyboards[0].text, "equipo de soporte")

	fx.controller.HandleEscalationRequested(ctx, EscalationRequested{UserID: 42})
	fx.controller.HandleUserMessage(ctx, 42, "anna", "my esim won't activate", "es")

	require.Len(t, fx.transport.relays, 1)
	env := fx.transport.relays[0]
	assert.Equal(t, "anna", env.DisplayName)
	assert.Equal(t, "my esim won't activate", env.Question)
	assert.Equal(t, int64(42), env.TargetUserID)

	s, _ := fx.tracker.Current(42)
	assert.Equal(t, session.StageAskingQuestion, s.Stage)

	// Operator claims and replies
	fx.controller.HandleOperatorClaim(ctx, OperatorClaimedReply{
		OperatorID:   100,
		TargetUserID: env.TargetUserID,
		OriginChatID: testOperatorChat,
	})
	fx.transport.texts = nil
	fx.controller.HandleOperatorMessage(ctx, OperatorChannelMessage{
		OperatorID:   100,
		Text:         "try restarting",
		OriginChatID: testOperatorChat,
	})

	require.Len(t, fx.transport.texts, 1)
	assert.Equal(t, sentText{userID: 42, text: "try restarting"}, fx.transport.texts[0])
}

func TestChunkText(t *testing.T) {
	tests := []struct {
		name string
		text string
		size int
		want []string
	}{
		{
			name: "short text single chunk",
			text: "hello",
			size: 10,
			want: []string{"hello"},
		},
		{
			name: "exact boundary",
			text: "aabb",
			size: 2,
			want: []string{"aa", "bb"},
		},
		{
			name: "uneven split",
			text: "aabbc",
			size: 2,
			want: []string{"aa", "bb", "c"},
		},
		{
			name: "multibyte runes stay intact",
			text: "привет",
			size: 4,
			want: []string{"прив", "ет"},
		},
		{
			name: "degenerate size",
			text: "abc",
			size: 0,
			want: []string{"abc"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, chunkText(tt.text, tt.size))
		})
	}
}
