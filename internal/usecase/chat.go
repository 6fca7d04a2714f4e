package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"trip-quote-agent/internal/conversation"
	"trip-quote-agent/internal/dates"
	"trip-quote-agent/internal/domain"
	"trip-quote-agent/internal/passengers"
	"trip-quote-agent/internal/places"
	"trip-quote-agent/internal/quote"
)

const defaultMaxMessageLen = 1000

// SessionStore persists conversation state and the pending quote per key.
type SessionStore interface {
	Load(ctx context.Context, key string) (domain.Session, error)
	SaveState(ctx context.Context, key string, state domain.ConversationState) error
	SavePending(ctx context.Context, key string, pending domain.PendingQuote) error
	DeletePending(ctx context.Context, key string) error
	Clear(ctx context.Context, key string) error
}

// Reply is the outcome of one turn. QuoteURL is set only when a link was
// produced; it is also embedded in Text.
type Reply struct {
	Text     string
	State    domain.ConversationState
	QuoteURL string
}

// ChatService runs the slot-filling conversation for every session key.
type ChatService struct {
	store    SessionStore
	places   *places.Resolver
	dates    *dates.Extractor
	builder  *quote.Builder
	agent    *Agent
	locks    *keyedMutex
	logger   *slog.Logger
	now      func() time.Time
	maxMsgLn int
}

type ChatOption func(*ChatService)

func WithAgent(a *Agent) ChatOption {
	return func(s *ChatService) {
		s.agent = a
	}
}

func WithLogger(l *slog.Logger) ChatOption {
	return func(s *ChatService) {
		if l != nil {
			s.logger = l
		}
	}
}

func WithMaxMessageLength(n int) ChatOption {
	return func(s *ChatService) {
		if n > 0 {
			s.maxMsgLn = n
		}
	}
}

func WithNow(now func() time.Time) ChatOption {
	return func(s *ChatService) {
		s.now = now
	}
}

func NewChatService(store SessionStore, resolver *places.Resolver, extractor *dates.Extractor, builder *quote.Builder, opts ...ChatOption) (*ChatService, error) {
	if store == nil {
		return nil, errors.New("usecase: session store must not be nil")
	}
	if resolver == nil || extractor == nil || builder == nil {
		return nil, errors.New("usecase: resolver, date extractor and builder are required")
	}
	s := &ChatService{
		store:    store,
		places:   resolver,
		dates:    extractor,
		builder:  builder,
		locks:    newKeyedMutex(),
		logger:   slog.Default(),
		now:      time.Now,
		maxMsgLn: defaultMaxMessageLen,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// HandleMessage processes one inbound message for sessionKey. Only invalid
// input and store faults are returned as errors; everything the user can fix
// is answered in Reply.Text. A failed turn leaves the stored session as it was.
func (s *ChatService) HandleMessage(ctx context.Context, sessionKey, text string) (Reply, error) {
	key := strings.TrimSpace(sessionKey)
	if key == "" {
		return Reply{}, newError(ErrorInvalidInput, "empty_session_key", nil)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return Reply{}, newError(ErrorInvalidInput, "empty_message", nil)
	}
	if utf8.RuneCountInString(text) > s.maxMsgLn {
		return Reply{}, newError(ErrorInvalidInput, "message_too_long", nil)
	}

	unlock, err := s.locks.Lock(ctx, key)
	if err != nil {
		return Reply{}, newError(ErrorInternal, "session_lock_timeout", err)
	}
	defer unlock()

	session, err := s.store.Load(ctx, key)
	if err != nil {
		return Reply{}, newError(ErrorInternal, "store_load_error", err)
	}
	state := session.State

	ex := s.extract(text)
	if ex.limitExceeded {
		return Reply{Text: limitReply, State: state}, nil
	}

	if ex.slots.IsEmpty() && conversation.IsConfirmation(text) {
		if session.Pending != nil {
			return s.finalize(ctx, key, session.Pending.State)
		}
		if conversation.IsComplete(state, s.places.IsOfficial) {
			return s.finalize(ctx, key, state)
		}
	}

	if ex.slots.IsEmpty() && len(ex.notices) == 0 {
		if state.IsEmpty() && conversation.IsGreeting(text) {
			return Reply{Text: welcomeReply, State: state}, nil
		}
		if s.agent != nil {
			slots, direct := s.consultAgent(ctx, key, text, state)
			if direct != "" {
				return Reply{Text: direct, State: state}, nil
			}
			ex.slots = slots
		}
	}

	if ex.slots.IsEmpty() {
		return Reply{Text: composeReply(ex.notices, state, false), State: state}, nil
	}

	merged, reset := conversation.Merge(state, ex.slots)
	if merged.Origin != "" && merged.Origin == merged.Destination {
		ex.notices = append(ex.notices, validationNotice(domain.NewValidationError(domain.CodeSameEndpoints, "")))
		merged.Destination = ""
	}
	if reset {
		s.logger.InfoContext(ctx, "conversation reset by new trip", "sessionKey", key)
	}
	merged.UpdatedAt = s.now().UTC()
	if err := s.store.SaveState(ctx, key, merged); err != nil {
		return Reply{}, newError(ErrorInternal, "store_save_error", err)
	}

	complete := conversation.IsComplete(merged, s.places.IsOfficial)
	if complete {
		pending := domain.PendingQuote{State: merged, CreatedAt: merged.UpdatedAt}
		if err := s.store.SavePending(ctx, key, pending); err != nil {
			return Reply{}, newError(ErrorInternal, "store_save_pending_error", err)
		}
	} else if session.Pending != nil {
		if err := s.store.DeletePending(ctx, key); err != nil {
			return Reply{}, newError(ErrorInternal, "store_delete_pending_error", err)
		}
	}
	return Reply{Text: composeReply(ex.notices, merged, complete), State: merged}, nil
}

// finalize renders the link for a confirmed state. The session is cleared
// whether or not the link could be built.
func (s *ChatService) finalize(ctx context.Context, key string, state domain.ConversationState) (Reply, error) {
	link, buildErr := s.builder.Build(state)
	if err := s.store.Clear(ctx, key); err != nil {
		return Reply{}, newError(ErrorInternal, "store_clear_error", err)
	}
	empty := domain.NewConversationState()
	if buildErr != nil {
		s.logger.WarnContext(ctx, "confirmed quote failed validation", "sessionKey", key, "error", buildErr)
		return Reply{Text: validationNotice(buildErr) + "\n\n" + restartHint, State: empty}, nil
	}
	s.logger.InfoContext(ctx, "quote link built", "sessionKey", key, "origin", state.Origin, "destination", state.Destination)
	return Reply{Text: quoteReply(link), State: empty, QuoteURL: link}, nil
}

type extraction struct {
	slots         conversation.Slots
	notices       []string
	limitExceeded bool
}

// extract runs every deterministic extractor over text. Slots that break a
// business rule are dropped and explained in notices.
func (s *ChatService) extract(text string) extraction {
	var ex extraction

	if p, ok, err := passengers.Extract(text); errors.Is(err, domain.ErrLimitExceeded) {
		ex.limitExceeded = true
		return ex
	} else if ok {
		ex.slots.Passengers = &p
	}

	pair, err := s.places.ExtractPair(text)
	var unrec *places.UnrecognizedError
	switch {
	case err == nil:
		ex.slots.Origin = s.servedCode(pair.Origin, &ex.notices)
		ex.slots.Destination = s.servedCode(pair.Destination, &ex.notices)
		if ex.slots.Origin != "" && ex.slots.Origin == ex.slots.Destination {
			ex.notices = append(ex.notices, validationNotice(domain.NewValidationError(domain.CodeSameEndpoints, "")))
			ex.slots.Origin, ex.slots.Destination = "", ""
		}
		if pair.Unrecognized != "" {
			ex.notices = append(ex.notices, unrecognizedNotice(pair.Unrecognized))
		}
	case errors.As(err, &unrec):
		ex.notices = append(ex.notices, unrecognizedNotice(unrec.Text))
	}

	r, err := s.dates.Extract(text)
	switch {
	case err == nil:
		ex.slots.Dates = &r
	case !errors.Is(err, dates.ErrNoDate):
		ex.notices = append(ex.notices, validationNotice(err))
	}

	if oneWay, ok := conversation.TripType(text); ok {
		ex.slots.OneWay = &oneWay
	}
	return ex
}

func (s *ChatService) servedCode(code string, notices *[]string) string {
	if code == "" || s.places.IsOfficial(code) {
		return code
	}
	*notices = append(*notices, unservedNotice(code))
	return ""
}

// consultAgent asks the fallback agent about a message with no slots. A
// non-empty direct reply ends the turn without touching state. Agent
// failures are logged and the turn continues with no slots.
func (s *ChatService) consultAgent(ctx context.Context, key, text string, state domain.ConversationState) (conversation.Slots, string) {
	answer, err := s.agent.Interpret(ctx, text, state, s.dates.Today())
	if err != nil {
		if CodeOf(err) == ErrorInvalidQuestion {
			return conversation.Slots{}, flaggedReply
		}
		s.logger.WarnContext(ctx, "agent fallback failed", "sessionKey", key, "error", err)
		return conversation.Slots{}, ""
	}
	if !answer.InScope {
		if reply := strings.TrimSpace(answer.Reply); reply != "" {
			return conversation.Slots{}, reply
		}
		return conversation.Slots{}, offTopicReply
	}
	slots := s.agentSlots(answer)
	if slots.IsEmpty() {
		if reply := strings.TrimSpace(answer.Reply); reply != "" {
			return slots, reply + "\n\n" + conversation.MissingPrompt(conversation.MissingSlots(state))
		}
	}
	return slots, ""
}

// agentSlots keeps only agent values that pass the same rules as
// deterministic extraction.
func (s *ChatService) agentSlots(a domain.AgentAnswer) conversation.Slots {
	var slots conversation.Slots
	slots.Origin = s.agentCode(a.Origin)
	slots.Destination = s.agentCode(a.Destination)
	if slots.Origin != "" && slots.Origin == slots.Destination {
		slots.Origin, slots.Destination = "", ""
	}

	today := s.dates.Today()
	if out, ok := s.dates.Parse(a.OutboundDate); ok && dates.InWindow(today, out) {
		r := dates.Range{Outbound: out, IsOneWay: true}
		if ret, ok := s.dates.Parse(a.ReturnDate); ok && dates.InWindow(today, ret) && !ret.Before(out) {
			r.Return, r.IsOneWay = ret, false
		}
		slots.Dates = &r
	}

	p := domain.Passengers{Adults: a.Adults, Children: a.Children, Infants: a.Infants}
	if p.Total() > 0 && p.Adults == 0 {
		p.Adults = 1
	}
	if p.Total() > 0 && p.Total() <= domain.MaxPassengers {
		slots.Passengers = &p
	}
	return slots
}

func (s *ChatService) agentCode(raw string) string {
	code := strings.ToUpper(strings.TrimSpace(raw))
	if len(code) != 3 || !s.places.IsOfficial(code) {
		return ""
	}
	return code
}

func composeReply(notices []string, state domain.ConversationState, complete bool) string {
	parts := append([]string(nil), notices...)
	if state.IsEmpty() {
		if len(parts) == 0 {
			return welcomeReply
		}
		return strings.Join(append(parts, conversation.MissingPrompt(conversation.MissingSlots(state))), "\n\n")
	}
	parts = append(parts, conversation.Summary(state))
	if complete {
		parts = append(parts, confirmQuestion)
	} else {
		parts = append(parts, conversation.MissingPrompt(conversation.MissingSlots(state)))
	}
	return strings.Join(parts, "\n\n")
}
