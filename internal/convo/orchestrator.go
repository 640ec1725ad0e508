package convo

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/nianverse/storechat/internal/chatapi"
	"github.com/nianverse/storechat/internal/domain"
	"github.com/nianverse/storechat/internal/logging"
	"github.com/nianverse/storechat/internal/upload"
)

// TurnResult is everything one turn produced: the messages appended to the
// log, per-file upload outcomes, and any state or validation the server
// returned. AssistantMessage and SystemMessage are mutually exclusive.
type TurnResult struct {
	UserMessage      domain.Message
	AssistantMessage *domain.Message
	SystemMessage    *domain.Message
	Uploads          []domain.UploadResult
	State            *domain.ConversationState
	Validation       *domain.ValidationResult
}

// Orchestrator composes turns: it uploads attachments, sends the message,
// records both sides of the exchange, and reacts to completion. Calls are not
// mutually exclusive; callers serialize sends per session, typically by
// disabling input while Busy reports true.
type Orchestrator struct {
	sessions     *SessionManager
	service      ChatService
	uploader     Uploader
	tracker      *StateTracker
	messages     MessageLog
	folderPrefix string
	log          *logging.Logger

	busy   atomic.Bool
	onBusy func(bool)
	now    func() time.Time
}

// NewOrchestrator wires the turn pipeline. folderPrefix namespaces upload
// storage per session, e.g. "CHAT" produces folder "CHAT_<sessionID>".
func NewOrchestrator(sessions *SessionManager, service ChatService, uploader Uploader, tracker *StateTracker, messages MessageLog, folderPrefix string, log *logging.Logger) *Orchestrator {
	return &Orchestrator{
		sessions:     sessions,
		service:      service,
		uploader:     uploader,
		tracker:      tracker,
		messages:     messages,
		folderPrefix: folderPrefix,
		log:          log.Sub("orchestrator"),
		now:          time.Now,
	}
}

// OnBusy registers a callback observing the busy signal. Must be set before
// the first turn.
func (o *Orchestrator) OnBusy(fn func(bool)) {
	o.onBusy = fn
}

// Busy reports whether a user-initiated action is in flight.
func (o *Orchestrator) Busy() bool {
	return o.busy.Load()
}

// acquire asserts the busy signal and returns its release. Scoped so that a
// failure on any step of the chain still clears the signal.
func (o *Orchestrator) acquire() func() {
	o.busy.Store(true)
	if o.onBusy != nil {
		o.onBusy(true)
	}
	return func() {
		o.busy.Store(false)
		if o.onBusy != nil {
			o.onBusy(false)
		}
	}
}

// SendTurn runs one full turn: upload attachments, compose and send the
// message, record the reply, and validate on completion.
//
// A whitespace-only turn with no attachments is a no-op returning (nil, nil).
// A missing or expired session fails with NoActiveSessionError before any
// remote call. Send failures do not return an error: they append a system
// message describing the failure and come back inside the result, with the
// optimistically appended user message left in place.
func (o *Orchestrator) SendTurn(ctx context.Context, sessionID, text string, attachments []upload.File) (*TurnResult, error) {
	text = strings.TrimSpace(text)
	if text == "" && len(attachments) == 0 {
		return nil, nil
	}

	if sessionID == "" || !o.sessions.IsValid() {
		return nil, &NoActiveSessionError{}
	}

	release := o.acquire()
	defer release()

	result := &TurnResult{}

	// Attachments are best-effort and strictly ordered: one at a time, in
	// input order, failures dropped from the outgoing content.
	var urls []string
	if len(attachments) > 0 {
		folder := o.folderPrefix + "_" + sessionID
		for _, f := range attachments {
			res := o.uploader.Upload(ctx, f, folder)
			result.Uploads = append(result.Uploads, res)
			if res.Success {
				urls = append(urls, res.URL)
				continue
			}
			o.log.Warn().Str("file", f.Name).Str("error", res.Error).Msg("attachment dropped from turn")
		}
	}

	content := text
	if len(urls) > 0 {
		if content == "" {
			content = strings.Join(urls, " ")
		} else {
			content = content + " " + strings.Join(urls, " ")
		}
	}

	// Optimistic append: the user message is recorded before the round-trip
	// and is never reconciled against a server-assigned id.
	result.UserMessage = domain.Message{
		ID:        uuid.NewString(),
		Role:      domain.RoleUser,
		Content:   content,
		Origin:    domain.OriginLocal,
		CreatedAt: o.now(),
	}
	if err := o.messages.Append(sessionID, result.UserMessage); err != nil {
		o.log.Warn().Err(err).Msg("recording user message failed")
	}

	reply, err := o.service.SendMessage(ctx, sessionID, content, nil)
	if err != nil {
		o.appendFailure(sessionID, result, &MessageSendError{Err: err})
		return result, nil
	}

	assistant := domain.Message{
		ID:        reply.MessageID,
		Role:      domain.RoleAssistant,
		Content:   reply.AiResponse,
		Origin:    domain.OriginServer,
		CreatedAt: o.now(),
	}
	result.AssistantMessage = &assistant
	if err := o.messages.Append(sessionID, assistant); err != nil {
		o.log.Warn().Err(err).Msg("recording assistant message failed")
	}

	if reply.State != nil {
		o.tracker.Replace(*reply.State)
		result.State = reply.State

		if reply.State.Completed() {
			o.log.Info().Str("session_id", sessionID).Msg("collection completed, validating")
			validation, err := o.Validate(ctx, sessionID, true)
			if err != nil {
				o.log.Warn().Err(err).Msg("completion validation failed")
			} else {
				result.Validation = validation
			}
		}
	}

	return result, nil
}

// Validate asks the service whether enough data has been collected and
// stores the result. On failure the previously stored result stays in place
// and the caller gets a ValidationError.
func (o *Orchestrator) Validate(ctx context.Context, sessionID string, includeDetails bool) (*domain.ValidationResult, error) {
	result, err := o.service.ValidateSession(ctx, sessionID, includeDetails)
	if err != nil {
		return nil, &ValidationError{Err: err}
	}
	o.tracker.SetValidation(result)
	return result, nil
}

// LoadHistory fetches the session's message log from the service and makes
// it the local copy. When the fetch fails, the local copy is returned
// alongside a HistoryLoadError; session start proceeds either way.
func (o *Orchestrator) LoadHistory(ctx context.Context, sessionID string) ([]domain.Message, error) {
	msgs, err := o.service.History(ctx, sessionID)
	if err != nil {
		o.log.Warn().Err(err).Str("session_id", sessionID).Msg("history fetch failed, using local log")
		local, localErr := o.messages.BySession(sessionID)
		if localErr != nil {
			local = nil
		}
		return local, &HistoryLoadError{Err: err}
	}

	if err := o.messages.Replace(sessionID, msgs); err != nil {
		o.log.Warn().Err(err).Msg("persisting fetched history failed")
	}
	return msgs, nil
}

// appendFailure records a send failure as a client-local system message. The
// remote failure message is shown verbatim when the service supplied one.
func (o *Orchestrator) appendFailure(sessionID string, result *TurnResult, sendErr error) {
	text := "Sorry, something went wrong sending your message. Please try again."
	var apiErr *chatapi.APIError
	if errors.As(sendErr, &apiErr) && apiErr.Message != "" {
		text = apiErr.Message
	}

	system := domain.Message{
		ID:        uuid.NewString(),
		Role:      domain.RoleSystem,
		Content:   text,
		Origin:    domain.OriginLocal,
		CreatedAt: o.now(),
	}
	result.SystemMessage = &system
	if err := o.messages.Append(sessionID, system); err != nil {
		o.log.Warn().Err(err).Msg("recording system message failed")
	}
	o.log.Error().Err(sendErr).Str("session_id", sessionID).Msg("message send failed")
}
