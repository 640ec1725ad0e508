package convo

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nianverse/storechat/internal/chatapi"
	"github.com/nianverse/storechat/internal/domain"
	"github.com/nianverse/storechat/internal/logging"
	"github.com/nianverse/storechat/internal/store"
	"github.com/nianverse/storechat/internal/upload"
)

type fakeService struct {
	createCalls   int
	sendCalls     int
	validateCalls int
	historyCalls  int

	session    domain.Session
	createErr  error
	sendResult *chatapi.SendResult
	sendErr    error
	validation *domain.ValidationResult
	vErr       error
	history    []domain.Message
	historyErr error

	lastSent string
}

func (f *fakeService) CreateSession(ctx context.Context, userIdentifier, businessTypeHint string) (domain.Session, error) {
	f.createCalls++
	if f.createErr != nil {
		return domain.Session{}, f.createErr
	}
	return f.session, nil
}

func (f *fakeService) SendMessage(ctx context.Context, sessionID, content string, metadata map[string]any) (*chatapi.SendResult, error) {
	f.sendCalls++
	f.lastSent = content
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	return f.sendResult, nil
}

func (f *fakeService) ValidateSession(ctx context.Context, sessionID string, includeDetails bool) (*domain.ValidationResult, error) {
	f.validateCalls++
	if f.vErr != nil {
		return nil, f.vErr
	}
	return f.validation, nil
}

func (f *fakeService) History(ctx context.Context, sessionID string) ([]domain.Message, error) {
	f.historyCalls++
	if f.historyErr != nil {
		return nil, f.historyErr
	}
	return f.history, nil
}

type fakeUploader struct {
	results map[string]domain.UploadResult
	order   []string
	folders []string
}

func (f *fakeUploader) Upload(ctx context.Context, file upload.File, folderName string) domain.UploadResult {
	f.order = append(f.order, file.Name)
	f.folders = append(f.folders, folderName)
	return f.results[file.Name]
}

func silentLog() *logging.Logger {
	return logging.New(nil, "silent")
}

func futureSession(id string) domain.Session {
	return domain.Session{ID: id, ExpiresAt: time.Now().Add(time.Hour)}
}

func persistSession(t *testing.T, kv Storage, sess domain.Session) {
	t.Helper()
	require.NoError(t, kv.Write(store.KeySessionID, sess.ID))
	require.NoError(t, kv.Write(store.KeyExpiresAt, sess.ExpiresAt.Format(time.RFC3339)))
}

func newFixture(svc *fakeService, up *fakeUploader) (*Orchestrator, *SessionManager, *StateTracker, *store.MemoryKV, *store.MemoryMessageLog) {
	kv := store.NewMemoryKV()
	msgs := store.NewMemoryMessageLog()
	tracker := NewStateTracker()
	sessions := NewSessionManager(kv, svc, "", silentLog())
	orch := NewOrchestrator(sessions, svc, up, tracker, msgs, "CHAT", silentLog())
	return orch, sessions, tracker, kv, msgs
}

func TestEnsureSessionFreshDevice(t *testing.T) {
	svc := &fakeService{session: futureSession("s1")}
	_, sessions, _, kv, _ := newFixture(svc, nil)

	sess, err := sessions.EnsureSession(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "s1", sess.ID)
	assert.Equal(t, 1, svc.createCalls)

	userID, _ := kv.Read(store.KeyUserID)
	assert.NotEmpty(t, userID)
	persisted, _ := kv.Read(store.KeySessionID)
	assert.Equal(t, "s1", persisted)

	// A second call before expiry reuses the persisted session with zero
	// additional network calls.
	sess2, err := sessions.EnsureSession(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "s1", sess2.ID)
	assert.Equal(t, 1, svc.createCalls)

	userID2, _ := kv.Read(store.KeyUserID)
	assert.Equal(t, userID, userID2)
}

func TestEnsureSessionExpiredPersisted(t *testing.T) {
	svc := &fakeService{session: futureSession("s2")}
	_, sessions, _, kv, _ := newFixture(svc, nil)

	persistSession(t, kv, domain.Session{ID: "old", ExpiresAt: time.Now().Add(-time.Minute)})

	sess, err := sessions.EnsureSession(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "s2", sess.ID)
	assert.Equal(t, 1, svc.createCalls)
}

func TestEnsureSessionRemoteFailure(t *testing.T) {
	svc := &fakeService{createErr: errors.New("boom")}
	_, sessions, _, kv, _ := newFixture(svc, nil)

	_, err := sessions.EnsureSession(context.Background())
	var scErr *SessionCreationError
	require.ErrorAs(t, err, &scErr)

	persisted, _ := kv.Read(store.KeySessionID)
	assert.Empty(t, persisted)
}

func TestIsValidGarbledExpiry(t *testing.T) {
	svc := &fakeService{}
	_, sessions, _, kv, _ := newFixture(svc, nil)

	require.NoError(t, kv.Write(store.KeySessionID, "s1"))
	require.NoError(t, kv.Write(store.KeyExpiresAt, "not-a-time"))
	assert.False(t, sessions.IsValid())
}

func TestClearKeepsDeviceIdentity(t *testing.T) {
	svc := &fakeService{session: futureSession("s1")}
	_, sessions, _, kv, _ := newFixture(svc, nil)

	_, err := sessions.EnsureSession(context.Background())
	require.NoError(t, err)
	require.NoError(t, sessions.Clear())

	assert.False(t, sessions.IsValid())
	userID, _ := kv.Read(store.KeyUserID)
	assert.NotEmpty(t, userID)
}

func TestSendTurnWhitespaceNoOp(t *testing.T) {
	svc := &fakeService{}
	orch, _, _, _, _ := newFixture(svc, nil)

	result, err := orch.SendTurn(context.Background(), "s1", "   \n\t ", nil)
	require.NoError(t, err)
	assert.Nil(t, result)
	assert.Zero(t, svc.sendCalls)
}

func TestSendTurnNoActiveSession(t *testing.T) {
	svc := &fakeService{}
	orch, _, _, _, _ := newFixture(svc, nil)

	_, err := orch.SendTurn(context.Background(), "s1", "hello", nil)
	var naErr *NoActiveSessionError
	require.ErrorAs(t, err, &naErr)
	assert.Zero(t, svc.sendCalls)
}

func TestSendTurnHappyPath(t *testing.T) {
	svc := &fakeService{
		sendResult: &chatapi.SendResult{
			MessageID:  "m1",
			AiResponse: "hi",
			State: &domain.ConversationState{
				CurrentStep:        "collecting_name",
				CollectedFields:    []string{},
				NextFieldToCollect: "name",
				ProgressPercentage: 10,
			},
		},
	}
	orch, _, tracker, kv, msgs := newFixture(svc, nil)
	persistSession(t, kv, futureSession("s1"))

	result, err := orch.SendTurn(context.Background(), "s1", "hello", nil)
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.Equal(t, domain.RoleUser, result.UserMessage.Role)
	assert.Equal(t, "hello", result.UserMessage.Content)
	assert.Equal(t, domain.OriginLocal, result.UserMessage.Origin)
	require.NotNil(t, result.AssistantMessage)
	assert.Equal(t, "m1", result.AssistantMessage.ID)
	assert.Equal(t, "hi", result.AssistantMessage.Content)
	assert.Equal(t, domain.OriginServer, result.AssistantMessage.Origin)
	assert.Nil(t, result.SystemMessage)

	state := tracker.Snapshot()
	require.NotNil(t, state)
	assert.Equal(t, 10, state.ProgressPercentage)

	logged, _ := msgs.BySession("s1")
	require.Len(t, logged, 2)
	assert.Equal(t, domain.RoleUser, logged[0].Role)
	assert.Equal(t, domain.RoleAssistant, logged[1].Role)
}

func TestSendTurnPartialUploadFailure(t *testing.T) {
	svc := &fakeService{sendResult: &chatapi.SendResult{MessageID: "m1", AiResponse: "got it"}}
	up := &fakeUploader{results: map[string]domain.UploadResult{
		"a.png": {Success: false, Error: "too large"},
		"b.png": {Success: true, URL: "http://x/b.png"},
	}}
	orch, _, _, kv, _ := newFixture(svc, up)
	persistSession(t, kv, futureSession("s1"))

	files := []upload.File{
		{Name: "a.png", Content: strings.NewReader("a")},
		{Name: "b.png", Content: strings.NewReader("b")},
	}
	result, err := orch.SendTurn(context.Background(), "s1", "receipts", files)
	require.NoError(t, err)

	// Uploads run in input order even when an earlier one fails, and every
	// result is reported back.
	assert.Equal(t, []string{"a.png", "b.png"}, up.order)
	assert.Equal(t, []string{"CHAT_s1", "CHAT_s1"}, up.folders)
	require.Len(t, result.Uploads, 2)
	assert.False(t, result.Uploads[0].Success)
	assert.True(t, result.Uploads[1].Success)

	assert.Equal(t, "receipts http://x/b.png", svc.lastSent)
}

func TestSendTurnAttachmentsOnly(t *testing.T) {
	svc := &fakeService{sendResult: &chatapi.SendResult{MessageID: "m1", AiResponse: "ok"}}
	up := &fakeUploader{results: map[string]domain.UploadResult{
		"a.png": {Success: true, URL: "http://x/a.png"},
	}}
	orch, _, _, kv, _ := newFixture(svc, up)
	persistSession(t, kv, futureSession("s1"))

	_, err := orch.SendTurn(context.Background(), "s1", "  ", []upload.File{{Name: "a.png", Content: strings.NewReader("a")}})
	require.NoError(t, err)
	assert.Equal(t, "http://x/a.png", svc.lastSent)
}

func TestSendTurnRemoteFailure(t *testing.T) {
	svc := &fakeService{sendErr: &chatapi.APIError{Status: 5, Message: "session expired"}}
	orch, _, _, kv, msgs := newFixture(svc, nil)
	persistSession(t, kv, futureSession("s1"))

	result, err := orch.SendTurn(context.Background(), "s1", "hello", nil)
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.Nil(t, result.AssistantMessage)
	require.NotNil(t, result.SystemMessage)
	assert.Equal(t, domain.RoleSystem, result.SystemMessage.Role)
	assert.Equal(t, "session expired", result.SystemMessage.Content)

	// The optimistic user message stays in the log, followed by the notice.
	logged, _ := msgs.BySession("s1")
	require.Len(t, logged, 2)
	assert.Equal(t, domain.RoleUser, logged[0].Role)
	assert.Equal(t, domain.RoleSystem, logged[1].Role)
}

func TestSendTurnStateAbsentLeavesTracker(t *testing.T) {
	svc := &fakeService{sendResult: &chatapi.SendResult{MessageID: "m2", AiResponse: "noted"}}
	orch, _, tracker, kv, _ := newFixture(svc, nil)
	persistSession(t, kv, futureSession("s1"))

	tracker.Replace(domain.ConversationState{CurrentStep: "collecting_name", ProgressPercentage: 40})

	_, err := orch.SendTurn(context.Background(), "s1", "hello", nil)
	require.NoError(t, err)

	state := tracker.Snapshot()
	require.NotNil(t, state)
	assert.Equal(t, 40, state.ProgressPercentage)
}

func TestSendTurnCompletionTriggersValidation(t *testing.T) {
	svc := &fakeService{
		sendResult: &chatapi.SendResult{
			MessageID:  "m3",
			AiResponse: "all done",
			State:      &domain.ConversationState{CurrentStep: domain.StepCompleted, ProgressPercentage: 100},
		},
		validation: &domain.ValidationResult{IsComplete: true, CanCreateStore: true, ProgressPercentage: 100},
	}
	orch, _, tracker, kv, _ := newFixture(svc, nil)
	persistSession(t, kv, futureSession("s1"))

	result, err := orch.SendTurn(context.Background(), "s1", "done", nil)
	require.NoError(t, err)

	assert.Equal(t, 1, svc.validateCalls)
	require.NotNil(t, result.Validation)
	assert.True(t, result.Validation.CanCreateStore)

	stored := tracker.Validation()
	require.NotNil(t, stored)
	assert.True(t, stored.IsComplete)
}

func TestValidateFailureKeepsPreviousResult(t *testing.T) {
	svc := &fakeService{vErr: errors.New("down")}
	orch, _, tracker, _, _ := newFixture(svc, nil)

	previous := &domain.ValidationResult{IsComplete: false, ProgressPercentage: 60}
	tracker.SetValidation(previous)

	_, err := orch.Validate(context.Background(), "s1", true)
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)

	stored := tracker.Validation()
	require.NotNil(t, stored)
	assert.Equal(t, 60, stored.ProgressPercentage)
}

func TestLoadHistoryReplacesLocalLog(t *testing.T) {
	remote := []domain.Message{
		{ID: "m1", Role: domain.RoleUser, Content: "hello", Origin: domain.OriginServer},
		{ID: "m2", Role: domain.RoleAssistant, Content: "hi", Origin: domain.OriginServer},
	}
	svc := &fakeService{history: remote}
	orch, _, _, _, msgs := newFixture(svc, nil)

	require.NoError(t, msgs.Append("s1", domain.Message{ID: "stale", Role: domain.RoleUser}))

	got, err := orch.LoadHistory(context.Background(), "s1")
	require.NoError(t, err)
	require.Len(t, got, 2)

	local, _ := msgs.BySession("s1")
	require.Len(t, local, 2)
	assert.Equal(t, "m1", local[0].ID)
}

func TestLoadHistoryDegradesToLocal(t *testing.T) {
	svc := &fakeService{historyErr: errors.New("timeout")}
	orch, _, _, _, msgs := newFixture(svc, nil)

	require.NoError(t, msgs.Append("s1", domain.Message{ID: "l1", Role: domain.RoleUser, Content: "hello"}))

	got, err := orch.LoadHistory(context.Background(), "s1")
	var hlErr *HistoryLoadError
	require.ErrorAs(t, err, &hlErr)
	require.Len(t, got, 1)
	assert.Equal(t, "l1", got[0].ID)
}

func TestBusySignalScoped(t *testing.T) {
	svc := &fakeService{sendErr: errors.New("network down")}
	orch, _, _, kv, _ := newFixture(svc, nil)
	persistSession(t, kv, futureSession("s1"))

	var transitions []bool
	orch.OnBusy(func(busy bool) {
		transitions = append(transitions, busy)
		if busy {
			assert.True(t, orch.Busy())
		}
	})

	_, err := orch.SendTurn(context.Background(), "s1", "hello", nil)
	require.NoError(t, err)

	// Asserted before the send and cleared after, even though the send failed.
	assert.Equal(t, []bool{true, false}, transitions)
	assert.False(t, orch.Busy())
}
