package chat

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/ignatzorin/proposal-backend/internal/domain/entity"
	"github.com/ignatzorin/proposal-backend/internal/domain/repository"
	"github.com/ignatzorin/proposal-backend/internal/domain/valueobject"
	"github.com/ignatzorin/proposal-backend/internal/logger"
	"github.com/ignatzorin/proposal-backend/internal/pkg/apperror"
	"github.com/ignatzorin/proposal-backend/internal/usecase/conversation"
	"github.com/ignatzorin/proposal-backend/internal/validation"
)

const (
	DefaultMaxSteps = 5
	DefaultTimeout  = 30 * time.Second

	maxHistoryTurns = 40
	persistTimeout  = 10 * time.Second
)

// TurnRequest одно сообщение пользователя в беседе ChatID.
type TurnRequest struct {
	ChatID    uuid.UUID
	MessageID string
	Text      string
}

// Options ограничения одного хода.
type Options struct {
	MaxSteps int
	Timeout  time.Duration
}

// Agent ведёт диалог с моделью и выполняет её вызовы инструментов.
type Agent struct {
	model repository.ChatModel
	users repository.UserRepository
	convs repository.ConversationRepository
	msgs  repository.MessageRepository
	tools *Tools
	opts  Options
	now   func() time.Time
}

func NewAgent(
	model repository.ChatModel,
	users repository.UserRepository,
	convs repository.ConversationRepository,
	msgs repository.MessageRepository,
	tools *Tools,
	opts Options,
) *Agent {
	if opts.MaxSteps <= 0 {
		opts.MaxSteps = DefaultMaxSteps
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	return &Agent{
		model: model,
		users: users,
		convs: convs,
		msgs:  msgs,
		tools: tools,
		opts:  opts,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Run обрабатывает сообщение пользователя и стримит ответ через emit.
// Ошибки до первого события возвращаются как есть, чтобы обработчик
// мог ответить обычным JSON. После start ошибки модели уходят событием error.
func (a *Agent) Run(ctx context.Context, userID uuid.UUID, req TurnRequest, emit Emitter) error {
	if userID == uuid.Nil {
		return apperror.ErrUnauthorized
	}
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return apperror.Validation("Message cannot be empty")
	}
	if utf8.RuneCountInString(text) > validation.MaxChatMessageLength {
		return apperror.Validation("Message is too long")
	}

	user, err := a.users.FindByID(ctx, userID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return apperror.ErrUnauthorized
		}
		return apperror.Internal(err, "load", "user")
	}

	conv, created, err := a.loadOrCreate(ctx, req.ChatID, userID, text)
	if err != nil {
		return err
	}

	var history []*entity.Message
	if !created {
		history, err = a.msgs.ListByConversation(ctx, conv.ID)
		if err != nil {
			return apperror.Internal(err, "load", "conversation")
		}
	}

	userMsg, err := entity.NewMessage(conv.ID, valueobject.MessageRoleUser, text, []entity.MessagePart{{Type: entity.PartText, Text: text}})
	if err != nil {
		return err
	}
	if err := a.msgs.Append(ctx, []*entity.Message{userMsg}); err != nil {
		return apperror.Internal(err, "save", "message")
	}

	turnCtx, cancel := context.WithTimeout(ctx, a.opts.Timeout)
	defer cancel()

	t := &turn{
		agent:     a,
		userID:    userID,
		emit:      emit,
		messageID: req.MessageID,
		req: repository.ChatRequest{
			System: buildSystemPrompt(user, a.now()),
			Turns:  append(historyToTurns(history), repository.ChatTurn{Role: valueobject.MessageRoleUser, Text: text}),
			Tools:  a.tools.Specs(),
		},
	}
	if t.messageID == "" {
		t.messageID = uuid.NewString()
	}

	runErr := t.run(turnCtx)

	// Сохраняем даже при обрыве клиента: ход уже оплачен.
	saveCtx, saveCancel := context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
	defer saveCancel()
	if err := a.persist(saveCtx, conv.ID, userMsg.CreatedAt, t.produced); err != nil {
		logger.Log.WithError(err).WithField("conversation_id", conv.ID).Error("[CHAT] Не удалось сохранить ответ ассистента")
	}

	return runErr
}

func (a *Agent) loadOrCreate(ctx context.Context, id, userID uuid.UUID, text string) (*entity.Conversation, bool, error) {
	conv, err := conversation.LoadOwned(ctx, a.convs, id, userID)
	if err == nil {
		return conv, false, nil
	}
	if !apperror.IsNotFound(err) {
		return nil, false, err
	}
	conv, err = entity.NewConversation(id, userID, text)
	if err != nil {
		return nil, false, err
	}
	if err := a.convs.Create(ctx, conv); err != nil {
		return nil, false, apperror.Internal(err, "create", "conversation")
	}
	return conv, true, nil
}

// persist дописывает сообщения хода с возрастающим CreatedAt.
func (a *Agent) persist(ctx context.Context, convID uuid.UUID, after time.Time, produced []*entity.Message) error {
	at := a.now()
	if !at.After(after) {
		at = after.Add(time.Millisecond)
	}
	for i, m := range produced {
		m.ConversationID = convID
		m.CreatedAt = at.Add(time.Duration(i) * time.Millisecond)
	}
	if len(produced) > 0 {
		if err := a.msgs.Append(ctx, produced); err != nil {
			return err
		}
		at = produced[len(produced)-1].CreatedAt
	}
	return a.convs.Touch(ctx, convID, at)
}

// turn состояние одного хода агента.
type turn struct {
	agent     *Agent
	userID    uuid.UUID
	emit      Emitter
	messageID string
	req       repository.ChatRequest
	produced  []*entity.Message
	emitErr   error
}

// send передаёт событие клиенту и запоминает первую ошибку записи.
func (t *turn) send(e Event) error {
	if t.emitErr != nil {
		return t.emitErr
	}
	if err := t.emit(e); err != nil {
		t.emitErr = err
		return err
	}
	return nil
}

func (t *turn) run(ctx context.Context) error {
	if err := t.send(Event{Type: EventStart, MessageID: t.messageID}); err != nil {
		return err
	}

	for step := 0; step < t.agent.opts.MaxSteps; step++ {
		if err := t.send(Event{Type: EventStartStep}); err != nil {
			return err
		}

		res, err := t.step(ctx)
		if err != nil {
			return t.fail(ctx, err)
		}

		assistant := repository.ChatTurn{Role: valueobject.MessageRoleAssistant, Text: res.Text, ToolCalls: res.ToolCalls}
		t.req.Turns = append(t.req.Turns, assistant)
		t.record(assistant)

		if len(res.ToolCalls) == 0 {
			if err := t.send(Event{Type: EventFinishStep}); err != nil {
				return err
			}
			break
		}

		results, err := t.runTools(ctx, res.ToolCalls)
		if err != nil {
			t.record(repository.ChatTurn{Role: valueobject.MessageRoleTool, ToolResults: cancelledResults(res.ToolCalls, results)})
			return t.fail(ctx, err)
		}
		toolTurn := repository.ChatTurn{Role: valueobject.MessageRoleTool, ToolResults: results}
		t.req.Turns = append(t.req.Turns, toolTurn)
		t.record(toolTurn)

		if err := t.send(Event{Type: EventFinishStep}); err != nil {
			return err
		}
	}

	return t.send(Event{Type: EventFinish})
}

// runTools выполняет вызовы по порядку. При ошибке возвращает уже
// полученные результаты.
func (t *turn) runTools(ctx context.Context, calls []repository.ToolCall) ([]repository.ToolResult, error) {
	results := make([]repository.ToolResult, 0, len(calls))
	for _, call := range calls {
		if err := t.send(Event{Type: EventToolInputAvailable, ToolCallID: call.ID, ToolName: call.Name, Input: call.Args}); err != nil {
			return results, err
		}
		out, err := t.agent.tools.Run(ctx, t.userID, call)
		if err != nil {
			return results, err
		}
		results = append(results, repository.ToolResult{CallID: call.ID, Name: call.Name, Output: out})
		if err := t.send(Event{Type: EventToolOutputAvailable, ToolCallID: call.ID, Output: out}); err != nil {
			return results, err
		}
	}
	return results, nil
}

// cancelledResults дополняет результаты ответом cancelled для каждого
// вызова без результата: провайдеры не принимают вызов инструмента без ответа.
func cancelledResults(calls []repository.ToolCall, done []repository.ToolResult) []repository.ToolResult {
	answered := make(map[string]bool, len(done))
	for _, r := range done {
		answered[r.CallID] = true
	}
	out := append([]repository.ToolResult(nil), done...)
	for _, c := range calls {
		if !answered[c.ID] {
			out = append(out, repository.ToolResult{CallID: c.ID, Name: c.Name, Output: map[string]any{"error": "cancelled"}})
		}
	}
	return out
}

// step один вызов модели с трансляцией текста в text-* события.
func (t *turn) step(ctx context.Context) (*repository.StepResult, error) {
	textID := ""
	res, err := t.agent.model.Step(ctx, t.req, func(delta string) error {
		if delta == "" {
			return nil
		}
		if textID == "" {
			textID = uuid.NewString()
			if err := t.send(Event{Type: EventTextStart, ID: textID}); err != nil {
				return err
			}
		}
		return t.send(Event{Type: EventTextDelta, ID: textID, Delta: delta})
	})
	if textID != "" {
		if endErr := t.send(Event{Type: EventTextEnd, ID: textID}); endErr != nil && err == nil {
			err = endErr
		}
	}
	if err != nil {
		return nil, err
	}
	if res == nil {
		res = &repository.StepResult{}
	}
	return res, nil
}

func (t *turn) fail(ctx context.Context, err error) error {
	if t.emitErr != nil {
		return t.emitErr
	}
	msg := "Failed to generate response"
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		msg = "Response timed out"
	}
	logger.Log.WithError(err).WithField("user_id", t.userID).Warn("[CHAT] Ход прерван")
	return t.send(Event{Type: EventError, ErrorText: msg})
}

func (t *turn) record(ct repository.ChatTurn) {
	var parts []entity.MessagePart
	if ct.Text != "" {
		parts = append(parts, entity.MessagePart{Type: entity.PartText, Text: ct.Text})
	}
	for _, c := range ct.ToolCalls {
		parts = append(parts, entity.MessagePart{Type: entity.PartToolCall, ToolCallID: c.ID, ToolName: c.Name, Input: c.Args})
	}
	for _, r := range ct.ToolResults {
		parts = append(parts, entity.MessagePart{Type: entity.PartToolResult, ToolCallID: r.CallID, ToolName: r.Name, Output: r.Output})
	}
	if len(parts) == 0 {
		return
	}
	msg, err := entity.NewMessage(uuid.Nil, ct.Role, ct.Text, parts)
	if err != nil {
		return
	}
	t.produced = append(t.produced, msg)
}

// historyToTurns переводит сохранённые сообщения в реплики модели.
// Берутся последние maxHistoryTurns, начиная с сообщения пользователя.
func historyToTurns(history []*entity.Message) []repository.ChatTurn {
	if len(history) > maxHistoryTurns {
		history = history[len(history)-maxHistoryTurns:]
	}
	for len(history) > 0 && history[0].Role != valueobject.MessageRoleUser {
		history = history[1:]
	}

	turns := make([]repository.ChatTurn, 0, len(history))
	for _, m := range history {
		ct := repository.ChatTurn{Role: m.Role}
		switch m.Role {
		case valueobject.MessageRoleUser:
			ct.Text = m.Content
		case valueobject.MessageRoleAssistant:
			ct.Text = m.Content
			for _, p := range m.ToolCalls() {
				ct.ToolCalls = append(ct.ToolCalls, repository.ToolCall{ID: p.ToolCallID, Name: p.ToolName, Args: p.Input})
			}
		case valueobject.MessageRoleTool:
			for _, p := range m.Parts {
				if p.Type == entity.PartToolResult {
					ct.ToolResults = append(ct.ToolResults, repository.ToolResult{CallID: p.ToolCallID, Name: p.ToolName, Output: p.Output})
				}
			}
			if len(ct.ToolResults) == 0 {
				continue
			}
		}
		turns = append(turns, ct)
	}
	return dropUnansweredCalls(turns)
}

// dropUnansweredCalls убирает вызовы инструментов, за которыми в истории
// не следует результат, и результаты без вызова.
func dropUnansweredCalls(turns []repository.ChatTurn) []repository.ChatTurn {
	out := make([]repository.ChatTurn, 0, len(turns))
	for i, ct := range turns {
		switch ct.Role {
		case valueobject.MessageRoleAssistant:
			if len(ct.ToolCalls) == 0 {
				break
			}
			answered := map[string]bool{}
			if i+1 < len(turns) && turns[i+1].Role == valueobject.MessageRoleTool {
				for _, r := range turns[i+1].ToolResults {
					answered[r.CallID] = true
				}
			}
			calls := make([]repository.ToolCall, 0, len(ct.ToolCalls))
			for _, c := range ct.ToolCalls {
				if answered[c.ID] {
					calls = append(calls, c)
				}
			}
			ct.ToolCalls = calls
			if len(calls) == 0 && ct.Text == "" {
				continue
			}
		case valueobject.MessageRoleTool:
			called := map[string]bool{}
			if len(out) > 0 && out[len(out)-1].Role == valueobject.MessageRoleAssistant {
				for _, c := range out[len(out)-1].ToolCalls {
					called[c.ID] = true
				}
			}
			results := make([]repository.ToolResult, 0, len(ct.ToolResults))
			for _, r := range ct.ToolResults {
				if called[r.CallID] {
					results = append(results, r)
				}
			}
			if len(results) == 0 {
				continue
			}
			ct.ToolResults = results
		}
		out = append(out, ct)
	}
	return out
}
