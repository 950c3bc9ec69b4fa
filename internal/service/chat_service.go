package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"companion-llm/internal/domain"
	"companion-llm/internal/llm"
	"companion-llm/internal/repository"
	"companion-llm/internal/tts"
)

// ChatService orquesta el pipeline conversacional completo: contexto,
// completion, síntesis de voz opcional, persistencia del turno y ledger de uso.
type ChatService struct {
	logger      *zap.Logger
	sessions    repository.SessionRepository
	messages    repository.MessageRepository
	users       repository.UserRepository
	assembler   ContextAssembler
	completions llm.CompletionClient
	synthesizer tts.Synthesizer
	usage       *UsageService
	system      string
}

var (
	ErrInvalidMessage   = errors.New("message empty or invalid")
	ErrSessionNotFound  = errors.New("session not found")
	ErrSessionForbidden = errors.New("session belongs to another user")
	ErrCompletionFailed = errors.New("completion provider failed")
)

// fallbackReply reemplaza una respuesta vacía del proveedor: un turno de
// asistente vacío rompe la utilidad del historial.
const fallbackReply = "Estoy aquí contigo. ¿Puedes contarme un poco más sobre lo que sientes?"

const sessionTitleMaxLen = 48

func NewChatService(
	logger *zap.Logger,
	sessions repository.SessionRepository,
	messages repository.MessageRepository,
	users repository.UserRepository,
	assembler ContextAssembler,
	completions llm.CompletionClient,
	synthesizer tts.Synthesizer,
	usage *UsageService,
	systemPrompt string,
) *ChatService {
	return &ChatService{
		logger:      logger,
		sessions:    sessions,
		messages:    messages,
		users:       users,
		assembler:   assembler,
		completions: completions,
		synthesizer: synthesizer,
		usage:       usage,
		system:      systemPrompt,
	}
}

type ChatInput struct {
	SessionID      string
	Message        string
	AudioRequested bool
}

type ChatResult struct {
	SessionID   string
	UserMessage domain.Message
	Reply       domain.Message
	Audio       string // base64; vacío cuando no hubo síntesis
	Persisted   bool
}

// Chat ejecuta un turno completo para un usuario ya autenticado. Los fallos
// fatales son: mensaje inválido, sesión ajena o inexistente y fallo del
// proveedor de completions. La síntesis de voz y el ledger son best-effort.
func (s *ChatService) Chat(ctx context.Context, userID string, input ChatInput) (ChatResult, error) {
	message := strings.TrimSpace(input.Message)
	if message == "" {
		return ChatResult{}, ErrInvalidMessage
	}

	session, err := s.resolveSession(ctx, userID, input.SessionID, message)
	if err != nil {
		return ChatResult{}, err
	}

	userMsg := domain.Message{
		ID:        uuid.NewString(),
		SessionID: session.ID,
		Role:      domain.RoleUser,
		Content:   message,
		CreatedAt: time.Now().UTC(),
	}

	history, err := s.assembler.Assemble(ctx, session.ID, userMsg)
	if err != nil {
		return ChatResult{}, fmt.Errorf("assemble context: %w", err)
	}

	reply, err := s.completions.Complete(ctx, s.system, history)
	if err != nil {
		// Sin reintento: reintentar una llamada generativa duplica intención y latencia.
		return ChatResult{}, fmt.Errorf("%w: %v", ErrCompletionFailed, err)
	}
	if strings.TrimSpace(reply) == "" {
		reply = fallbackReply
	}

	synthResult := s.attemptSynthesis(ctx, userID, input.AudioRequested, reply)

	assistantMsg := domain.Message{
		ID:        uuid.NewString(),
		SessionID: session.ID,
		Role:      domain.RoleAssistant,
		Content:   reply,
		CreatedAt: time.Now().UTC(),
	}
	if synthResult.Status == tts.StatusSynthesized {
		assistantMsg.AudioRef = assistantMsg.ID + ".mp3"
	}

	persisted := s.persistTurn(ctx, session, userMsg, assistantMsg)

	if synthResult.Status == tts.StatusSynthesized {
		if _, err := s.usage.RecordVoice(ctx, userID); err != nil {
			s.logger.Error("voice usage increment failed", zap.Error(err), zap.String("user_id", userID))
		}
	}

	return ChatResult{
		SessionID:   session.ID,
		UserMessage: userMsg,
		Reply:       assistantMsg,
		Audio:       synthResult.Audio,
		Persisted:   persisted,
	}, nil
}

// resolveSession carga la sesión referida verificando propiedad, o crea una
// nueva cuando el caller no envía session_id. El chequeo de propiedad ocurre
// antes de cualquier llamada a proveedores externos.
func (s *ChatService) resolveSession(ctx context.Context, userID, sessionID, firstMessage string) (domain.Session, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID != "" {
		session, err := s.sessions.GetByID(ctx, sessionID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.Session{}, ErrSessionNotFound
			}
			return domain.Session{}, fmt.Errorf("get session: %w", err)
		}
		if session.UserID != userID {
			return domain.Session{}, ErrSessionForbidden
		}
		return session, nil
	}

	now := time.Now().UTC()
	session := domain.Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		Title:     deriveTitle(firstMessage),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return domain.Session{}, fmt.Errorf("create session: %w", err)
	}
	return session, nil
}

// attemptSynthesis aplica el gate de entitlement y el pre-chequeo de cuota, y
// reduce cualquier fallo a un Result no fatal.
func (s *ChatService) attemptSynthesis(ctx context.Context, userID string, requested bool, text string) tts.Result {
	if !requested || s.synthesizer == nil {
		return tts.Skipped()
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		s.logger.Warn("load user for voice gate failed", zap.Error(err), zap.String("user_id", userID))
		return tts.Skipped()
	}

	allowed, err := s.usage.CanSynthesize(ctx, user)
	if err != nil {
		s.logger.Warn("voice quota check failed", zap.Error(err), zap.String("user_id", userID))
		return tts.Skipped()
	}
	if !allowed {
		return tts.Skipped()
	}

	result := s.synthesizer.Synthesize(ctx, text)
	if result.Status == tts.StatusFailed {
		s.logger.Warn("voice synthesis failed", zap.Error(result.Err), zap.String("user_id", userID))
	}
	return result
}

// persistTurn guarda el par usuario/asistente. Un fallo acá no tumba la
// respuesta: el usuario ya tiene su reply y la generación ya se gastó; se
// loguea para reconciliación.
func (s *ChatService) persistTurn(ctx context.Context, session domain.Session, userMsg, assistantMsg domain.Message) bool {
	if err := s.messages.Create(ctx, userMsg); err != nil {
		s.logger.Error("persist user message failed", zap.Error(err), zap.String("session_id", session.ID))
		return false
	}
	if err := s.messages.Create(ctx, assistantMsg); err != nil {
		s.logger.Error("persist assistant message failed", zap.Error(err), zap.String("session_id", session.ID))
		return false
	}
	if err := s.sessions.Touch(ctx, session.ID, assistantMsg.CreatedAt); err != nil {
		s.logger.Warn("touch session failed", zap.Error(err), zap.String("session_id", session.ID))
	}
	return true
}

func deriveTitle(message string) string {
	title := strings.Join(strings.Fields(message), " ")
	if runes := []rune(title); len(runes) > sessionTitleMaxLen {
		title = string(runes[:sessionTitleMaxLen])
	}
	return title
}
