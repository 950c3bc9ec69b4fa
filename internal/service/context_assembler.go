package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"companion-llm/internal/domain"
	"companion-llm/internal/llm"
	"companion-llm/internal/repository"
)

// ContextAssembler define el contrato para reconstruir el contexto conversacional
// que se envía al proveedor de completions.
type ContextAssembler interface {
	Assemble(ctx context.Context, sessionID string, incoming domain.Message) ([]llm.ChatMessage, error)
}

// BoundedContextAssembler lee el historial de la sesión en orden cronológico,
// agrega el mensaje entrante al final y recorta por cantidad y tamaño
// acumulado. Siempre se descartan primero los mensajes más viejos; el mensaje
// entrante nunca se descarta.
type BoundedContextAssembler struct {
	messageRepo repository.MessageRepository
	maxMessages int
	maxChars    int
}

const (
	defaultMaxMessages = 30
	defaultMaxChars    = 12000
)

func NewBoundedContextAssembler(messageRepo repository.MessageRepository, maxMessages, maxChars int) *BoundedContextAssembler {
	if maxMessages <= 0 {
		maxMessages = defaultMaxMessages
	}
	if maxChars <= 0 {
		maxChars = defaultMaxChars
	}
	return &BoundedContextAssembler{
		messageRepo: messageRepo,
		maxMessages: maxMessages,
		maxChars:    maxChars,
	}
}

func (s *BoundedContextAssembler) Assemble(ctx context.Context, sessionID string, incoming domain.Message) ([]llm.ChatMessage, error) {
	var history []domain.Message

	if strings.TrimSpace(sessionID) != "" {
		existing, err := s.messageRepo.ListBySessionID(ctx, sessionID)
		if err != nil {
			return nil, fmt.Errorf("list messages: %w", err)
		}
		history = existing
	}

	// El repo ya ordena ascendente; el sort estable cubre backends que no lo garanticen.
	sort.SliceStable(history, func(i, j int) bool {
		return history[i].CreatedAt.Before(history[j].CreatedAt)
	})

	history = append(history, incoming)

	if len(history) > s.maxMessages {
		history = history[len(history)-s.maxMessages:]
	}

	// Recorte por tamaño acumulado, contando desde el mensaje más nuevo hacia atrás.
	total := 0
	cut := 0
	for i := len(history) - 1; i >= 0; i-- {
		total += len(history[i].Content)
		if total > s.maxChars && i < len(history)-1 {
			cut = i + 1
			break
		}
	}
	history = history[cut:]

	out := make([]llm.ChatMessage, 0, len(history))
	for _, m := range history {
		role := m.Role
		if role != domain.RoleAssistant {
			role = domain.RoleUser
		}
		out = append(out, llm.ChatMessage{Role: role, Content: m.Content})
	}
	return out, nil
}
