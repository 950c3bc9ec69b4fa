package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"companion-llm/internal/domain"
)

func seedMessages(repo *fakeMessageRepo, sessionID string, n int) {
	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < n; i++ {
		role := domain.RoleUser
		if i%2 == 1 {
			role = domain.RoleAssistant
		}
		repo.messages = append(repo.messages, domain.Message{
			ID:        fmt.Sprintf("m%d", i),
			SessionID: sessionID,
			Role:      role,
			Content:   fmt.Sprintf("mensaje %d", i),
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		})
	}
}

func TestAssemble_AppendsIncomingLastInOrder(t *testing.T) {
	repo := &fakeMessageRepo{}
	seedMessages(repo, "s1", 4)
	assembler := NewBoundedContextAssembler(repo, 30, 12000)

	incoming := domain.Message{
		SessionID: "s1",
		Role:      domain.RoleUser,
		Content:   "nuevo mensaje",
		CreatedAt: time.Now().UTC(),
	}
	out, err := assembler.Assemble(context.Background(), "s1", incoming)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	if len(out) != 5 {
		t.Fatalf("expected 5 messages, got %d", len(out))
	}
	if out[len(out)-1].Content != "nuevo mensaje" {
		t.Fatalf("expected incoming last, got %q", out[len(out)-1].Content)
	}
	for i := 0; i < 4; i++ {
		if out[i].Content != fmt.Sprintf("mensaje %d", i) {
			t.Fatalf("order broken at %d: %q", i, out[i].Content)
		}
	}
}

func TestAssemble_EmptySessionYieldsOnlyIncoming(t *testing.T) {
	repo := &fakeMessageRepo{}
	assembler := NewBoundedContextAssembler(repo, 30, 12000)

	out, err := assembler.Assemble(context.Background(), "", domain.Message{
		Role:    domain.RoleUser,
		Content: "primer mensaje",
	})
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	if len(out) != 1 || out[0].Content != "primer mensaje" {
		t.Fatalf("expected exactly the incoming message, got %+v", out)
	}
}

func TestAssemble_CapsByCountDroppingOldestFirst(t *testing.T) {
	repo := &fakeMessageRepo{}
	seedMessages(repo, "s1", 10)
	assembler := NewBoundedContextAssembler(repo, 5, 12000)

	out, err := assembler.Assemble(context.Background(), "s1", domain.Message{
		Role:      domain.RoleUser,
		Content:   "nuevo",
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	if len(out) != 5 {
		t.Fatalf("expected cap at 5, got %d", len(out))
	}
	if out[0].Content != "mensaje 6" {
		t.Fatalf("expected oldest dropped first, head is %q", out[0].Content)
	}
	if out[len(out)-1].Content != "nuevo" {
		t.Fatalf("incoming must never be dropped")
	}
}

func TestAssemble_CapsByCumulativeChars(t *testing.T) {
	repo := &fakeMessageRepo{}
	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 4; i++ {
		repo.messages = append(repo.messages, domain.Message{
			ID:        fmt.Sprintf("m%d", i),
			SessionID: "s1",
			Role:      domain.RoleUser,
			Content:   strings.Repeat("x", 100),
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		})
	}
	assembler := NewBoundedContextAssembler(repo, 30, 250)

	out, err := assembler.Assemble(context.Background(), "s1", domain.Message{
		Role:      domain.RoleUser,
		Content:   strings.Repeat("y", 100),
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	// 100 chars por mensaje con tope 250: entran el entrante y uno previo.
	if len(out) != 2 {
		t.Fatalf("expected 2 messages within char budget, got %d", len(out))
	}
	if !strings.HasPrefix(out[len(out)-1].Content, "y") {
		t.Fatalf("incoming must survive char capping")
	}
}

func TestAssemble_OversizedIncomingSurvives(t *testing.T) {
	repo := &fakeMessageRepo{}
	seedMessages(repo, "s1", 3)
	assembler := NewBoundedContextAssembler(repo, 30, 50)

	out, err := assembler.Assemble(context.Background(), "s1", domain.Message{
		Role:      domain.RoleUser,
		Content:   strings.Repeat("z", 500),
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("expected only the incoming message, got %d", len(out))
	}
	if len(out[0].Content) != 500 {
		t.Fatalf("incoming content must not be truncated")
	}
}

func TestAssemble_NormalizesUnknownRoles(t *testing.T) {
	repo := &fakeMessageRepo{}
	repo.messages = append(repo.messages, domain.Message{
		ID:        "m0",
		SessionID: "s1",
		Role:      "clone",
		Content:   "legacy role",
		CreatedAt: time.Now().UTC().Add(-time.Minute),
	})
	assembler := NewBoundedContextAssembler(repo, 30, 12000)

	out, err := assembler.Assemble(context.Background(), "s1", domain.Message{
		Role:      domain.RoleUser,
		Content:   "hola",
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	if out[0].Role != domain.RoleUser {
		t.Fatalf("unknown roles should map to user, got %q", out[0].Role)
	}
}
