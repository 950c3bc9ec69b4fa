package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"companion-llm/internal/config"
	"companion-llm/internal/db"
	"companion-llm/internal/domain"
	"companion-llm/internal/llm"
	"companion-llm/internal/repository"
	"companion-llm/internal/service"
	"companion-llm/internal/tts"
)

func main() {
	ctx := context.Background()
	reader := bufio.NewReader(os.Stdin)

	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := zap.NewExample()
	defer logger.Sync()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer pool.Close()

	userRepo := repository.NewPgUserRepository(pool)
	sessionRepo := repository.NewPgSessionRepository(pool)
	messageRepo := repository.NewPgMessageRepository(pool)
	usageRepo := repository.NewPgUsageRepository(pool)

	completionClient := llm.NewHTTPClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel, cfg.LLMMaxTokens, logger)

	var synthesizer tts.Synthesizer = tts.NewDisabled("tts disabled in cli")
	if cfg.TTSAPIKey != "" {
		synthesizer = tts.NewHTTPClient(cfg.TTSBaseURL, cfg.TTSAPIKey, cfg.TTSModel, cfg.TTSVoice, logger)
	}

	assembler := service.NewBoundedContextAssembler(messageRepo, cfg.ContextMaxMessages, cfg.ContextMaxChars)
	usageSvc := service.NewUsageService(usageRepo)
	chatSvc := service.NewChatService(logger, sessionRepo, messageRepo, userRepo, assembler, completionClient, synthesizer, usageSvc, service.PersonaPrompt)

	user, err := ensureUser(ctx, userRepo, "cli_test@example.com")
	if err != nil {
		log.Fatal(err)
	}

	sessionID, err := pickSession(ctx, reader, sessionRepo, user.ID)
	if err != nil {
		log.Fatal(err)
	}

	audioRequested := askYesNo(reader, "¿Pedir audio en cada turno? [s/N]: ")

	fmt.Println("---- Modo Chat (escribe 'salir' para terminar) ----")
	for {
		fmt.Print("Tu > ")
		text, err := reader.ReadString('\n')
		if err != nil {
			log.Fatalf("leer input: %v", err)
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		if strings.EqualFold(text, "salir") || strings.EqualFold(text, "exit") {
			fmt.Println("Saliendo del chat...")
			return
		}

		result, err := chatSvc.Chat(ctx, user.ID, service.ChatInput{
			SessionID:      sessionID,
			Message:        text,
			AudioRequested: audioRequested,
		})
		if err != nil {
			fmt.Printf("error generando respuesta: %v\n", err)
			continue
		}
		sessionID = result.SessionID

		fmt.Printf("Asistente > %s\n", result.Reply.Content)
		if result.Audio != "" {
			fmt.Printf("(audio sintetizado: %d bytes base64)\n", len(result.Audio))
		}
		if !result.Persisted {
			fmt.Println("(aviso: el turno no quedó persistido)")
		}
	}
}

func ensureUser(ctx context.Context, repo repository.UserRepository, email string) (domain.User, error) {
	user, err := repo.GetByEmail(ctx, email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, err
	}

	user = domain.User{
		ID:        uuid.NewString(),
		Email:     email,
		Tier:      domain.TierTest,
		CreatedAt: time.Now().UTC(),
	}
	if err := repo.Create(ctx, user); err != nil {
		return domain.User{}, err
	}
	return user, nil
}

func pickSession(ctx context.Context, reader *bufio.Reader, repo repository.SessionRepository, userID string) (string, error) {
	sessions, err := repo.ListByUserID(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("listar sesiones: %w", err)
	}

	if len(sessions) == 0 {
		fmt.Println("No hay sesiones previas; se creará una nueva con el primer mensaje.")
		return "", nil
	}

	fmt.Println("Sesiones disponibles:")
	for i, s := range sessions {
		fmt.Printf("[%d] %s (%s)\n", i+1, s.Title, s.UpdatedAt.Format("2006-01-02 15:04"))
	}
	fmt.Println("[N] Nueva sesión")
	fmt.Print("Selecciona una sesión: ")

	choice, _ := reader.ReadString('\n')
	choice = strings.TrimSpace(choice)
	if strings.EqualFold(choice, "N") || choice == "" {
		return "", nil
	}
	idx, err := strconv.Atoi(choice)
	if err != nil || idx < 1 || idx > len(sessions) {
		fmt.Println("Selección inválida; se creará una sesión nueva.")
		return "", nil
	}
	return sessions[idx-1].ID, nil
}

func askYesNo(reader *bufio.Reader, prompt string) bool {
	fmt.Print(prompt)
	line, _ := reader.ReadString('\n')
	line = strings.TrimSpace(strings.ToLower(line))
	return line == "s" || line == "si" || line == "y" || line == "yes"
}
