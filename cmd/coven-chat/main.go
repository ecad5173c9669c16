// ABOUTME: Interactive terminal client for the coven conversation manager.
// ABOUTME: Wires config, storage, backend client, and the send pipeline together.

package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"

	"github.com/fatih/color"

	"github.com/2389/coven-client/internal/backend"
	"github.com/2389/coven-client/internal/config"
	"github.com/2389/coven-client/internal/conversation"
	"github.com/2389/coven-client/internal/store"
)

// getConfigPath returns the config path from flag, COVEN_CLIENT_CONFIG, or
// the default locations.
func getConfigPath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if path := os.Getenv("COVEN_CLIENT_CONFIG"); path != "" {
		return path
	}
	if _, err := os.Stat("client.yaml"); err == nil {
		return "client.yaml"
	}

	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "client.yaml"
		}
		configDir = homeDir + "/.config"
	}
	return configDir + "/coven/client.yaml"
}

func main() {
	configFlag := flag.String("config", "", "Path to config file")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, getConfigPath(*configFlag)); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("\nGoodbye!")
}

func run(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := setupLogger(cfg.Logging)

	kv, err := store.Open(cfg.Storage.Driver, cfg.Storage.Path)
	if err != nil {
		return fmt.Errorf("opening storage: %w", err)
	}
	defer kv.Close()

	archive := store.NewArchive(kv, cfg.Conversations.Max, logger)
	broadcaster := conversation.NewBroadcaster(logger)
	defer broadcaster.Close()

	convStore := conversation.NewStore(archive, broadcaster, logger)
	chat := backend.NewClient(cfg.Backend.URL, cfg.User.ID, cfg.User.Workspace, cfg.Backend.SendTimeout, logger)
	svc := conversation.NewService(convStore, chat, broadcaster, logger)

	events, _ := broadcaster.Subscribe(ctx)
	go func() {
		for event := range events {
			logger.Debug("state change",
				"event", string(event.Type),
				"conversation_id", event.ConversationID)
		}
	}()

	fmt.Printf("coven-chat connected to %s\n", cfg.Backend.URL)
	fmt.Println("Type a message and press Enter. /help for commands. Ctrl+C to quit.")
	fmt.Println()

	printConversation(svc.Current())

	return loop(ctx, svc)
}

func loop(ctx context.Context, svc *conversation.Service) error {
	scanner := bufio.NewScanner(os.Stdin)

	for {
		printPrompt(svc)

		// Read input with context awareness
		inputCh := make(chan string, 1)
		errCh := make(chan error, 1)

		go func() {
			if scanner.Scan() {
				inputCh <- scanner.Text()
			} else {
				if err := scanner.Err(); err != nil {
					errCh <- err
				} else {
					errCh <- io.EOF
				}
			}
		}()

		var input string
		select {
		case <-ctx.Done():
			return nil
		case err := <-errCh:
			if err == io.EOF {
				return nil
			}
			return fmt.Errorf("reading input: %w", err)
		case input = <-inputCh:
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		if input == "/quit" || input == "/exit" || input == "/q" {
			return nil
		}

		if strings.HasPrefix(input, "/") {
			handleCommand(ctx, svc, input)
			fmt.Println()
			continue
		}

		sendAndPrint(ctx, svc, input)
		fmt.Println()
	}
}

func handleCommand(ctx context.Context, svc *conversation.Service, input string) {
	cmd, args, _ := strings.Cut(input, " ")
	args = strings.TrimSpace(args)

	switch cmd {
	case "/new":
		conv := svc.NewConversation()
		fmt.Printf("Started %s\n", conv.ID)

	case "/list":
		listConversations(svc)

	case "/switch":
		conv, ok := resolveConversation(svc, args)
		if !ok {
			printError("unknown conversation %q", args)
			return
		}
		if err := svc.SwitchConversation(conv.ID); err != nil {
			printError("switch failed: %v", err)
			return
		}
		printConversation(svc.Current())

	case "/delete":
		target := svc.Current()
		if args != "" {
			conv, ok := resolveConversation(svc, args)
			if !ok {
				printError("unknown conversation %q", args)
				return
			}
			target = conv
		}
		if target == nil {
			printError("nothing to delete")
			return
		}
		if err := svc.DeleteConversation(ctx, target.ID); err != nil {
			printError("delete failed: %v", err)
			return
		}
		fmt.Printf("Deleted %q\n", target.Title)

	case "/clear":
		conv := svc.ClearAll()
		fmt.Printf("Cleared all conversations, started %s\n", conv.ID)

	case "/help":
		printHelp()

	default:
		printError("unknown command %s", cmd)
	}
}

// resolveConversation accepts either a 1-based list index or a conversation
// ID prefix.
func resolveConversation(svc *conversation.Service, arg string) (*conversation.Conversation, bool) {
	conversations := svc.List()
	if n, err := strconv.Atoi(arg); err == nil && n >= 1 && n <= len(conversations) {
		return conversations[n-1], true
	}
	for _, conv := range conversations {
		if strings.HasPrefix(conv.ID, arg) {
			return conv, true
		}
	}
	return nil, false
}

func sendAndPrint(ctx context.Context, svc *conversation.Service, text string) {
	current := svc.Current()
	if current == nil {
		current = svc.NewConversation()
	}

	if err := svc.SendMessage(ctx, current.ID, text); err != nil {
		switch {
		case errors.Is(err, conversation.ErrEmptyMessage):
			// Nothing to do
		case errors.Is(err, conversation.ErrSendInFlight):
			printError("still waiting for the previous reply")
		default:
			printError("failed to send, check your connection")
		}
		return
	}

	// The reply landed in the conversation the send was issued for,
	// even if /switch ran while waiting.
	for _, conv := range svc.List() {
		if conv.ID == current.ID && len(conv.Messages) > 0 {
			printMessage(conv.Messages[len(conv.Messages)-1])
			return
		}
	}
}

func printPrompt(svc *conversation.Service) {
	current := svc.Current()
	if current == nil {
		fmt.Print("> ")
		return
	}
	color.New(color.FgCyan).Printf("[%s]", current.Title)
	fmt.Print("> ")
}

func printConversation(conv *conversation.Conversation) {
	if conv == nil {
		return
	}
	color.New(color.FgCyan, color.Bold).Printf("── %s ──\n", conv.Title)
	for _, msg := range conv.Messages {
		printMessage(msg)
	}
}

func printMessage(msg conversation.Message) {
	switch msg.Role {
	case conversation.RoleUser:
		color.New(color.FgGreen).Print("you: ")
		fmt.Println(msg.Content)
	case conversation.RoleAssistant:
		label := "assistant"
		if msg.Agent != "" {
			label = msg.Agent
		}
		color.New(color.FgMagenta).Printf("%s: ", label)
		fmt.Println(msg.Content)
	}
}

func listConversations(svc *conversation.Service) {
	conversations := svc.List()
	if len(conversations) == 0 {
		fmt.Println("No conversations")
		return
	}
	currentID := ""
	if current := svc.Current(); current != nil {
		currentID = current.ID
	}
	for i, conv := range conversations {
		marker := "  "
		if conv.ID == currentID {
			marker = color.GreenString("* ")
		}
		gray := color.New(color.FgHiBlack)
		fmt.Printf("%s%d. %s ", marker, i+1, conv.Title)
		gray.Printf("(%d messages, %s)\n", len(conv.Messages), conv.UpdatedAt.Format("Jan 2 15:04"))
	}
}

func printHelp() {
	fmt.Println("Commands:")
	fmt.Println("  /new           Start a new conversation")
	fmt.Println("  /list          List conversations")
	fmt.Println("  /switch <n>    Switch to conversation by number or ID prefix")
	fmt.Println("  /delete [n]    Delete a conversation (current if omitted)")
	fmt.Println("  /clear         Delete all conversations")
	fmt.Println("  /help          Show this help")
	fmt.Println("  /quit          Exit")
}

func printError(format string, args ...any) {
	color.New(color.FgRed).Print("[error] ")
	fmt.Printf(format+"\n", args...)
}

func setupLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelWarn
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = &colorHandler{
			level: level,
		}
	}

	return slog.New(handler)
}

// colorHandler provides colorized log output with thread-safe writes.
// Logs go to stderr so they never interleave with chat output.
type colorHandler struct {
	mu     sync.Mutex
	level  slog.Level
	attrs  []slog.Attr
	groups []string
}

func (h *colorHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *colorHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	var buf strings.Builder

	buf.WriteString(color.HiBlackString(r.Time.Format("15:04:05") + " "))

	switch r.Level {
	case slog.LevelDebug:
		buf.WriteString(color.MagentaString("DBG "))
	case slog.LevelInfo:
		buf.WriteString(color.CyanString("INF "))
	case slog.LevelWarn:
		buf.WriteString(color.YellowString("WRN "))
	case slog.LevelError:
		buf.WriteString(color.New(color.FgRed, color.Bold).Sprint("ERR "))
	default:
		buf.WriteString("??? ")
	}

	buf.WriteString(r.Message)

	// Handler-level attrs first (from WithAttrs)
	for _, a := range h.attrs {
		buf.WriteString(color.HiBlackString(" " + a.Key + "="))
		buf.WriteString(a.Value.String())
	}

	r.Attrs(func(a slog.Attr) bool {
		buf.WriteString(color.HiBlackString(" " + a.Key + "="))
		buf.WriteString(a.Value.String())
		return true
	})

	buf.WriteString("\n")
	fmt.Fprint(os.Stderr, buf.String())
	return nil
}

func (h *colorHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newAttrs := make([]slog.Attr, len(h.attrs), len(h.attrs)+len(attrs))
	copy(newAttrs, h.attrs)
	newAttrs = append(newAttrs, attrs...)
	return &colorHandler{
		level:  h.level,
		attrs:  newAttrs,
		groups: h.groups,
	}
}

func (h *colorHandler) WithGroup(name string) slog.Handler {
	newGroups := make([]string, len(h.groups), len(h.groups)+1)
	copy(newGroups, h.groups)
	newGroups = append(newGroups, name)
	return &colorHandler{
		level:  h.level,
		attrs:  h.attrs,
		groups: newGroups,
	}
}
