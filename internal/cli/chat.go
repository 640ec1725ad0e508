package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/nianverse/storechat/internal/convo"
	"github.com/nianverse/storechat/internal/domain"
	"github.com/nianverse/storechat/internal/upload"
)

var (
	assistantColor = color.New(color.FgCyan)
	systemColor    = color.New(color.FgYellow)
	promptColor    = color.New(color.FgGreen, color.Bold)
	faintColor     = color.New(color.Faint)
)

func newChatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive registration conversation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := buildApp()
			if err != nil {
				return err
			}
			defer app.Close()

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return runChat(ctx, app)
		},
	}
}

func runChat(ctx context.Context, app *app) error {
	sess, err := app.sessions.EnsureSession(ctx)
	if err != nil {
		return err
	}
	faintColor.Printf("session %s (expires %s)\n", sess.ID, sess.ExpiresAt.Format("2006-01-02 15:04"))

	replayHistory(ctx, app, sess.ID)
	fmt.Println("Type a message, or /help for commands.")

	var staged []string
	scanner := bufio.NewScanner(os.Stdin)
	for {
		if len(staged) > 0 {
			faintColor.Printf("[%d file(s) attached] ", len(staged))
		}
		promptColor.Print("you> ")
		if !scanner.Scan() {
			fmt.Println()
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())

		if strings.HasPrefix(line, "/") {
			done, err := runChatCommand(ctx, app, line, &staged)
			if err != nil {
				systemColor.Printf("! %v\n", err)
			}
			if done {
				return nil
			}
			continue
		}

		if line == "" && len(staged) == 0 {
			continue
		}

		sess, ok := app.sessions.Current()
		if !ok {
			systemColor.Println("! session expired, starting a new one")
			var err error
			sess, err = app.sessions.EnsureSession(ctx)
			if err != nil {
				systemColor.Printf("! %v\n", err)
				continue
			}
		}

		files, err := openAttachments(staged)
		staged = nil
		if err != nil {
			systemColor.Printf("! %v\n", err)
			continue
		}

		result, err := app.orch.SendTurn(ctx, sess.ID, line, files)
		closeAttachments(files)
		if err != nil {
			systemColor.Printf("! %v\n", err)
			continue
		}
		if result == nil {
			continue
		}

		renderTurn(result)
	}
}

// runChatCommand handles a slash command. Returns true when the loop should
// exit.
func runChatCommand(ctx context.Context, app *app, line string, staged *[]string) (bool, error) {
	fields := strings.Fields(line)
	switch fields[0] {
	case "/quit", "/exit":
		return true, nil

	case "/help":
		fmt.Println("  /new             start a fresh session")
		fmt.Println("  /status          refresh and show collection progress")
		fmt.Println("  /attach <path>   attach a file to the next message")
		fmt.Println("  /history         reload the conversation from the server")
		fmt.Println("  /quit            leave the chat")
		return false, nil

	case "/new":
		if err := app.sessions.Clear(); err != nil {
			return false, err
		}
		app.tracker.Reset()
		sess, err := app.sessions.EnsureSession(ctx)
		if err != nil {
			return false, err
		}
		faintColor.Printf("session %s (expires %s)\n", sess.ID, sess.ExpiresAt.Format("2006-01-02 15:04"))
		return false, nil

	case "/status":
		sess, ok := app.sessions.Current()
		if !ok {
			return false, &convo.NoActiveSessionError{}
		}
		result, err := app.orch.Validate(ctx, sess.ID, true)
		if err != nil {
			return false, err
		}
		renderValidation(result)
		return false, nil

	case "/attach":
		if len(fields) < 2 {
			return false, fmt.Errorf("usage: /attach <path>")
		}
		for _, path := range fields[1:] {
			if _, err := os.Stat(path); err != nil {
				return false, err
			}
		}
		*staged = append(*staged, fields[1:]...)
		faintColor.Printf("attached %d file(s)\n", len(fields)-1)
		return false, nil

	case "/history":
		sess, ok := app.sessions.Current()
		if !ok {
			return false, &convo.NoActiveSessionError{}
		}
		replayHistory(ctx, app, sess.ID)
		return false, nil

	default:
		return false, fmt.Errorf("unknown command %s (try /help)", fields[0])
	}
}

// openAttachments validates staged paths and opens them for upload. On a
// validation failure nothing is opened and the whole batch is rejected, so
// the user can fix the file list before sending.
func openAttachments(paths []string) ([]upload.File, error) {
	if len(paths) == 0 {
		return nil, nil
	}

	files := make([]upload.File, 0, len(paths))
	for _, path := range paths {
		f, err := upload.FromPath(path)
		if err != nil {
			closeAttachments(files)
			return nil, err
		}
		files = append(files, f)
	}

	if errs := upload.ValidateAll(files); len(errs) > 0 {
		closeAttachments(files)
		return nil, fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return files, nil
}

func closeAttachments(files []upload.File) {
	for _, f := range files {
		if closer, ok := f.Content.(interface{ Close() error }); ok {
			closer.Close()
		}
	}
}

func replayHistory(ctx context.Context, app *app, sessionID string) {
	msgs, err := app.orch.LoadHistory(ctx, sessionID)
	if err != nil {
		faintColor.Println("(could not reach the server, showing local history)")
	}
	for _, msg := range msgs {
		renderMessage(msg)
	}
}

func renderTurn(result *convo.TurnResult) {
	for _, res := range result.Uploads {
		if !res.Success {
			systemColor.Printf("! upload failed: %s\n", res.Error)
		}
	}
	if result.AssistantMessage != nil {
		renderMessage(*result.AssistantMessage)
	}
	if result.SystemMessage != nil {
		renderMessage(*result.SystemMessage)
	}
	if result.State != nil {
		renderProgress(*result.State)
	}
	if result.Validation != nil {
		renderValidation(result.Validation)
	}
}

func renderMessage(msg domain.Message) {
	switch msg.Role {
	case domain.RoleUser:
		promptColor.Print("you> ")
		fmt.Println(msg.Content)
	case domain.RoleAssistant:
		assistantColor.Print("assistant> ")
		fmt.Println(msg.Content)
	case domain.RoleSystem:
		systemColor.Printf("! %s\n", msg.Content)
	}
}

func renderProgress(state domain.ConversationState) {
	bar := progressBar(state.ProgressPercentage, 20)
	faintColor.Printf("[%s] %d%% — %s", bar, state.ProgressPercentage, state.CurrentStep)
	if state.NextFieldToCollect != "" {
		faintColor.Printf(" (next: %s)", state.NextFieldToCollect)
	}
	fmt.Println()
}

func renderValidation(result *domain.ValidationResult) {
	if result.CanCreateStore {
		color.Green("All set: your store can be created.")
	} else {
		systemColor.Printf("Progress %d%%, not ready yet.\n", result.ProgressPercentage)
	}
	if len(result.MissingFields) > 0 {
		fmt.Printf("Missing: %s\n", strings.Join(result.MissingFields, ", "))
	}
	for key, value := range result.CollectedData {
		fmt.Printf("  %s: %v\n", key, value)
	}
}

func progressBar(percent, width int) string {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	filled := percent * width / 100
	return strings.Repeat("=", filled) + strings.Repeat(" ", width-filled)
}
