package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/hammamikhairi/ottohome/internal/conversation"
	"github.com/hammamikhairi/ottohome/internal/domain"
	"github.com/hammamikhairi/ottohome/internal/session"
	"github.com/hammamikhairi/ottohome/internal/speech"
	"github.com/hammamikhairi/ottohome/internal/storage"
)

var askCmd = &cobra.Command{
	Use:   "ask COMMAND...",
	Short: "Answer one or more commands and exit",
	Long: `Each argument is one command. Commands run in order against the same
device registry, so "ask 'turn on the fan' 'is the fan on'" answers
"The fan is on."`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)
	askCmd.Flags().Bool("speak", false, "also read the replies aloud")
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	recipes, err := catalog()
	if err != nil {
		return err
	}
	mgr := session.NewManager(storage.NewMemoryStore(app.log), recipes, app.log, session.WithTTL(0))

	var out domain.Notifier = conversation.NewCLINotifier(app.log, cmd.OutOrStdout())
	var n *speechWaiter
	if speak, _ := cmd.Flags().GetBool("speak"); speak {
		app.cfg.Speech.Enabled = true
		if nr := narrator(ctx, func(err error) { app.log.Warn("Text-to-speech failed: %v", err) }); nr != nil {
			out = speech.NewSpeakingNotifier(out, nr, app.log)
			n = &speechWaiter{nr}
		}
	}

	if err := answer(ctx, mgr, out, args); err != nil {
		return err
	}
	n.wait(ctx, 30*time.Second)
	return nil
}

// answer runs each command in one session so they share devices, and
// prints the replies. Unknown commands and faults go out as urgent.
func answer(ctx context.Context, mgr *session.Manager, out domain.Notifier, commands []string) error {
	sess, err := mgr.Create(ctx)
	if err != nil {
		return err
	}
	defer mgr.Close(context.Background(), sess.ID)

	for _, text := range commands {
		reply, err := mgr.Send(ctx, sess.ID, text)
		if err != nil {
			return err
		}
		msg := reply.Text
		if len(reply.VideoURLs) > 0 {
			msg += "\n\n" + domain.VideosHeader + "\n- " + strings.Join(reply.VideoURLs, "\n- ")
		}
		notify := out.Notify
		if reply.Intent == domain.IntentUnknown {
			notify = out.NotifyUrgent
		}
		if err := notify(ctx, msg); err != nil {
			return fmt.Errorf("printing reply: %w", err)
		}
	}
	return nil
}

// speechWaiter keeps the process alive until queued replies are spoken.
type speechWaiter struct{ n *speech.Narrator }

func (w *speechWaiter) wait(ctx context.Context, limit time.Duration) {
	if w == nil {
		return
	}
	deadline := time.After(limit)
	for w.n.Busy() {
		select {
		case <-ctx.Done():
			return
		case <-deadline:
			return
		case <-time.After(100 * time.Millisecond):
		}
	}
}
