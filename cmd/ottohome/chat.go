package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hammamikhairi/ottohome/internal/display"
	"github.com/hammamikhairi/ottohome/internal/domain"
	"github.com/hammamikhairi/ottohome/internal/engine"
	"github.com/hammamikhairi/ottohome/internal/metrics"
	"github.com/hammamikhairi/ottohome/internal/session"
	"github.com/hammamikhairi/ottohome/internal/speech"
	"github.com/hammamikhairi/ottohome/internal/storage"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with the assistant in the terminal",
	Long: `Opens an interactive chat. Type commands such as "turn on the fan" or
"make pasta". /clear wipes the chat history, /history shows it and quit exits.`,
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)

	f := chatCmd.Flags()
	f.Bool("speech", false, "read replies aloud with Azure TTS")
	f.Bool("voice", false, "accept spoken commands through whisper")
	f.String("whisper-bin", "", "path to the whisper-cpp CLI binary")
	f.String("whisper-model", "", "path to the whisper GGML model")
	f.Int("record-secs", 0, "seconds per voice recording chunk")
	f.String("metrics-addr", "", "serve Prometheus metrics on this address while chatting")
}

func applyChatFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	cfg := app.cfg
	if f.Changed("speech") {
		cfg.Speech.Enabled, _ = f.GetBool("speech")
	}
	if f.Changed("voice") {
		cfg.Voice.Enabled, _ = f.GetBool("voice")
	}
	if f.Changed("whisper-bin") {
		cfg.Voice.WhisperBin, _ = f.GetString("whisper-bin")
	}
	if f.Changed("whisper-model") {
		cfg.Voice.WhisperModel, _ = f.GetString("whisper-model")
	}
	if f.Changed("record-secs") {
		cfg.Voice.RecordSecs, _ = f.GetInt("record-secs")
	}
}

func runChat(cmd *cobra.Command, args []string) error {
	applyChatFlags(cmd)
	log := app.log

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	recipes, err := catalog()
	if err != nil {
		return err
	}
	m := metrics.New()
	mgr := session.NewManager(storage.NewMemoryStore(log), recipes, log,
		session.WithTTL(0),
		session.WithEngineOptions(engine.WithObserver(m.ObserveIntent)),
		session.WithActiveHook(m.SetActiveSessions),
	)
	sess, err := mgr.Create(ctx)
	if err != nil {
		return err
	}

	if addr, _ := cmd.Flags().GetString("metrics-addr"); addr != "" {
		go func() {
			if err := http.ListenAndServe(addr, m.Handler()); err != nil {
				log.Error("metrics: %v", err)
			}
		}()
	}

	ui := display.NewUI(func() []domain.Device {
		devices, _ := mgr.Devices(ctx, sess.ID)
		return devices
	})

	n := narrator(ctx, func(err error) {
		m.TTSFailed()
		ui.PrintWarning(fmt.Sprintf("Text-to-speech failed: %v", err))
	})
	e, err := ear(ctx, n)
	if err != nil {
		return err
	}

	var voice domain.SpeechProvider = speech.NewNoOp(log)
	if n != nil || e != nil {
		voice = speech.NewVoice(n, e)
	}

	c := &chat{
		sessions: mgr,
		id:       sess.ID,
		ui:       ui,
		voice:    voice,
		narrator: n,
	}

	fmt.Println(display.RenderBanner())
	if e != nil {
		fmt.Println(display.BannerStyle.Render(`  Voice is on: say "hey otto" then your command, or type it.`))
	}
	fmt.Println(display.BannerStyle.Render("  Try \"what can you do\". Type quit to exit."))
	fmt.Println()

	go func() {
		ui.WaitReady()
		c.run(ctx)
		ui.Quit()
	}()

	if err := ui.Run(); err != nil {
		log.Error("display: %v", err)
	}
	cancel()
	return mgr.Close(context.Background(), sess.ID)
}

type chat struct {
	sessions *session.Manager
	id       string
	ui       *display.UI
	voice    domain.SpeechProvider
	narrator *speech.Narrator // nil without speech
}

func (c *chat) run(ctx context.Context) {
	heard := make(chan string)
	go func() {
		for {
			text, err := c.voice.Listen(ctx)
			if err != nil {
				return
			}
			select {
			case heard <- text:
			case <-ctx.Done():
				return
			}
		}
	}()

	c.speak(ctx, speech.LineWelcome())
	typed := c.ui.InputChan()
	for {
		var input string
		select {
		case <-ctx.Done():
			return
		case input = <-typed:
		case input = <-heard:
			c.ui.PrintVoice(input)
		}

		input = strings.TrimSpace(input)
		switch strings.ToLower(input) {
		case "":
			continue
		case "quit", "exit", "/quit":
			c.speak(ctx, speech.LineBye())
			return
		case "/clear":
			if err := c.sessions.ClearHistory(ctx, c.id); err != nil {
				c.ui.PrintUrgent(err.Error())
				continue
			}
			c.ui.PrintHint(speech.LineCleared())
			continue
		case "/history":
			c.history(ctx)
			continue
		}

		if c.narrator != nil {
			c.narrator.Interrupt()
		}
		reply, err := c.sessions.Send(ctx, c.id, input)
		if err != nil {
			c.ui.PrintUrgent(err.Error())
			continue
		}
		c.ui.PrintReply(reply)
		c.speak(ctx, reply.Text)
	}
}

func (c *chat) speak(ctx context.Context, text string) {
	if err := c.voice.Speak(ctx, text); err != nil && !errors.Is(err, domain.ErrNotImplemented) {
		c.ui.PrintWarning(fmt.Sprintf("Text-to-speech failed: %v", err))
	}
}

func (c *chat) history(ctx context.Context) {
	turns, err := c.sessions.History(ctx, c.id)
	if err != nil {
		c.ui.PrintUrgent(err.Error())
		return
	}
	if len(turns) == 0 {
		c.ui.PrintHint("No messages yet.")
		return
	}
	for _, t := range turns {
		c.ui.PrintHint(fmt.Sprintf("[%s] %s: %s", t.At.Format("15:04:05"), t.Role, firstLine(t.Text)))
	}
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i] + " …"
	}
	return s
}
