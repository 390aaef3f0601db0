// Package display provides the terminal chat UI using Bubble Tea.
//
// The [UI] keeps a device status bar and an input prompt at the bottom of
// the terminal. Replies are printed above the rendered area via
// Program.Println, so concurrent writers never garble the display.
package display

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/hammamikhairi/ottohome/internal/domain"
)

const prompt = "ottohome> "

var (
	barBg = lipgloss.NewStyle().
		Background(lipgloss.Color("#27272a")).
		Foreground(lipgloss.Color("#a1a1aa"))

	activeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#fde68a"))

	alertStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#fca5a5"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#a1a1aa"))

	sepStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#52525b"))

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#94a3b8"))

	// BannerStyle colours the startup banner.
	BannerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#94a3b8"))

	chatStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#bae6fd"))

	linkStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#bbf7d0")).
			Underline(true)

	secondaryStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#71717a"))

	urgentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#fca5a5"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#fcd34d")).
			Italic(true)

	echoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#a1a1aa"))
)

// DeviceSource returns the current device snapshot for the status bar.
type DeviceSource func() []domain.Device

// Markdown renders a markdown reply for the terminal.
type Markdown func(string) (string, error)

// NewMarkdown returns a glamour renderer wrapping at width columns.
func NewMarkdown(width int) Markdown {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil
	}
	return r.Render
}

// UI manages the terminal through Bubble Tea.
//
// Call [NewUI] then [UI.Run] (blocking). Other goroutines may call the
// Print helpers and read [UI.InputChan] once [UI.WaitReady] returns.
type UI struct {
	program *tea.Program
	devices DeviceSource
	md      Markdown
	inputCh chan string
	readyCh chan struct{}
	quitCh  chan struct{}
	done    atomic.Bool
}

// NewUI creates the display. devices may be nil, which hides the bar.
func NewUI(devices DeviceSource) *UI {
	return &UI{
		devices: devices,
		md:      NewMarkdown(termWidth() - 4),
		inputCh: make(chan string, 16),
		readyCh: make(chan struct{}),
		quitCh:  make(chan struct{}),
	}
}

// Println prints above the prompt, or to stdout when the program is not
// running.
func (u *UI) Println(a ...any) {
	if u.program != nil && !u.done.Load() {
		u.program.Println(a...)
	} else {
		fmt.Println(a...)
	}
}

// InputChan returns completed input lines.
func (u *UI) InputChan() <-chan string { return u.inputCh }

// PrintReply prints an assistant reply, rendering recipes as markdown and
// listing tutorial links underneath.
func (u *UI) PrintReply(r domain.Reply) {
	u.Println(renderReply(r, u.md))
}

// PrintHint prints a dimmed line.
func (u *UI) PrintHint(text string) {
	u.Println(secondaryStyle.Render("  " + text))
}

// PrintUrgent prints an error line.
func (u *UI) PrintUrgent(text string) {
	u.Println(urgentStyle.Render("  " + text))
}

// PrintWarning prints a non-fatal warning, such as a speech failure.
func (u *UI) PrintWarning(text string) {
	u.Println(warnStyle.Render("  ! " + text))
}

// PrintVoice prints a line recognised by the ear.
func (u *UI) PrintVoice(text string) {
	u.Println(secondaryStyle.Render("[voice] ") + echoStyle.Render(text))
}

// PrintUserInput echoes a typed command into the scrollback.
func (u *UI) PrintUserInput(text string) {
	u.Println(promptStyle.Render(strings.TrimSpace(prompt)) + " " + echoStyle.Render(text))
}

// WaitReady blocks until the event loop is running.
func (u *UI) WaitReady() { <-u.readyCh }

// Quit tells Bubble Tea to exit.
func (u *UI) Quit() {
	if u.program != nil {
		u.program.Quit()
	}
}

// QuitChan is closed when Run returns.
func (u *UI) QuitChan() <-chan struct{} { return u.quitCh }

// Run starts the event loop and blocks until quit.
func (u *UI) Run() error {
	ti := textinput.New()
	// Plain prompt: styled prompts break textinput's width math.
	ti.Prompt = prompt
	ti.PromptStyle = promptStyle
	ti.TextStyle = echoStyle
	ti.Cursor.Style = promptStyle
	ti.Placeholder = "turn on the light in the kitchen"
	ti.Focus()
	ti.CharLimit = 500
	ti.Width = 60

	m := model{
		devices: u.devices,
		input:   ti,
		inputCh: u.inputCh,
		readyCh: u.readyCh,
		echo:    u.PrintUserInput,
	}

	u.program = tea.NewProgram(m)
	_, err := u.program.Run()
	u.done.Store(true)
	close(u.quitCh)
	return err
}

type model struct {
	devices DeviceSource
	input   textinput.Model
	inputCh chan<- string
	readyCh chan struct{}
	echo    func(string)
	status  []string
	width   int
}

type tickMsg time.Time

func (m model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		tick(),
		tea.SetWindowTitle("OttoHome"),
		func() tea.Msg {
			close(m.readyCh)
			return nil
		},
	)
}

func tick() tea.Cmd {
	return tea.Tick(500*time.Millisecond, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			v := strings.TrimSpace(m.input.Value())
			m.input.Reset()
			if v == "" {
				return m, nil
			}
			m.inputCh <- v
			echo := m.echo
			return m, func() tea.Msg {
				echo(v)
				return nil
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		if msg.Width > len(prompt) {
			m.input.Width = msg.Width - len(prompt)
		}
		return m, nil

	case tickMsg:
		if m.devices != nil {
			m.status = statusParts(m.devices())
		}
		return m, tick()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m model) View() string {
	var b strings.Builder
	if len(m.status) > 0 {
		w := m.width
		if w <= 0 {
			w = 80
		}
		content := " " + strings.Join(m.status, sepStyle.Render("  │  ")) + " "
		b.WriteString(barBg.Width(w).Render(content))
		b.WriteByte('\n')
	}
	b.WriteByte('\n')
	b.WriteString(m.input.View())
	return b.String()
}

// statusParts summarises the devices worth glancing at: everything
// running or open, an unlocked door, and the thermostat setting.
func statusParts(devices []domain.Device) []string {
	var parts []string
	active := 0
	for _, d := range devices {
		name := strings.ReplaceAll(string(d.Name), "_", " ")
		switch {
		case d.Name == domain.Thermostat:
			parts = append(parts, labelStyle.Render(name+": ")+activeStyle.Render(fmt.Sprintf("%d°C", d.Temperature)))
			if d.State == domain.StateOn {
				active++
			}
		case d.State == domain.StateUnlocked:
			parts = append(parts, alertStyle.Render(name+": unlocked"))
		case d.State == domain.StateOn || d.State == domain.StateOpen:
			active++
			label := string(d.State)
			if d.Name == domain.Speaker && d.Playing != "" {
				label = "playing " + d.Playing
			}
			parts = append(parts, labelStyle.Render(name+": ")+activeStyle.Render(label))
		}
	}
	if active == 0 {
		parts = append(parts, labelStyle.Render("all quiet"))
	}
	return parts
}

// renderReply formats a reply for the scrollback. md may be nil.
func renderReply(r domain.Reply, md Markdown) string {
	var b strings.Builder
	text := chatStyle.Render(indent(r.Text))
	if md != nil && strings.Contains(r.Text, "###") {
		if out, err := md(r.Text); err == nil {
			text = strings.TrimRight(out, "\n")
		}
	}
	b.WriteString(text)

	if len(r.VideoURLs) > 0 {
		b.WriteString("\n\n")
		b.WriteString(secondaryStyle.Render("  " + domain.VideosHeader))
		for _, u := range r.VideoURLs {
			b.WriteString("\n")
			b.WriteString("  - " + linkStyle.Render(u))
		}
	}
	return b.String()
}

func indent(s string) string {
	return "  " + strings.ReplaceAll(s, "\n", "\n  ")
}
