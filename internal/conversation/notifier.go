package conversation

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"

	"github.com/hammamikhairi/ottohome/internal/domain"
	"github.com/hammamikhairi/ottohome/internal/logger"
)

var _ domain.Notifier = (*CLINotifier)(nil)

var (
	replyStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	urgentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
)

// CLINotifier prints assistant replies to a terminal stream. Plain replies
// are cyan; urgent ones (fault messages) are bold red.
type CLINotifier struct {
	log *logger.Logger
	out io.Writer
}

// NewCLINotifier writes to out, or stdout when out is nil.
func NewCLINotifier(log *logger.Logger, out io.Writer) *CLINotifier {
	if out == nil {
		out = os.Stdout
	}
	return &CLINotifier{log: log, out: out}
}

func (n *CLINotifier) Notify(ctx context.Context, message string) error {
	n.log.Debug("notify: %s", message)
	_, err := fmt.Fprintln(n.out, replyStyle.Render(message))
	return err
}

func (n *CLINotifier) NotifyUrgent(ctx context.Context, message string) error {
	n.log.Debug("notify-urgent: %s", message)
	_, err := fmt.Fprintln(n.out, urgentStyle.Render(message))
	return err
}
