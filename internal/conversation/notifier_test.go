package conversation

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/hammamikhairi/ottohome/internal/logger"
)

func TestCLINotifier(t *testing.T) {
	var buf bytes.Buffer
	n := NewCLINotifier(logger.New(logger.LevelOff, nil), &buf)

	if err := n.Notify(context.Background(), "The fan has been turned on."); err != nil {
		t.Fatal(err)
	}
	if err := n.NotifyUrgent(context.Background(), "Error processing command: boom."); err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines: %q", len(lines), buf.String())
	}
	if !strings.Contains(lines[0], "The fan has been turned on.") {
		t.Errorf("line 0 = %q", lines[0])
	}
	if !strings.Contains(lines[1], "Error processing command: boom.") {
		t.Errorf("line 1 = %q", lines[1])
	}
}
