package engine

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/hammamikhairi/ottohome/internal/domain"
)

const unknownRecipeFormat = "Sorry, I don’t have a recipe for %s. Try 'make pasta', 'cook chicken', 'make pizza', 'make salad', 'make cake', or 'make soup'!"

func text(format string, args ...any) domain.Reply {
	return domain.Reply{Text: fmt.Sprintf(format, args...)}
}

// inThe renders the optional " in the <loc>" suffix used by confirmations.
func inThe(loc string) string {
	if loc == "" {
		return ""
	}
	return " in the " + loc
}

// inLoc renders the shorter " in <loc>" suffix used by status reports.
func inLoc(loc string) string {
	if loc == "" {
		return ""
	}
	return " in " + loc
}

func deviceCountLine(n int) string {
	return fmt.Sprintf("I can control %d devices: light, TV, thermostat, fan, door lock, blinds, speaker, oven, vacuum, garage door, sprinkler, humidifier, coffee maker, and security camera.", n)
}

func listRecipesLine(names []string) string {
	return fmt.Sprintf("I can provide recipes for: %s. Try saying 'make [recipe]' for details and YouTube tutorials!", strings.Join(names, ", "))
}

// homeStatusLines renders one line per device in canonical order.
func homeStatusLines(devices []domain.Device) string {
	var b strings.Builder
	b.WriteString("Home status:")
	for _, d := range devices {
		b.WriteString("\n")
		b.WriteString(string(d.Name))
		b.WriteString(inLoc(d.Location))
		b.WriteString(": ")
		switch d.Name {
		case domain.Thermostat:
			fmt.Fprintf(&b, "%d°C", d.Temperature)
		case domain.Oven:
			fmt.Fprintf(&b, "%d°C, %s", d.Temperature, d.State)
		case domain.Humidifier:
			fmt.Fprintf(&b, "%d%%, %s", d.Level, d.State)
		case domain.Speaker:
			if d.Playing != "" {
				fmt.Fprintf(&b, "%s, playing %s", d.State, d.Playing)
			} else {
				fmt.Fprintf(&b, "%s, not playing", d.State)
			}
		default:
			b.WriteString(string(d.State))
		}
	}
	return b.String()
}

func securityLine(door, camera domain.Device) string {
	return fmt.Sprintf("Security check: Door%s is %s, Security camera%s is %s.",
		inLoc(door.Location), door.State, inLoc(camera.Location), camera.State)
}

// recipeMarkdown renders a recipe as a markdown heading and numbered steps.
func recipeMarkdown(dish string, steps []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "### Recipe for %s\n\n", capitalize(dish))
	for i, step := range steps {
		fmt.Fprintf(&b, "%d. %s\n\n", i+1, step)
	}
	b.WriteString("*Watch these YouTube videos for guidance:*")
	return b.String()
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r, n := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + strings.ToLower(s[n:])
}
