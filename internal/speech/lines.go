package speech

import (
	"math/rand"
	"regexp"
	"strings"
)

// Spoken strings that are not replies from the assistant itself.

func LineWelcome() string {
	return "Hello. I'm listening for your home commands."
}

func LineBye() string {
	return "Goodbye."
}

func LineCleared() string {
	return "Chat history cleared."
}

var listeningFillers = []string{
	"Yes?",
	"I'm listening.",
	"Go ahead.",
	"What can I do?",
}

// LineListening is spoken when the wake word is heard on its own.
func LineListening() string {
	return listeningFillers[rand.Intn(len(listeningFillers))]
}

var (
	ansiCodes    = regexp.MustCompile(`\x1b\[[0-9;]*m`)
	mdHeading    = regexp.MustCompile(`(?m)^#+\s*`)
	mdEmphasis   = regexp.MustCompile(`\*{1,2}([^*\n]+)\*{1,2}`)
	stepNumber   = regexp.MustCompile(`(?m)^(\d+)\.\s+`)
	numberRange  = regexp.MustCompile(`(\d+)-(\d+)`)
	urlPattern   = regexp.MustCompile(`https?://\S+`)
	blankRuns    = regexp.MustCompile(`\n{2,}`)
	spaceRuns    = regexp.MustCompile(`[ \t]{2,}`)
	speechTokens = strings.NewReplacer(
		"°C", " degrees Celsius",
		"%", " percent",
		"_", " ",
	)
)

// ForSpeech rewrites a reply for the synthesizer. Markdown and links are
// dropped, so "thermostat: 22°C" is read as "thermostat: 22 degrees Celsius".
func ForSpeech(text string) string {
	s := ansiCodes.ReplaceAllString(text, "")
	s = urlPattern.ReplaceAllString(s, "")
	s = mdHeading.ReplaceAllString(s, "")
	s = mdEmphasis.ReplaceAllString(s, "$1")
	s = strings.ReplaceAll(s, "*", "")
	s = stepNumber.ReplaceAllString(s, "Step $1. ")
	s = numberRange.ReplaceAllString(s, "$1 to $2")
	s = speechTokens.Replace(s)
	s = blankRuns.ReplaceAllString(s, "\n")
	s = spaceRuns.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
