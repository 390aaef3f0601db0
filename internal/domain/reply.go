package domain

// Reply is the structured result of interpreting one utterance.
// Text is the reply shown to the user (markdown for recipes). VideoURLs is
// non-empty only for a known cook_dish request.
type Reply struct {
	Text      string
	VideoURLs []string
	Intent    IntentType
}

// Fixed reply texts shared by the interpreter and the shells.
const (
	FallbackText = "Invalid command. Please try a valid home-related command."
	VideosHeader = "YouTube Tutorials:"
)
