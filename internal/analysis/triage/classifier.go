package triage

import "strings"

// Category is the triage classification of a user submission.
type Category string

const (
	Crisis    Category = "crisis"
	Greeting  Category = "greeting"
	OpenQuery Category = "open_query"
)

var crisisKeywords = []string{
	"suicide", "self-harm", "kill myself",
}

var greetingKeywords = []string{
	"hello", "hi", "hey", "good morning", "good afternoon", "good evening",
	"how are you", "what's up", "sup", "yo", "greetings", "good day",
	"hey there", "hi there",
}

// mentalHealthKeywords suppresses the greeting category so that a message
// like "hi, I'm feeling anxious" still reaches the generation path.
var mentalHealthKeywords = []string{
	"stress", "anxiety", "depress", "sad", "lonely", "therapy", "cope",
	"mental", "feel", "emotion", "panic", "worthless", "hopeless", "helpless",
}

type rule struct {
	matches  func(normalized string) bool
	category Category
}

// rules are evaluated in order and the first match wins, so a crisis
// keyword always preempts any co-occurring greeting.
var rules = []rule{
	{matches: containsAny(crisisKeywords), category: Crisis},
	{matches: isPlainGreeting, category: Greeting},
}

// Classify maps raw text to exactly one category. Matching is
// case-insensitive substring containment with no tokenization, so "hi"
// matches inside "this".
func Classify(text string) Category {
	normalized := strings.ToLower(text)
	for _, r := range rules {
		if r.matches(normalized) {
			return r.category
		}
	}
	return OpenQuery
}

func isPlainGreeting(normalized string) bool {
	return containsAny(greetingKeywords)(normalized) &&
		!containsAny(mentalHealthKeywords)(normalized)
}

func containsAny(keywords []string) func(string) bool {
	return func(normalized string) bool {
		for _, word := range keywords {
			if strings.Contains(normalized, word) {
				return true
			}
		}
		return false
	}
}
