package driven

// PromptStore supplies answer templates. Users may override the built-in
// templates; an override missing a required placeholder is ignored.
type PromptStore interface {
	// Load returns the template for name.
	Load(name string) (string, error)
}

// PromptTutorAnswer grounds an answer in retrieved passages.
const PromptTutorAnswer = "tutor_answer"

// Template placeholders.
const (
	PlaceholderContext  = "{context}"
	PlaceholderQuestion = "{question}"
)

// RequiredPlaceholders lists the placeholders each named template must carry.
var RequiredPlaceholders = map[string][]string{
	PromptTutorAnswer: {PlaceholderContext, PlaceholderQuestion},
}
