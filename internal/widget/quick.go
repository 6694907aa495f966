package widget

// QuickQuestions are the canned prompts offered next to the input field.
var QuickQuestions = []string{
	"What courses do you offer?",
	"Tell me about internships",
	"Do you have Python training?",
	"How can I contact you?",
}
