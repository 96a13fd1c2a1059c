package prompt

import (
	"fmt"
	"strings"

	"docqa-be/pkg/rag"
)

// NoContextNotice is placed in the prompt when retrieval found nothing.
const NoContextNotice = "No relevant context was found in the uploaded document."

// SystemInstruction frames every generation request.
const SystemInstruction = "You are a document assistant. Answer only from the reference material you are given."

// QuestionBuilder renders the generation prompt for one question.
type QuestionBuilder struct {
	question string
	passages []rag.Passage
}

func NewQuestionBuilder(question string, passages []rag.Passage) *QuestionBuilder {
	return &QuestionBuilder{
		question: question,
		passages: passages,
	}
}

func (b *QuestionBuilder) Build() string {
	var prompt strings.Builder

	b.writeReferenceMaterial(&prompt)
	b.writeTask(&prompt)
	b.writeGuidelines(&prompt)
	b.writeUserQuestion(&prompt)

	return prompt.String()
}

func (b *QuestionBuilder) writeReferenceMaterial(prompt *strings.Builder) {
	prompt.WriteString("<reference_material>\n")
	if len(b.passages) == 0 {
		prompt.WriteString(NoContextNotice)
		prompt.WriteString("\n")
	}
	for i, p := range b.passages {
		fmt.Fprintf(prompt, "[passage %d]\n", i+1)
		prompt.WriteString(p.Text)
		prompt.WriteString("\n\n")
	}
	prompt.WriteString("</reference_material>\n\n")
}

func (b *QuestionBuilder) writeTask(prompt *strings.Builder) {
	prompt.WriteString("<task>\n")
	prompt.WriteString("You answer questions about a document the user uploaded.\n")
	prompt.WriteString("The reference material holds the passages of that document most related to the question.\n")
	prompt.WriteString("</task>\n\n")
}

func (b *QuestionBuilder) writeGuidelines(prompt *strings.Builder) {
	prompt.WriteString("<guidelines>\n")
	prompt.WriteString("1. Base your answer strictly on the reference material provided\n")
	prompt.WriteString("2. Be concise and answer the question directly\n")
	prompt.WriteString("3. If the material doesn't contain what's being asked, say so honestly\n")
	prompt.WriteString("</guidelines>\n\n")
}

func (b *QuestionBuilder) writeUserQuestion(prompt *strings.Builder) {
	prompt.WriteString("<user_question>\n")
	prompt.WriteString(b.question)
	prompt.WriteString("\n</user_question>\n\n")
	prompt.WriteString("Now provide your answer based on the reference material:")
}
