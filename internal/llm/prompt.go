package llm

import (
	"strings"

	"github.com/ragvision/ragvision/internal/models"
)

// SystemPrompt is the assistant persona used for general conversation.
const SystemPrompt = "You are RAGVision, an intelligent assistant capable of answering questions " +
	"based on user queries, uploaded documents, and images. Your core capabilities include:\n" +
	"- Analyzing and extracting text from PDFs, images (via OCR), and plain text files.\n" +
	"- Answering questions by searching through the uploaded content when available.\n" +
	"- Providing helpful and accurate responses even when no documents are provided, using general knowledge.\n" +
	"- Supporting multi-session interactions with context awareness.\n" +
	"Always explain your answers clearly and concisely. If documents are available, refer to them explicitly."

// groundedSystemPrompt instructs the model to answer from the supplied excerpts.
const groundedSystemPrompt = "You are RAGVision, an assistant that answers questions using excerpts " +
	"from the user's uploaded documents. Base your answer on the excerpts below and name the source " +
	"file when you use one. If the excerpts do not contain the answer, say so."

// BuildGroundedRequest builds a completion request that answers query from the
// retrieved chunks, labeling each excerpt with its source filename.
func BuildGroundedRequest(query string, chunks []models.RetrievedChunk) Request {
	var b strings.Builder
	b.WriteString("Document excerpts:\n\n")
	for _, rc := range chunks {
		b.WriteString("[")
		b.WriteString(rc.Chunk.Filename)
		b.WriteString("]\n")
		b.WriteString(rc.Chunk.Content)
		b.WriteString("\n\n")
	}
	b.WriteString("Question: ")
	b.WriteString(query)
	return Request{System: groundedSystemPrompt, Query: b.String()}
}
