package llm

import (
	"strings"

	"doclens/internal/domain"
)

// parseInstruction is the structured-output contract for parse mode. Tax
// lines are represented as regular line items whose description is the
// literal "TAX".
const parseInstruction = `Extract and structure data from the provided invoice text.
Return ONLY a JSON object, with no markdown formatting, no code fences, and no explanation.
Include any tax amounts as additional line items with the description "TAX".
The JSON must have the following structure:
{
  "number": "<invoice_number>",
  "date": "<invoice_date>",
  "dueDate": "<due_date>",
  "total": "<invoice_total>",
  "items": [
    {
      "description": "<item_description>",
      "quantity": "<item_quantity>",
      "unit_price": "<item_unit_price>"
    },
    {
      "description": "TAX",
      "quantity": "1",
      "unit_price": "<tax_amount>"
    }
  ]
}`

// BuildParsePrompt returns the prompt pair for structured invoice extraction.
// The system context embeds the extracted document text; the user instruction
// carries the exact output schema.
func BuildParsePrompt(text string) domain.PromptPair {
	return domain.PromptPair{
		System: "Invoice text data:\n" + text,
		User:   parseInstruction,
	}
}

// BuildCustomPrompt returns the prompt pair for free-form questions about a
// document. The answer must be safe to inject directly into a web page.
func BuildCustomPrompt(text, question string) domain.PromptPair {
	system := strings.Join([]string{
		"You are an assistant that helps users extract specific information from a file.",
		"Answer using only the file context provided below.",
		`Return a JSON object with the structure {"response": "<answer>"} where the answer is HTML`,
		`that is safe to render directly via "innerHTML" in a web app.`,
		"",
		"File context:",
		text,
	}, "\n")
	return domain.PromptPair{
		System: system,
		User:   question,
	}
}

// BuildRetrievalPrompt returns the prompt pair for the retrieval-augmented
// path, where the full document has been replaced with its most
// query-relevant excerpts.
func BuildRetrievalPrompt(context, question string) domain.PromptPair {
	user := strings.Join([]string{
		question,
		"The returned data should be a JSON object with the following structure:",
		`{"response": "single string with the response to the prompt"}`,
	}, "\n")
	return domain.PromptPair{
		System: "Invoice text data:\n" + context,
		User:   user,
	}
}
