package domain

// RefusalMessage is the fixed text returned when the corpus cannot support
// an answer. A refused Answer carries exactly this text and no citations.
const RefusalMessage = "I don't know based on the provided documents."

// Answer is the terminal result of a query: either generated text grounded
// in cited context, or a refusal. Both are successful outcomes; service
// failures surface as errors instead.
type Answer struct {
	// Text is the generated answer, or RefusalMessage when Refused.
	Text string `json:"answer"`

	// Citations are the context citations actually referenced by the text,
	// in first-use order. Empty when Refused.
	Citations []Citation `json:"citations"`

	// Refused reports that the grounding policy declined to answer.
	Refused bool `json:"refused"`

	// Confidence is the mean retrieval score of the context the answer was
	// generated from, in [0,1]. Zero when Refused.
	Confidence float64 `json:"confidence"`
}

// Refusal returns the canonical refused answer.
func Refusal() *Answer {
	return &Answer{
		Text:      RefusalMessage,
		Citations: []Citation{},
		Refused:   true,
	}
}
