package guide

// ReplyType discriminates the wire shape of a Reply.
type ReplyType string

const (
	ReplyQuestion          ReplyType = "question"
	ReplySummaryAndOptions ReplyType = "summary_and_options"
	ReplySummaryOnly       ReplyType = "summary_only"
	ReplyError             ReplyType = "error"
)

// Reply is the structured answer of one Handle call. Exactly the fields of
// the active variant are populated; the rest are omitted from JSON.
type Reply struct {
	Type             ReplyType `json:"type"`
	Question         string    `json:"question,omitempty"`
	Options          []string  `json:"options,omitempty"`
	Explanation      string    `json:"explanation,omitempty"`
	FollowUpQuestion string    `json:"follow_up_question,omitempty"`
	Summary          string    `json:"summary,omitempty"`
}

// QuestionReply bootstraps a stage without consulting the model.
func QuestionReply(question string, options []string) Reply {
	return Reply{Type: ReplyQuestion, Question: question, Options: options}
}

// SummaryAndOptionsReply reports a successful per-stage generation.
func SummaryAndOptionsReply(explanation, followUp string, options []string) Reply {
	return Reply{Type: ReplySummaryAndOptions, Explanation: explanation, FollowUpQuestion: followUp, Options: options}
}

// SummaryOnlyReply carries the integrator's synthesized document.
func SummaryOnlyReply(summary string) Reply {
	return Reply{Type: ReplySummaryOnly, Summary: summary}
}

// ErrorReply converts any failure into a user-visible message.
func ErrorReply(summary string) Reply {
	return Reply{Type: ReplyError, Summary: summary}
}
