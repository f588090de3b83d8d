// Package llm abstracts the AI backends behind one Provider contract and
// routes calls between them.
package llm

// Chat roles understood by every backend.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn of a chat-style request.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request is either a single prompt or a message list. When both are set,
// Messages wins.
type Request struct {
	Prompt      string
	Messages    []Message
	Model       string   // empty means the provider default
	Temperature *float64 // nil means the provider default
	MaxTokens   int
}

// PromptRequest builds a single-prompt request.
func PromptRequest(prompt string) Request {
	return Request{Prompt: prompt}
}

// AsMessages returns the request as a chat message list.
func (r Request) AsMessages() []Message {
	if len(r.Messages) > 0 {
		out := make([]Message, len(r.Messages))
		copy(out, r.Messages)
		return out
	}
	return []Message{{Role: RoleUser, Content: r.Prompt}}
}

// Float returns a pointer to v, for Request.Temperature.
func Float(v float64) *float64 { return &v }

// ResponseKind tags which wire shape a Response was decoded from.
type ResponseKind int

const (
	// KindChat is a chat-completion response (choices[0].message.content).
	KindChat ResponseKind = iota + 1
	// KindLocal is a local-inference response (response or message.content).
	KindLocal
)

func (k ResponseKind) String() string {
	switch k {
	case KindChat:
		return "chat"
	case KindLocal:
		return "local"
	default:
		return "unknown"
	}
}

// Response is the tagged result of a provider call.
type Response struct {
	Kind     ResponseKind
	Text     string
	Provider string
	Model    string
}

// ChatResponse builds a KindChat response.
func ChatResponse(provider, model, text string) Response {
	return Response{Kind: KindChat, Text: text, Provider: provider, Model: model}
}

// LocalResponse builds a KindLocal response.
func LocalResponse(provider, model, text string) Response {
	return Response{Kind: KindLocal, Text: text, Provider: provider, Model: model}
}
