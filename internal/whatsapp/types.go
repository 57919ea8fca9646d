package whatsapp

// Inbound webhook envelope, as delivered by the Cloud API. Only the fields
// the bot reads are modeled.

// WebhookPayload is the top-level POST body.
type WebhookPayload struct {
	Object string  `json:"object"`
	Entry  []Entry `json:"entry"`
}

// Entry groups changes for one business account.
type Entry struct {
	ID      string   `json:"id"`
	Changes []Change `json:"changes"`
}

// Change carries one batch of inbound messages.
type Change struct {
	Field string `json:"field"`
	Value Value  `json:"value"`
}

// Value holds the messages and their metadata.
type Value struct {
	MessagingProduct string    `json:"messaging_product"`
	Messages         []Message `json:"messages"`
}

// Message is one inbound user message.
type Message struct {
	From        string       `json:"from"`
	ID          string       `json:"id"`
	Timestamp   string       `json:"timestamp"`
	Type        string       `json:"type"`
	Text        *Text        `json:"text,omitempty"`
	Interactive *Interactive `json:"interactive,omitempty"`
}

// Text is the body of a plain text message.
type Text struct {
	Body string `json:"body"`
}

// Interactive is a structured reply: a list row or a button tap.
type Interactive struct {
	Type        string `json:"type"`
	ListReply   *Reply `json:"list_reply,omitempty"`
	ButtonReply *Reply `json:"button_reply,omitempty"`
}

// Reply identifies the selected option.
type Reply struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// Outbound payloads for the Graph API messages endpoint.

// outboundText is a plain text send.
type outboundText struct {
	MessagingProduct string       `json:"messaging_product"`
	To               string       `json:"to"`
	Type             string       `json:"type"`
	Text             outboundBody `json:"text"`
}

type outboundBody struct {
	Body string `json:"body"`
}

// outboundInteractive is a structured list or button send.
type outboundInteractive struct {
	MessagingProduct string             `json:"messaging_product"`
	To               string             `json:"to"`
	Type             string             `json:"type"`
	Interactive      interactivePayload `json:"interactive"`
}

type interactivePayload struct {
	Type   string             `json:"type"`
	Header *interactiveHeader `json:"header,omitempty"`
	Body   outboundBody       `json:"body"`
	Action interactiveAction  `json:"action"`
}

type interactiveHeader struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type interactiveAction struct {
	Button   string              `json:"button,omitempty"`
	Sections []interactiveSect   `json:"sections,omitempty"`
	Buttons  []interactiveButton `json:"buttons,omitempty"`
}

type interactiveSect struct {
	Rows []interactiveRow `json:"rows"`
}

type interactiveRow struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

type interactiveButton struct {
	Type  string         `json:"type"`
	Reply interactiveRef `json:"reply"`
}

type interactiveRef struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}
