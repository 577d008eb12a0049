package message

// Inbound is a single webhook event from the messaging transport. The
// media reference is the transport's opaque URL for the attached image;
// an empty value means the user sent a message without one.
type Inbound struct {
	From     string `json:"from"`
	MediaURL string `json:"media_url,omitempty"`
}

// Reply carries the text returned on the webhook response document.
type Reply struct {
	Text string `json:"text"`
}
