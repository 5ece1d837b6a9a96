package email

// Kind names what produced a message. It is sent as the X-MyVoice-Kind
// header so recipients can filter report mail.
type Kind string

const KindRegionDigest Kind = "region-digest"

// Attachment is a file carried inside the message.
type Attachment struct {
	Name        string
	ContentType string
	Data        []byte
}

// Message is one outgoing report email. TextBody is required; HTMLBody is
// sent as an alternative when set.
type Message struct {
	Kind        Kind
	To          []string
	Subject     string
	TextBody    string
	HTMLBody    string
	Attachments []Attachment
}
