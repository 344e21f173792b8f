package models

// Attachment is an optional binary payload carried by a submission. A nil
// *Attachment means no file was provided.
type Attachment struct {
	Data     []byte `db:"data"`
	MimeType string `db:"mime_type"`
	Size     int64  `db:"size"`
	Filename string `db:"filename"`
}

// Present reports whether the attachment carries data.
func (a *Attachment) Present() bool {
	return a != nil && len(a.Data) > 0
}
