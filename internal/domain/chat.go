package domain

// ChatMessage is one persisted chat entry. Timestamp is epoch millis.
type ChatMessage struct {
	ID         string `json:"id"`
	Text       string `json:"text"`
	SenderID   string `json:"senderId"`
	ReceiverID string `json:"receiverId"`
	Timestamp  int64  `json:"timestamp"`
}
