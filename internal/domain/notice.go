package domain

// NoticeLevel is the flash message category rendered by the client.
type NoticeLevel string

const (
	NoticeSuccess NoticeLevel = "success"
	NoticeError   NoticeLevel = "error"
)

// Notice is a one-shot user-facing message: queued by one operation,
// returned and cleared by the next take.
type Notice struct {
	Level   NoticeLevel `json:"level"`
	Message string      `json:"message"`
}
