package agent

import (
	"finsage/store"

	"google.golang.org/genai"
)

// HistoryContents turns stored user and assistant messages into model
// contents, oldest first. Other roles are skipped.
func HistoryContents(msgs []store.Message) []*genai.Content {
	out := make([]*genai.Content, 0, len(msgs))
	for _, m := range msgs {
		switch m.Role {
		case store.RoleUser:
			out = append(out, genai.NewContentFromText(m.Content, genai.RoleUser))
		case store.RoleAssistant:
			out = append(out, genai.NewContentFromText(m.Content, genai.RoleModel))
		}
	}
	return out
}
