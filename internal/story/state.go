package story

import (
	"time"
)

// WelcomeMessage opens every new story's chat transcript.
const WelcomeMessage = "Welcome to the Interactive Narrative! " +
	"Type your character's actions to see how the story unfolds. " +
	"Each response will become your new current scene, building the narrative."

// Message is one chat transcript entry.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// StateMeta records how a state was produced.
type StateMeta struct {
	Vision       string `json:"original_vision,omitempty"`
	UserAction   string `json:"user_action,omitempty"`
	Provider     string `json:"provider,omitempty"`
	Model        string `json:"model,omitempty"`
	WorkflowType string `json:"workflow_type,omitempty"`
	Regenerated  bool   `json:"regenerated,omitempty"`
	Initial      bool   `json:"initial_state,omitempty"`
}

// StoryState is a full snapshot of an interactive story at one moment.
type StoryState struct {
	Plot         string    `json:"plot"`
	CurrentScene string    `json:"current_scene"`
	SceneHistory []string  `json:"scene_history"`
	ChatMessages []Message `json:"chat_messages"`
	Timestamp    time.Time `json:"timestamp"`
	Meta         StateMeta `json:"metadata"`
}

// IsContinuationOf reports whether this state only appends new messages
// to other without rewriting anything that came before. The welcome
// message is skipped on both sides.
func (s *StoryState) IsContinuationOf(other *StoryState) bool {
	if other == nil {
		return false
	}
	if s.Plot != other.Plot {
		return false
	}

	selfMessages := tailMessages(s.ChatMessages)
	otherMessages := tailMessages(other.ChatMessages)

	if len(selfMessages) <= len(otherMessages) {
		return false
	}

	for i := range otherMessages {
		if selfMessages[i] != otherMessages[i] {
			return false
		}
	}
	return true
}

func tailMessages(messages []Message) []Message {
	if len(messages) == 0 {
		return nil
	}
	return messages[1:]
}
