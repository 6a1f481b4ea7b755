package story

// ExtractPairs walks the transcript past the welcome message, groups it
// into (user action, scene response) pairs, and keeps only the most
// recent maxScenes pairs. A trailing unpaired message is dropped.
func ExtractPairs(messages []Message, maxScenes int) (actions, scenes []string) {
	if len(messages) < 2 {
		return nil, nil
	}

	body := messages[1:]
	pairCount := len(body) / 2
	if maxScenes >= 0 && pairCount > maxScenes {
		// Skip the oldest pairs.
		body = body[(pairCount-maxScenes)*2:]
		pairCount = maxScenes
	}

	actions = make([]string, 0, pairCount)
	scenes = make([]string, 0, pairCount)
	for i := 0; i+1 < len(body); i += 2 {
		actions = append(actions, body[i].Content)
		scenes = append(scenes, body[i+1].Content)
	}
	return actions, scenes
}

// InterleavePairs rebuilds the alternating action/scene sequence the
// workflows consume as scene history.
func InterleavePairs(actions, scenes []string) []string {
	n := len(actions)
	if len(scenes) < n {
		n = len(scenes)
	}
	out := make([]string, 0, n*2)
	for i := 0; i < n; i++ {
		out = append(out, actions[i], scenes[i])
	}
	return out
}
