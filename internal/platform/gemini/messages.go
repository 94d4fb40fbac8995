package gemini

// systemAck is the synthetic model turn inserted after rewritten system
// instructions so the transcript still alternates user/model.
const systemAck = "Understood. I will follow these instructions."

// adaptMessages converts a flat transcript into the upstream wire format.
// The upstream API expects alternating user/model turns and has no system
// role, so a system entry (at most one is expected) becomes a synthetic
// leading user turn holding the instructions, immediately followed by a
// model acknowledgment, ahead of the real conversation. The remaining
// entries are passed through in their original order.
func adaptMessages(messages []Message) []wireContent {
	contents := make([]wireContent, 0, len(messages)+1)

	for _, m := range messages {
		if m.Role == RoleSystem {
			contents = append(contents,
				wireContent{
					Role:  string(RoleUser),
					Parts: []wirePart{{Text: "System instructions: " + m.Content}},
				},
				wireContent{
					Role:  string(RoleModel),
					Parts: []wirePart{{Text: systemAck}},
				},
			)
		}
	}

	for _, m := range messages {
		switch m.Role {
		case RoleSystem:
			// Already rewritten above.
		case RoleModel:
			contents = append(contents, wireContent{
				Role:  string(RoleModel),
				Parts: []wirePart{{Text: m.Content}},
			})
		default:
			contents = append(contents, wireContent{
				Role:  string(RoleUser),
				Parts: []wirePart{{Text: m.Content}},
			})
		}
	}

	return contents
}
