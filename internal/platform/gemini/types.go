package gemini

// Role identifies the author of a transcript message.
type Role string

const (
	RoleUser   Role = "user"
	RoleModel  Role = "model"
	RoleSystem Role = "system"
)

// Message is one entry of the flat conversation transcript callers build.
// At most one system-role entry is expected; the adapter rewrites it into
// synthetic turns because the upstream API has no system role.
type Message struct {
	Role    Role
	Content string
}

// GenerationConfig holds the sampling parameters sent with every request.
// They are fixed per client, tuned for short-form analytical text, and not
// tunable per request.
type GenerationConfig struct {
	Temperature     float64 `json:"temperature"`
	TopP            float64 `json:"topP"`
	TopK            int     `json:"topK"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

// DefaultGenerationConfig returns the sampling defaults used when the
// client is constructed without overrides.
func DefaultGenerationConfig() GenerationConfig {
	return GenerationConfig{
		Temperature:     0.7,
		TopP:            0.95,
		TopK:            40,
		MaxOutputTokens: 2048,
	}
}

// Wire types for the generateContent endpoint.

type wirePart struct {
	Text string `json:"text"`
}

type wireContent struct {
	Role  string     `json:"role"`
	Parts []wirePart `json:"parts"`
}

type wireRequest struct {
	Contents         []wireContent    `json:"contents"`
	GenerationConfig GenerationConfig `json:"generationConfig"`
}

type wireCandidate struct {
	Content *wireContent `json:"content"`
}

type wireError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

type wireResponse struct {
	Candidates []wireCandidate `json:"candidates"`
	Error      *wireError      `json:"error"`
}

// text returns the first candidate's first part text, or "" when the
// response carries no extractable text.
func (r *wireResponse) text() string {
	if len(r.Candidates) == 0 || r.Candidates[0].Content == nil {
		return ""
	}
	if len(r.Candidates[0].Content.Parts) == 0 {
		return ""
	}
	return r.Candidates[0].Content.Parts[0].Text
}
