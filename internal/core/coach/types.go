package coach

import "time"

// Actions the coach understands
const (
	ActionAdvise  = "advise"
	ActionAnalyze = "analyze"
	ActionChat    = "chat"
)

// Message roles
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Where an answer came from
const (
	SourceBuiltin = "builtin"
	SourceProxy   = "proxy"
)

const (
	defaultMaxTokens = 1024
	maxMaxTokens     = 4096
	maxMessages      = 40
	maxMessageLength = 8000
)

var validActions = map[string]bool{
	ActionAdvise:  true,
	ActionAnalyze: true,
	ActionChat:    true,
}

// Message is one chat turn
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// AdviceRequest asks the coach for advice
type AdviceRequest struct {
	UserID        string    `json:"-"`
	RaceSessionID string    `json:"raceSessionId,omitempty"`
	Action        string    `json:"action"`
	Model         string    `json:"model,omitempty"`
	Messages      []Message `json:"messages"`
	Skills        []string  `json:"skills,omitempty"`
	MaxTokens     int       `json:"max_tokens,omitempty"`
}

// Advice is the coach's answer
type Advice struct {
	CreatedAt  time.Time `json:"createdAt"`
	AnalysisID string    `json:"analysisId,omitempty"`
	Text       string    `json:"text"`
	Source     string    `json:"source"`
	Skill      string    `json:"skill,omitempty"`
	Model      string    `json:"model,omitempty"`
	TokensUsed int64     `json:"tokensUsed,omitempty"`
}

// Analysis is a stored coach answer for a race session
type Analysis struct {
	CreatedAt     time.Time `json:"createdAt"`
	ID            string    `json:"id"`
	UserID        string    `json:"userId"`
	RaceSessionID string    `json:"raceSessionId"`
	Action        string    `json:"action"`
	Source        string    `json:"source"`
	Model         string    `json:"model,omitempty"`
	Prompt        string    `json:"prompt"`
	Response      string    `json:"response"`
}

// Completion is what the proxy returned
type Completion struct {
	Text       string
	Model      string
	TokensUsed int64
}
