// Package chat runs advisory conversations over the retrieval index, delegating free-text
// generation to a Completer and degrading to a data-only answer when it fails.
package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"gulf-property-analyzer/models"
	"gulf-property-analyzer/retrieval"
	"gulf-property-analyzer/utils"
)

// ErrEmptyMessage is returned when a client sends a blank message.
var ErrEmptyMessage = eris.New("chat: empty message")

// Completer generates a free-text reply from a system prompt and a user message.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// CompletionError records a completion that failed after all attempts.
type CompletionError struct {
	Attempts int
	Err      error
}

func (e *CompletionError) Error() string {
	return fmt.Sprintf("completion failed after %d attempts: %v", e.Attempts, e.Err)
}

func (e *CompletionError) Unwrap() error { return e.Err }

// Reply is the advisor's answer to one message.
type Reply struct {
	SessionID string           `json:"session_id"`
	Intent    Intent           `json:"intent"`
	Text      string           `json:"text"`
	Matches   []models.Match   `json:"matches"`
	Degraded  bool             `json:"degraded"`
	Failure   *CompletionError `json:"-"`
}

// AdvisorConfig tunes the completion boundary and retrieval depth.
type AdvisorConfig struct {
	Timeout    time.Duration
	Retries    int
	RetryDelay time.Duration
	TopK       int
}

// Advisor answers client messages using retrieved listings and market knowledge.
type Advisor struct {
	store     *SessionStore
	index     *retrieval.Index
	completer Completer
	knowledge *Knowledge
	cfg       AdvisorConfig
	retry     *utils.RetryConfig
	logger    *utils.Logger
	printer   *message.Printer
}

// NewAdvisor wires an advisor. A nil knowledge base uses DefaultKnowledge.
func NewAdvisor(store *SessionStore, index *retrieval.Index, completer Completer, knowledge *Knowledge,
	cfg AdvisorConfig, logger *utils.Logger) *Advisor {
	if knowledge == nil {
		knowledge = DefaultKnowledge()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Retries < 1 {
		cfg.Retries = 1
	}
	if cfg.TopK <= 0 {
		cfg.TopK = retrieval.DefaultTopK
	}
	return &Advisor{
		store:     store,
		index:     index,
		completer: completer,
		knowledge: knowledge,
		cfg:       cfg,
		retry:     &utils.RetryConfig{MaxAttempts: cfg.Retries, BaseDelay: cfg.RetryDelay, Logger: logger},
		logger:    logger,
		printer:   message.NewPrinter(language.English),
	}
}

// Start opens a session and records the welcome message as its first turn.
func (a *Advisor) Start(clientID string, prefs Preferences) (*Session, string) {
	s := a.store.Create(clientID, prefs)
	welcome := a.welcome(prefs)
	s.append(RoleAssistant, welcome, a.store.now())
	a.logger.Info("[chat] Started session %s for client %s", s.ID, clientID)
	return s, welcome
}

// Chat handles one client message. Messages within a session are processed one at a
// time in arrival order. Completion failures never surface as errors: the reply is
// marked Degraded and carries the failure.
func (a *Advisor) Chat(ctx context.Context, sessionID, text string) (Reply, error) {
	s, err := a.store.Get(sessionID)
	if err != nil {
		return Reply{}, err
	}
	if strings.TrimSpace(text) == "" {
		return Reply{}, ErrEmptyMessage
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.append(RoleUser, text, a.store.now())

	intent := ClassifyIntent(text)
	budget := s.Preferences.Budget()
	matches, err := a.index.Query(text, retrieval.Filters{BudgetRange: &budget}, a.cfg.TopK)
	if err != nil {
		// a bad stored budget should not end the conversation
		a.logger.Warn("[chat] Retrieval for session %s failed: %v", s.ID, err)
		matches, _ = a.index.Query(text, retrieval.Filters{}, a.cfg.TopK)
	}

	reply := Reply{SessionID: s.ID, Intent: intent, Matches: matches}
	system := a.systemPrompt(s.Preferences, intent, matches)

	attempts := 0
	var answer string
	err = a.retry.DoContext(ctx, "completion", func(ctx context.Context) error {
		attempts++
		cctx, cancel := context.WithTimeout(ctx, a.cfg.Timeout)
		defer cancel()
		out, err := a.completer.Complete(cctx, system, text)
		if err != nil {
			return err
		}
		answer = out
		return nil
	})
	if err != nil {
		a.logger.Warn("[chat] Completion for session %s degraded: %v", s.ID, err)
		reply.Degraded = true
		reply.Failure = &CompletionError{Attempts: attempts, Err: err}
		answer = a.fallback(matches)
	}
	reply.Text = answer

	s.append(RoleAssistant, answer, a.store.now())
	return reply, nil
}

func (a *Advisor) welcome(prefs Preferences) string {
	budget := prefs.Budget()
	budgetText := a.printer.Sprintf("AED %d - %d", budget.Min, budget.Max)

	var b strings.Builder
	b.WriteString("Welcome to your Real Estate Investment Consultant!\n\n")
	b.WriteString("I'm your property investment advisor, working from analyzed listings across the Gulf markets and a market knowledge base.\n\n")
	b.WriteString("I can help you with:\n")
	fmt.Fprintf(&b, "- Investment opportunities in your budget (%s)\n", budgetText)
	b.WriteString("- ROI potential of specific properties\n")
	b.WriteString("- Market trends and timing\n")
	b.WriteString("- Investment strategies for your goals\n")
	b.WriteString("- Area comparisons and recommendations\n\n")
	fmt.Fprintf(&b, "Your preferences: %s | Budget: %s\n\n", strings.Join(prefs.Areas(), ", "), budgetText)
	b.WriteString("Try asking:\n")
	b.WriteString("- \"What are the best investment opportunities under 1.5M AED?\"\n")
	b.WriteString("- \"Should I invest in Dubai Marina or Downtown Dubai?\"\n")
	b.WriteString("- \"What's the ROI potential for Palm Jumeirah villas?\"\n")
	return b.String()
}

func (a *Advisor) systemPrompt(prefs Preferences, intent Intent, matches []models.Match) string {
	budget := prefs.Budget()

	var b strings.Builder
	b.WriteString("You are an expert Real Estate Investment Consultant specializing in the UAE, Saudi Arabia and wider Gulf markets.\n\n")
	a.printer.Fprintf(&b, "Client budget: AED %d - %d\n", budget.Min, budget.Max)
	fmt.Fprintf(&b, "Preferred areas: %s\n", strings.Join(prefs.Areas(), ", "))
	if prefs.RiskTolerance != "" {
		fmt.Fprintf(&b, "Risk tolerance: %s\n", prefs.RiskTolerance)
	}
	fmt.Fprintf(&b, "Question type: %s\n\n", intent)

	b.WriteString("Your personality:\n- Professional yet approachable\n- Data-driven and analytical\n- Focused on ROI and investment value\n\n")
	b.WriteString("Guidelines:\n1. Always base advice on the provided property data\n2. Include specific property examples when relevant\n3. Provide actionable investment advice\n\n")

	b.WriteString(a.knowledge.Brief(prefs.ExperienceLevel, intent))

	if len(matches) > 0 {
		b.WriteString("\nRelevant properties:\n")
		for i, m := range matches {
			if i == 3 {
				break
			}
			b.WriteString(a.matchLine(i+1, m))
			b.WriteString("\n")
		}
	}
	b.WriteString("\nRespond to the client's question with specific, actionable advice.")
	return b.String()
}

func (a *Advisor) matchLine(n int, m models.Match) string {
	title := contentField(m.Content, "Property: ")
	if title == "" {
		title = m.ID
	}
	line := a.printer.Sprintf("%d. %s - %s %d", n, title, m.Metadata.Currency, m.Metadata.Price)
	if m.Metadata.OpportunityScore != nil {
		roi := contentField(m.Content, "ROI potential: ")
		if roi == "" {
			roi = "N/A"
		}
		line += fmt.Sprintf(" (Score: %.1f/100, ROI: %s)", *m.Metadata.OpportunityScore, roi)
	}
	return line
}

// fallback answers from retrieved data alone.
func (a *Advisor) fallback(matches []models.Match) string {
	if len(matches) == 0 {
		return "I'm having trouble reaching the analysis service right now, and no listings matched your question and budget. " +
			"Please try again shortly or widen your budget range."
	}
	var b strings.Builder
	b.WriteString("I'm having trouble reaching the analysis service right now. Here are the best matches from the current data:\n")
	for i, m := range matches {
		if i == 3 {
			break
		}
		b.WriteString(a.matchLine(i+1, m))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// contentField returns the rest of the first content line starting with prefix.
func contentField(content, prefix string) string {
	for _, line := range strings.Split(content, "\n") {
		if strings.HasPrefix(line, prefix) {
			return strings.TrimSpace(strings.TrimPrefix(line, prefix))
		}
	}
	return ""
}
