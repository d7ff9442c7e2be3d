package debate

import (
	"fmt"
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

// Transcript assembly. The debater prompt and all moderator prompts
// enumerate prior responses the same way: chronological (round, then
// response order), each labeled by the responder's turn position.

// TokenEstimator estimates prompt token counts for the context budget.
// It uses the cl100k_base BPE when the encoding can be loaded and falls
// back to a characters/4 heuristic otherwise, so estimation never fails.
type TokenEstimator struct {
	once sync.Once
	enc  *tiktoken.Tiktoken
}

// Estimate returns the approximate token count of s.
func (e *TokenEstimator) Estimate(s string) int {
	e.once.Do(func() {
		if enc, err := tiktoken.GetEncoding("cl100k_base"); err == nil {
			e.enc = enc
		}
	})
	if e.enc != nil {
		return len(e.enc.Encode(s, nil, nil))
	}
	return len(s)/4 + 1
}

// debaterLabel names a responder by turn position, never by persona
// name, so models cannot latch onto persona identities.
func debaterLabel(participants []Participant, debaterID string) string {
	for _, p := range participants {
		if p.DebaterID == debaterID {
			return fmt.Sprintf("Debater %d", p.Position)
		}
	}
	return "Unknown Debater"
}

// roundGroup is one round's responses labeled with the round's number.
type roundGroup struct {
	Number    int
	Responses []Response
}

// roundNumbers maps round IDs to round numbers for the debate's loaded
// rounds.
func roundNumbers(d *Debate) map[string]int {
	numbers := make(map[string]int, len(d.Rounds))
	for _, r := range d.Rounds {
		numbers[r.ID] = r.RoundNumber
	}
	return numbers
}

// groupByRound splits a (round, order)-sorted response list into per-round
// groups, preserving order. Each group carries the round's actual number
// so headings stay correct when the list covers a subset of rounds; a
// round missing from numbers falls back to its position in the list.
func groupByRound(responses []Response, numbers map[string]int) []roundGroup {
	var groups []roundGroup
	var lastID string
	for _, r := range responses {
		if len(groups) == 0 || r.RoundID != lastID {
			number, ok := numbers[r.RoundID]
			if !ok {
				number = len(groups) + 1
			}
			groups = append(groups, roundGroup{Number: number})
			lastID = r.RoundID
		}
		groups[len(groups)-1].Responses = append(groups[len(groups)-1].Responses, r)
	}
	return groups
}

// excerpt returns the leading n characters of s, marking truncation with
// an ellipsis. Cuts respect rune boundaries.
func excerpt(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}

// promptBuilder renders the prompts sent to debaters and the moderator.
type promptBuilder struct {
	estimator *TokenEstimator

	// tokenBudget bounds the debater prompt; zero disables trimming.
	tokenBudget int
}

// BuildDebaterPrompt assembles the prompt for the responder at
// responseOrder in round. prior is the full debate transcript so far,
// in (round, response order) sequence. When a token budget is set, the
// oldest prior responses are dropped first to fit; the header, the
// moderator summary and the instructions are always kept.
func (b *promptBuilder) BuildDebaterPrompt(d *Debate, round *Round, prior []Response, responseOrder int) string {
	render := func(included []Response) string {
		var sb strings.Builder
		fmt.Fprintf(&sb, "You are participating in a structured debate about: %q\n\n", d.Topic)
		fmt.Fprintf(&sb, "This is round %d of %d.\n", round.RoundNumber, d.TotalRounds)
		fmt.Fprintf(&sb, "You are responding as position %d in this round.\n\n", responseOrder)

		if round.Summary != "" {
			fmt.Fprintf(&sb, "Moderator Summary:\n%s\n\n", round.Summary)
		}

		if len(included) > 0 {
			sb.WriteString("Previous responses in this debate:\n\n")
			for _, r := range included {
				fmt.Fprintf(&sb, "%s: %s\n\n", debaterLabel(d.Participants, r.DebaterID), r.Content)
			}
		}

		sb.WriteString("Provide your response to this debate topic. ")
		sb.WriteString("Stay focused on the topic and engage with the previous arguments. ")
		sb.WriteString("Your response should be substantive but concise (aim for 200-500 words).")
		return sb.String()
	}

	prompt := render(prior)
	if b.tokenBudget <= 0 {
		return prompt
	}

	// Drop oldest responses until the prompt fits the budget. Recent
	// turns matter most to the next response.
	included := prior
	for len(included) > 0 && b.estimator.Estimate(prompt) > b.tokenBudget {
		included = included[1:]
		prompt = render(included)
	}
	return prompt
}

// BuildRoundSummaryPrompt instructs the moderator to summarize one
// completed round, with earlier rounds excerpted for context.
func (b *promptBuilder) BuildRoundSummaryPrompt(d *Debate, roundNumber int, roundResponses, previous []Response) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "You are the moderator for a debate on: %q\n\n", d.Topic)
	fmt.Fprintf(&sb, "Your role is to provide a neutral, balanced summary of Round %d.\n\n", roundNumber)

	fmt.Fprintf(&sb, "ROUND %d RESPONSES:\n", roundNumber)
	for i, r := range roundResponses {
		fmt.Fprintf(&sb, "\nDebater %d: %s\n", i+1, r.Content)
	}

	if len(previous) > 0 {
		sb.WriteString("\nPREVIOUS ROUNDS CONTEXT:\n")
		sb.WriteString("(Previous responses for context - summarize key themes)\n")
		for _, group := range groupByRound(previous, roundNumbers(d)) {
			fmt.Fprintf(&sb, "\nRound %d:\n", group.Number)
			for i, r := range group.Responses {
				fmt.Fprintf(&sb, "Debater %d: %s\n", i+1, excerpt(r.Content, 200))
			}
		}
	}

	fmt.Fprintf(&sb, "\nAs the moderator, provide a concise summary of Round %d that:\n", roundNumber)
	sb.WriteString("1. Identifies the key arguments presented by each debater\n")
	sb.WriteString("2. Notes any areas of agreement or disagreement\n")
	sb.WriteString("3. Highlights how the discussion has evolved\n")
	sb.WriteString("4. Remains neutral and balanced\n")
	sb.WriteString("5. Is 100-300 words\n\n")
	sb.WriteString("Focus on the substance of the arguments rather than the quality of presentation.")
	return sb.String()
}

// BuildNextRoundPrompt produces forward-looking guidance for the round
// about to start. The closing instruction changes on the final round.
func (b *promptBuilder) BuildNextRoundPrompt(d *Debate, nextRoundNumber int, all []Response) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "You are the moderator for a debate on: %q\n\n", d.Topic)
	fmt.Fprintf(&sb, "The debate has completed %d round(s). ", nextRoundNumber-1)
	fmt.Fprintf(&sb, "Now provide guidance for Round %d of %d.\n\n", nextRoundNumber, d.TotalRounds)

	if len(all) > 0 {
		sb.WriteString("DEBATE SO FAR:\n")
		for _, group := range groupByRound(all, roundNumbers(d)) {
			fmt.Fprintf(&sb, "\nRound %d:\n", group.Number)
			for i, r := range group.Responses {
				fmt.Fprintf(&sb, "Debater %d: %s\n", i+1, excerpt(r.Content, 300))
			}
		}
	}

	fmt.Fprintf(&sb, "\nAs the moderator, provide direction for Round %d that:\n", nextRoundNumber)
	sb.WriteString("1. Summarizes the key themes that have emerged\n")
	sb.WriteString("2. Identifies specific areas that need deeper exploration\n")
	sb.WriteString("3. Suggests questions or angles for debaters to consider\n")
	sb.WriteString("4. Encourages engagement with opposing viewpoints\n")
	sb.WriteString("5. Maintains focus on the core debate topic\n")
	sb.WriteString("6. Is 150-400 words\n\n")

	if nextRoundNumber == d.TotalRounds {
		sb.WriteString("Note: This is the final round, so encourage debaters to present their strongest closing arguments.")
	} else {
		sb.WriteString("Encourage debaters to build upon previous arguments and address counterpoints.")
	}
	return sb.String()
}

// BuildFinalSummaryPrompt assembles the complete transcript and asks
// for a balanced closing assessment with no winner declared.
func (b *promptBuilder) BuildFinalSummaryPrompt(d *Debate, all []Response, debaterCount int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "You are the moderator providing a final summary for the debate on: %q\n\n", d.Topic)
	fmt.Fprintf(&sb, "This debate consisted of %d rounds with %d participants.\n\n", d.TotalRounds, debaterCount)

	sb.WriteString("COMPLETE DEBATE TRANSCRIPT:\n")
	for _, group := range groupByRound(all, roundNumbers(d)) {
		fmt.Fprintf(&sb, "\nROUND %d:\n", group.Number)
		for i, r := range group.Responses {
			fmt.Fprintf(&sb, "\nDebater %d: %s\n", i+1, r.Content)
		}
	}

	sb.WriteString("\nAs the moderator, provide a comprehensive final summary that:\n")
	sb.WriteString("1. Summarizes the main arguments presented by each side\n")
	sb.WriteString("2. Identifies key points of agreement and disagreement\n")
	sb.WriteString("3. Evaluates how well each position was supported\n")
	sb.WriteString("4. Notes the evolution of arguments throughout the debate\n")
	sb.WriteString("5. Highlights the most compelling points from each participant\n")
	sb.WriteString("6. Provides a balanced assessment without declaring a \"winner\"\n")
	sb.WriteString("7. Is 400-800 words\n\n")
	sb.WriteString("Remember to remain neutral and focus on the quality and substance of the arguments presented.")
	return sb.String()
}
