package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	app "github.com/okian/parley/internal/app"
	"github.com/okian/parley/internal/domain/model"
)

// Words that end the conversation when they appear in user input.
var exitWords = []string{"quit", "exit", "stop", "end"}

// runREPL drives an interactive conversation on stdin/stdout until the user
// quits or input ends.
func runREPL(ctx context.Context, svc *app.Service) error {
	in := bufio.NewScanner(os.Stdin)
	out := os.Stdout

	fmt.Fprintln(out, "Welcome! Pick a topic to talk about.")

	if !svc.TestConnectivity(ctx) {
		fmt.Fprintln(out, "Warning: cannot reach the AI service; replies will be limited.")
	}

	for {
		showTopics(svc, out)

		fmt.Fprint(out, "Enter topic number (or 'random'): ")
		if !in.Scan() {
			return nil
		}
		choice := strings.TrimSpace(in.Text())
		if choice == "" {
			continue
		}
		// The menu lists one extra entry for a random pick.
		if n, err := strconv.Atoi(choice); err == nil && n == svc.Catalog().Len()+1 {
			choice = "random"
		}

		_, t, err := svc.StartSession(ctx, choice)
		if err != nil {
			fmt.Fprintln(out, "Invalid topic selection.")
			if !askYesNo(in, out, "Try again?") {
				return nil
			}
			continue
		}

		fmt.Fprintf(out, "\nAI: %s\n", t.Introduction)

		runConversation(ctx, svc, in, out, t.Name)

		rec, err := svc.EndSession(ctx)
		if err == nil {
			showResults(out, rec)
		}

		if !askYesNo(in, out, "Start new conversation?") {
			fmt.Fprintln(out, "Goodbye!")
			return nil
		}
	}
}

func runConversation(ctx context.Context, svc *app.Service, in *bufio.Scanner, out *os.File, topicName string) {
	for {
		fmt.Fprint(out, "You: ")
		if !in.Scan() {
			return
		}
		input := strings.TrimSpace(in.Text())
		if input == "" {
			return
		}

		if containsExitWord(input) {
			fmt.Fprintln(out, "Conversation ended.")
			return
		}

		outcome, err := svc.RecordUserTurn(ctx, input)
		if err != nil {
			fmt.Fprintln(out, "Something went wrong recording that; try again.")
			continue
		}

		if !outcome.ShouldContinue {
			fmt.Fprintf(out, "AI: Great discussion! %s Thanks for talking about %s!\n", outcome.Reason, topicName)
			return
		}

		fmt.Fprintf(out, "AI: %s\n", outcome.Reply)
		if outcome.Reason != "" {
			fmt.Fprintf(out, "(%s)\n", outcome.Reason)
		}
	}
}

func showTopics(svc *app.Service, out *os.File) {
	catalog := svc.Catalog()
	fmt.Fprintln(out, "\nAvailable Topics:")
	for i, key := range catalog.Keys() {
		if t, ok := catalog.Get(key); ok {
			fmt.Fprintf(out, "  %d. %s\n", i+1, t.Name)
		}
	}
	fmt.Fprintf(out, "  %d. Random Topic\n", catalog.Len()+1)
}

func showResults(out *os.File, rec *model.SessionRecord) {
	fmt.Fprintln(out, "\nCONVERSATION RESULTS")
	fmt.Fprintf(out, "Topic: %s\n", rec.Topic)
	fmt.Fprintf(out, "Duration: %.1f minutes\n", rec.DurationMinutes)
	fmt.Fprintf(out, "Score: %.1f/100\n", rec.FinalScore)

	if rec.ScoringDetails == nil {
		return
	}
	if len(rec.ScoringDetails.KeywordMatches) > 0 {
		fmt.Fprintln(out, "Topics covered:")
		shown := 0
		for term := range rec.ScoringDetails.KeywordMatches {
			fmt.Fprintf(out, "  - %s\n", term)
			shown++
			if shown == 3 {
				break
			}
		}
	}
	if len(rec.ScoringDetails.ImprovementSuggestions) > 0 {
		fmt.Fprintln(out, "Suggestions:")
		for _, s := range rec.ScoringDetails.ImprovementSuggestions {
			fmt.Fprintf(out, "  - %s\n", s)
		}
	}
}

func askYesNo(in *bufio.Scanner, out *os.File, question string) bool {
	fmt.Fprintf(out, "%s (y/n): ", question)
	if !in.Scan() {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(in.Text()))
	switch answer {
	case "y", "yes", "yeah", "yep", "sure":
		return true
	}
	return strings.Contains(answer, "yes")
}

func containsExitWord(input string) bool {
	lower := strings.ToLower(input)
	for _, w := range exitWords {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}
