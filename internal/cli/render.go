package cli

import (
	"fmt"
	"io"
	"strings"

	"research-assistant-cli/internal/controller"
	"research-assistant-cli/internal/dto"
	"research-assistant-cli/internal/entity"
	"research-assistant-cli/internal/repository"

	"github.com/fatih/color"
)

var (
	headerColor    = color.New(color.FgHiWhite, color.Bold)
	statusColor    = color.New(color.FgYellow)
	userColor      = color.New(color.FgCyan, color.Bold)
	assistantColor = color.New(color.FgGreen)
	dimColor       = color.New(color.Faint)
	errorColor     = color.New(color.FgRed)
	promptColor    = color.New(color.FgHiBlue)
)

// renderer prints controller state to the terminal. It holds no state of its
// own beyond the output writer; everything it shows comes from a snapshot or
// the chat history, both treated as read-only.
type renderer struct {
	out io.Writer
}

func (r *renderer) header(title string) {
	fmt.Fprintln(r.out)
	headerColor.Fprintf(r.out, "== %s ==\n", title)
}

func (r *renderer) status(msg string) {
	if msg != "" {
		statusColor.Fprintln(r.out, msg)
	}
}

func (r *renderer) error(msg string) {
	errorColor.Fprintln(r.out, msg)
}

func (r *renderer) line(format string, args ...interface{}) {
	fmt.Fprintf(r.out, format+"\n", args...)
}

func (r *renderer) prompt(view controller.View) {
	promptColor.Fprintf(r.out, "%s> ", view)
}

func (r *renderer) loginView() {
	r.header("Research Assistant")
	r.line("  login <email> <password>")
	r.line("  signup <email> <password>")
	r.line("  quit")
}

func (r *renderer) dashboard(email string, snap repository.Snapshot, loaded bool) {
	r.header("Dashboard")
	r.line("Welcome, %s", email)
	if !loaded {
		dimColor.Fprintln(r.out, "Collections not loaded yet. Try 'reload'.")
		return
	}
	r.line("  Reference sets:    %d", len(snap.ReferenceSets))
	r.line("  Lines of inquiry:  %d", len(snap.Inquiries))
}

func (r *renderer) referenceSets(snap repository.Snapshot, loaded bool) {
	r.header("Reference Sets")
	if !loaded || len(snap.ReferenceSets) == 0 {
		dimColor.Fprintln(r.out, "No reference sets yet. Create one to get started!")
		return
	}
	for i, rs := range snap.ReferenceSets {
		r.line("  [%d] %s (%d files)", i+1, rs.Domain, rs.FileCount)
		if rs.Description != "" {
			dimColor.Fprintf(r.out, "      %s\n", rs.Description)
		}
	}
}

func (r *renderer) inquiries(snap repository.Snapshot, loaded bool) {
	r.header("Lines of Inquiry")
	if !loaded || len(snap.Inquiries) == 0 {
		dimColor.Fprintln(r.out, "No inquiries yet. Start your first line of inquiry!")
		return
	}
	for i, inq := range snap.Inquiries {
		r.line("  [%d] %s (%d reference sets)", i+1, inq.Title, len(inq.ReferenceSetIds))
		if inq.Description != "" {
			dimColor.Fprintf(r.out, "      %s\n", inq.Description)
		}
	}
}

func (r *renderer) chatView(inquiry entity.Inquiry, history []entity.Message) {
	r.header("Chat: " + inquiry.Title)
	if len(history) == 0 {
		dimColor.Fprintln(r.out, "Ask anything. '/close' returns to inquiries.")
	}
	for _, msg := range history {
		r.message(msg)
	}
}

// message renders one turn. Citations belong to their message only; they are
// listed directly under it and never merged with another turn's sources.
func (r *renderer) message(msg entity.Message) {
	switch msg.Role {
	case entity.MessageRoleUser:
		userColor.Fprintf(r.out, "you: ")
		fmt.Fprintln(r.out, msg.Content)
	default:
		assistantColor.Fprintf(r.out, "assistant: ")
		fmt.Fprintln(r.out, msg.Content)
		for _, c := range msg.Citations {
			dimColor.Fprintf(r.out, "  [citation] %s\n", c)
		}
		for _, src := range msg.Sources {
			dimColor.Fprintf(r.out, "  [source] %s\n", src)
		}
	}
}

func (r *renderer) searchParams(p searchParams) {
	r.header("Test Search")
	r.line("  ref set: %s | top_k: %d | min_score: %.2f", p.refSetLabel, p.topK, p.minScore)
	dimColor.Fprintln(r.out, "Type a query, or: set topk <1-20> | set minscore <0-1> | set refset <n|all>")
}

// searchResults prints results in the order the server ranked them.
func (r *renderer) searchResults(res *dto.TestSearchResponse) {
	r.line("%d of %d candidates (min score %.2f, filter %s)",
		res.ResultsFound, res.TotalCandidates, res.MinScoreUsed, res.RefSetFilter)
	for _, hit := range res.Results {
		qualityColorFor(hit.ScoreQuality).Fprintf(r.out, "  #%d %.3f [%s]", hit.Rank, hit.Score, hit.ScoreQuality)
		fmt.Fprintf(r.out, " %s (page %d, chunk %d)\n", hit.Document, hit.PageNumber, hit.ChunkIndex)
		if hit.VerseReference != "" {
			dimColor.Fprintf(r.out, "      %s\n", hit.VerseReference)
		}
		if hit.EnglishText != "" {
			dimColor.Fprintf(r.out, "      %s\n", truncate(hit.EnglishText, 120))
		}
	}
}

// qualityColorFor colors a tier label. The tiers themselves come from the
// server; unknown labels render dim rather than being re-derived from the
// score.
func qualityColorFor(quality string) *color.Color {
	switch strings.ToLower(quality) {
	case "excellent":
		return color.New(color.FgGreen, color.Bold)
	case "good":
		return color.New(color.FgYellow)
	case "weak":
		return color.New(color.FgRed)
	default:
		return dimColor
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
