// Package cli drives the application from a terminal. It is deliberately
// thin: it renders controller state and translates typed commands into
// controller intents. All session, collection and chat logic lives below it.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"research-assistant-cli/internal/controller"
	"research-assistant-cli/internal/dto"
	"research-assistant-cli/internal/entity"
	"research-assistant-cli/internal/pkg/logger"
	"research-assistant-cli/internal/service"

	"github.com/google/uuid"
)

type searchParams struct {
	refSetLabel string
	refSetId    string
	topK        int
	minScore    float64
}

type App struct {
	ctrl   controller.IAppController
	chat   service.IChatService
	upload service.IUploadService
	search service.ISearchService
	logger logger.ILogger

	in     *bufio.Scanner
	render *renderer
	params searchParams
}

func NewApp(
	ctrl controller.IAppController,
	chat service.IChatService,
	upload service.IUploadService,
	search service.ISearchService,
	sysLogger logger.ILogger,
	in io.Reader,
	out io.Writer,
) *App {
	return &App{
		ctrl:   ctrl,
		chat:   chat,
		upload: upload,
		search: search,
		logger: sysLogger,
		in:     bufio.NewScanner(in),
		render: &renderer{out: out},
		params: searchParams{refSetLabel: dto.RefSetFilterAll, refSetId: dto.RefSetFilterAll, topK: 5, minScore: 0},
	}
}

// Run is the single logical thread of control: one loop, one pending input
// at a time. Network calls suspend the loop but each component disables its
// own overlapping operation.
func (a *App) Run(ctx context.Context) error {
	a.ctrl.Start(ctx)
	a.logger.Info("cli", "interactive loop started", map[string]interface{}{"view": string(a.ctrl.View())})

	for {
		if prompt, ok := a.ctrl.PendingPrompt(); ok {
			a.render.status(prompt + " [y/N]")
			line, ok := a.readLine("confirm> ")
			if !ok {
				return nil
			}
			if strings.EqualFold(strings.TrimSpace(line), "y") {
				a.ctrl.Confirm(ctx)
			} else {
				a.ctrl.Cancel()
			}
			continue
		}

		a.renderView()
		a.render.status(a.ctrl.Status())
		a.render.prompt(a.ctrl.View())

		if !a.in.Scan() {
			return a.in.Err()
		}
		line := strings.TrimSpace(a.in.Text())
		if line == "" {
			continue
		}
		if line == "quit" || line == "exit" {
			return nil
		}

		if done := a.dispatch(ctx, line); done {
			return nil
		}
	}
}

func (a *App) renderView() {
	snap, loaded := a.ctrl.Snapshot()
	switch a.ctrl.View() {
	case controller.ViewLogin:
		a.render.loginView()
	case controller.ViewDashboard:
		email := ""
		if s := a.ctrl.Session(); s != nil {
			email = s.Email
		}
		a.render.dashboard(email, snap, loaded)
	case controller.ViewReferenceSets:
		a.render.referenceSets(snap, loaded)
	case controller.ViewInquiries:
		a.render.inquiries(snap, loaded)
	case controller.ViewTestSearch:
		a.render.searchParams(a.params)
	case controller.ViewChat:
		if inquiry, open := a.chat.Active(); open {
			a.render.chatView(inquiry, a.chat.History())
		}
	}
}

func (a *App) dispatch(ctx context.Context, line string) bool {
	if a.ctrl.View() == controller.ViewLogin {
		a.dispatchLogin(ctx, line)
		return false
	}
	if a.ctrl.View() == controller.ViewChat {
		a.dispatchChat(ctx, line)
		return false
	}

	fields := strings.Fields(line)
	switch fields[0] {
	case "dashboard":
		a.ctrl.SwitchTo(controller.ViewDashboard)
	case "refsets":
		a.ctrl.SwitchTo(controller.ViewReferenceSets)
	case "inquiries":
		a.ctrl.SwitchTo(controller.ViewInquiries)
	case "search":
		a.ctrl.SwitchTo(controller.ViewTestSearch)
	case "reload":
		a.ctrl.Reload(ctx)
	case "logout":
		a.ctrl.RequestLogout()
	case "help":
		a.render.line("views: dashboard refsets inquiries search | reload logout quit")
	default:
		switch a.ctrl.View() {
		case controller.ViewReferenceSets:
			a.dispatchReferenceSets(ctx, fields)
		case controller.ViewInquiries:
			a.dispatchInquiries(ctx, fields)
		case controller.ViewTestSearch:
			a.dispatchSearch(ctx, line, fields)
		default:
			a.render.error("Unknown command. Try 'help'.")
		}
	}
	return false
}

func (a *App) dispatchLogin(ctx context.Context, line string) {
	fields := strings.Fields(line)
	switch {
	case fields[0] == "login" && len(fields) == 3:
		a.ctrl.Login(ctx, fields[1], fields[2])
	case fields[0] == "signup" && len(fields) == 3:
		a.ctrl.Signup(ctx, fields[1], fields[2])
	default:
		a.render.error("Usage: login <email> <password> | signup <email> <password>")
	}
}

func (a *App) dispatchChat(ctx context.Context, line string) {
	if line == "/close" {
		a.ctrl.CloseChat()
		return
	}
	if _, err := a.chat.Send(ctx, line); err != nil {
		switch err {
		case service.ErrReplyPending:
			a.render.error("Still waiting for the previous answer.")
		case service.ErrNoActiveSession:
			a.ctrl.CloseChat()
		default:
			// The fallback reply is already in the history; just note it.
			a.render.error("Answer failed: " + err.Error())
		}
	}
}

func (a *App) dispatchReferenceSets(ctx context.Context, fields []string) {
	switch fields[0] {
	case "new":
		a.newReferenceSetModal(ctx)
	case "upload":
		if len(fields) != 3 {
			a.render.error("Usage: upload <n> <file>")
			return
		}
		id, ok := a.referenceSetAt(fields[1])
		if !ok {
			return
		}
		if a.upload.InFlight() {
			a.render.error("An upload is already in progress.")
			return
		}
		stats, err := a.upload.Upload(ctx, id, fields[2])
		if stats != nil {
			a.render.line("Ingested %s: %d chunks from %d pages", stats.Filename, stats.Chunks, stats.Pages)
		}
		if err != nil {
			a.render.error(err.Error())
		}
	case "delete":
		if len(fields) != 2 {
			a.render.error("Usage: delete <n>")
			return
		}
		if id, ok := a.referenceSetAt(fields[1]); ok {
			a.ctrl.RequestDeleteReferenceSet(id)
		}
	default:
		a.render.error("Commands here: new | upload <n> <file> | delete <n>")
	}
}

func (a *App) dispatchInquiries(ctx context.Context, fields []string) {
	switch fields[0] {
	case "new":
		a.newInquiryModal(ctx)
	case "open":
		if len(fields) != 2 {
			a.render.error("Usage: open <n>")
			return
		}
		if id, ok := a.inquiryAt(fields[1]); ok {
			a.ctrl.OpenInquiry(id)
		}
	case "delete":
		if len(fields) != 2 {
			a.render.error("Usage: delete <n>")
			return
		}
		if id, ok := a.inquiryAt(fields[1]); ok {
			a.ctrl.RequestDeleteInquiry(id)
		}
	default:
		a.render.error("Commands here: new | open <n> | delete <n>")
	}
}

func (a *App) dispatchSearch(ctx context.Context, line string, fields []string) {
	if fields[0] == "set" && len(fields) == 3 {
		a.setSearchParam(fields[1], fields[2])
		return
	}

	res, err := a.search.Search(ctx, line, a.params.refSetId, a.params.topK, a.params.minScore)
	if err != nil {
		a.render.error("Search failed: " + err.Error())
		return
	}
	a.render.searchResults(res)
}

func (a *App) setSearchParam(key, value string) {
	switch key {
	case "topk":
		if n, err := strconv.Atoi(value); err == nil && n >= 1 && n <= 20 {
			a.params.topK = n
			return
		}
		a.render.error("top_k must be between 1 and 20")
	case "minscore":
		if f, err := strconv.ParseFloat(value, 64); err == nil && f >= 0 && f <= 1 {
			a.params.minScore = f
			return
		}
		a.render.error("min_score must be between 0 and 1")
	case "refset":
		if value == dto.RefSetFilterAll {
			a.params.refSetId = dto.RefSetFilterAll
			a.params.refSetLabel = dto.RefSetFilterAll
			return
		}
		if id, ok := a.referenceSetAt(value); ok {
			snap, _ := a.ctrl.Snapshot()
			rs, _ := snap.ReferenceSet(id)
			a.params.refSetId = id.String()
			a.params.refSetLabel = rs.Domain
		}
	default:
		a.render.error("Settable: topk, minscore, refset")
	}
}

// newReferenceSetModal walks the creation overlay. An empty domain cancels;
// required fields are enforced before any request goes out.
func (a *App) newReferenceSetModal(ctx context.Context) {
	a.ctrl.OpenNewReferenceSetModal()
	domain, ok := a.readLine("Domain: ")
	if !ok || strings.TrimSpace(domain) == "" {
		a.ctrl.CancelModal()
		return
	}
	description, _ := a.readLine("Description: ")
	a.ctrl.SubmitNewReferenceSet(ctx, strings.TrimSpace(domain), strings.TrimSpace(description))
}

func (a *App) newInquiryModal(ctx context.Context) {
	snap, loaded := a.ctrl.Snapshot()
	if !loaded || len(snap.ReferenceSets) == 0 {
		a.render.error("Create a reference set first.")
		return
	}

	a.ctrl.OpenNewInquiryModal()
	title, ok := a.readLine("Title: ")
	if !ok || strings.TrimSpace(title) == "" {
		a.ctrl.CancelModal()
		return
	}
	description, _ := a.readLine("Description: ")

	a.render.referenceSets(snap, true)
	selection, ok := a.readLine("Reference sets (comma-separated numbers): ")
	if !ok {
		a.ctrl.CancelModal()
		return
	}
	ids := a.parseSelection(selection, snap.ReferenceSets)
	if len(ids) == 0 {
		a.render.error("At least one reference set is required.")
		a.ctrl.CancelModal()
		return
	}

	a.ctrl.SubmitNewInquiry(ctx, strings.TrimSpace(title), strings.TrimSpace(description), ids)
}

// parseSelection maps "1,3" onto reference set ids, dropping anything out of
// range or non-numeric.
func (a *App) parseSelection(selection string, sets []entity.ReferenceSet) []uuid.UUID {
	var ids []uuid.UUID
	for _, part := range strings.Split(selection, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || n < 1 || n > len(sets) {
			continue
		}
		ids = append(ids, sets[n-1].Id)
	}
	return ids
}

func (a *App) referenceSetAt(index string) (uuid.UUID, bool) {
	snap, loaded := a.ctrl.Snapshot()
	n, err := strconv.Atoi(index)
	if err != nil || !loaded || n < 1 || n > len(snap.ReferenceSets) {
		a.render.error("No such reference set.")
		return uuid.Nil, false
	}
	return snap.ReferenceSets[n-1].Id, true
}

func (a *App) inquiryAt(index string) (uuid.UUID, bool) {
	snap, loaded := a.ctrl.Snapshot()
	n, err := strconv.Atoi(index)
	if err != nil || !loaded || n < 1 || n > len(snap.Inquiries) {
		a.render.error("No such inquiry.")
		return uuid.Nil, false
	}
	return snap.Inquiries[n-1].Id, true
}

func (a *App) readLine(prompt string) (string, bool) {
	fmt.Fprint(a.render.out, prompt)
	if !a.in.Scan() {
		return "", false
	}
	return a.in.Text(), true
}
