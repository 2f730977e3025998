// Package controller owns the application's view state machine. All user
// intents funnel through it; child components never change the active view
// themselves.
package controller

import (
	"context"

	"research-assistant-cli/internal/entity"
	"research-assistant-cli/internal/pkg/logger"
	"research-assistant-cli/internal/repository"
	"research-assistant-cli/internal/service"

	"github.com/google/uuid"
)

type View string

const (
	ViewLogin         View = "login"
	ViewDashboard     View = "dashboard"
	ViewReferenceSets View = "reference-sets"
	ViewInquiries     View = "inquiries"
	ViewTestSearch    View = "test-search"
	ViewChat          View = "chat"
)

// Modal creation flows are overlays on the current view, not views of their
// own; cancelling one leaves the underlying view untouched.
type Modal string

const (
	ModalNone            Modal = ""
	ModalNewReferenceSet Modal = "new-reference-set"
	ModalNewInquiry      Modal = "new-inquiry"
)

// pendingConfirm holds an irreversible action awaiting an explicit yes/no.
// The action only runs on Confirm; Cancel drops it and nothing happens.
type pendingConfirm struct {
	prompt string
	action func(ctx context.Context) error
}

type IAppController interface {
	Start(ctx context.Context)
	View() View
	Modal() Modal
	PendingPrompt() (string, bool)
	Status() string

	Login(ctx context.Context, email, password string)
	Signup(ctx context.Context, email, password string)
	RequestLogout()

	SwitchTo(view View)
	Reload(ctx context.Context)
	Snapshot() (repository.Snapshot, bool)
	Session() *entity.Session

	OpenNewReferenceSetModal()
	OpenNewInquiryModal()
	CancelModal()
	SubmitNewReferenceSet(ctx context.Context, domain, description string)
	SubmitNewInquiry(ctx context.Context, title, description string, referenceSetIds []uuid.UUID)

	RequestDeleteReferenceSet(id uuid.UUID)
	RequestDeleteInquiry(id uuid.UUID)
	Confirm(ctx context.Context)
	Cancel()

	OpenInquiry(id uuid.UUID)
	CloseChat()
}

type healthAPI interface {
	Hello(ctx context.Context) (string, error)
}

type appController struct {
	api      healthAPI
	sessions service.ISessionService
	repo     repository.ICollectionRepository
	chat     service.IChatService
	logger   logger.ILogger

	view    View
	modal   Modal
	pending *pendingConfirm
	status  string
}

func NewAppController(
	api healthAPI,
	sessions service.ISessionService,
	repo repository.ICollectionRepository,
	chat service.IChatService,
	sysLogger logger.ILogger,
) IAppController {
	return &appController{
		api:      api,
		sessions: sessions,
		repo:     repo,
		chat:     chat,
		logger:   sysLogger,
		view:     ViewLogin,
	}
}

// Start probes the service, then restores a persisted session if one exists.
// A missing or corrupt session file lands on the login view, never an error.
func (c *appController) Start(ctx context.Context) {
	if msg, err := c.api.Hello(ctx); err != nil {
		c.logger.Warn("controller", "service probe failed", map[string]interface{}{"error": err.Error()})
	} else {
		c.logger.Info("controller", "service reachable", map[string]interface{}{"message": msg})
	}

	if session := c.sessions.Restore(); session != nil {
		c.view = ViewDashboard
		c.Reload(ctx)
		return
	}
	c.view = ViewLogin
}

func (c *appController) View() View   { return c.view }
func (c *appController) Modal() Modal { return c.modal }

func (c *appController) PendingPrompt() (string, bool) {
	if c.pending == nil {
		return "", false
	}
	return c.pending.prompt, true
}

// Status returns the transient status line and clears it.
func (c *appController) Status() string {
	s := c.status
	c.status = ""
	return s
}

func (c *appController) Session() *entity.Session {
	return c.sessions.Current()
}

func (c *appController) Snapshot() (repository.Snapshot, bool) {
	return c.repo.Current()
}

func (c *appController) Login(ctx context.Context, email, password string) {
	if _, err := c.sessions.Login(ctx, email, password); err != nil {
		c.status = "Login failed: " + err.Error()
		return
	}
	c.view = ViewDashboard
	c.Reload(ctx)
}

func (c *appController) Signup(ctx context.Context, email, password string) {
	if err := c.sessions.Signup(ctx, email, password); err != nil {
		c.status = "Signup failed: " + err.Error()
		return
	}
	c.status = "Account created! Please log in."
	c.view = ViewLogin
}

// RequestLogout gates logout behind confirmation: it discards the persisted
// session and every cached collection.
func (c *appController) RequestLogout() {
	c.pending = &pendingConfirm{
		prompt: "Log out and clear the saved session?",
		action: func(context.Context) error {
			c.chat.Close()
			c.sessions.Logout()
			c.view = ViewLogin
			return nil
		},
	}
}

// SwitchTo moves between authenticated views. The chat view is not directly
// reachable here; it requires an active inquiry via OpenInquiry.
func (c *appController) SwitchTo(view View) {
	if c.sessions.Current() == nil {
		c.view = ViewLogin
		return
	}
	switch view {
	case ViewDashboard, ViewReferenceSets, ViewInquiries, ViewTestSearch:
		c.view = view
	case ViewChat:
		if _, open := c.chat.Active(); open {
			c.view = ViewChat
		}
	}
}

func (c *appController) Reload(ctx context.Context) {
	if _, err := c.repo.Reload(ctx); err != nil {
		c.status = "Could not load collections: " + err.Error()
	}
}

func (c *appController) OpenNewReferenceSetModal() { c.modal = ModalNewReferenceSet }
func (c *appController) OpenNewInquiryModal()      { c.modal = ModalNewInquiry }
func (c *appController) CancelModal()              { c.modal = ModalNone }

func (c *appController) SubmitNewReferenceSet(ctx context.Context, domain, description string) {
	c.modal = ModalNone
	if _, err := c.repo.CreateReferenceSet(ctx, domain, description); err != nil {
		c.status = "Could not create reference set: " + err.Error()
		return
	}
	c.status = "Reference set created."
}

// SubmitNewInquiry creates the inquiry and, on success, transitions straight
// into chat with the new inquiry active.
func (c *appController) SubmitNewInquiry(ctx context.Context, title, description string, referenceSetIds []uuid.UUID) {
	c.modal = ModalNone
	id, err := c.repo.CreateInquiry(ctx, title, description, referenceSetIds)
	if err != nil {
		c.status = "Could not create inquiry: " + err.Error()
		return
	}
	c.OpenInquiry(id)
}

func (c *appController) RequestDeleteReferenceSet(id uuid.UUID) {
	snap, _ := c.repo.Current()
	name := id.String()
	if rs, ok := snap.ReferenceSet(id); ok {
		name = rs.Domain
	}
	c.pending = &pendingConfirm{
		prompt: "Delete reference set \"" + name + "\" and all its documents?",
		action: func(ctx context.Context) error {
			return c.repo.DeleteReferenceSet(ctx, id)
		},
	}
}

func (c *appController) RequestDeleteInquiry(id uuid.UUID) {
	snap, _ := c.repo.Current()
	name := id.String()
	if inq, ok := snap.Inquiry(id); ok {
		name = inq.Title
	}
	c.pending = &pendingConfirm{
		prompt: "Delete inquiry \"" + name + "\" and its chat history?",
		action: func(ctx context.Context) error {
			return c.repo.DeleteInquiry(ctx, id)
		},
	}
}

func (c *appController) Confirm(ctx context.Context) {
	if c.pending == nil {
		return
	}
	action := c.pending.action
	c.pending = nil
	if err := action(ctx); err != nil {
		c.status = "Action failed: " + err.Error()
	}
}

func (c *appController) Cancel() {
	c.pending = nil
}

// OpenInquiry is the only way into the chat view: it requires the inquiry to
// exist in the current snapshot.
func (c *appController) OpenInquiry(id uuid.UUID) {
	snap, loaded := c.repo.Current()
	if !loaded {
		c.status = "Collections not loaded yet."
		return
	}
	inquiry, ok := snap.Inquiry(id)
	if !ok {
		c.status = "Unknown inquiry."
		return
	}
	c.chat.Open(inquiry)
	c.view = ViewChat
}

func (c *appController) CloseChat() {
	c.chat.Close()
	c.view = ViewInquiries
}
