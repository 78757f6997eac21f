package app

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"

	"github.com/nhle/mailcontacts/internal/contact"
	"github.com/nhle/mailcontacts/internal/details"
	"github.com/nhle/mailcontacts/internal/keys"
	"github.com/nhle/mailcontacts/internal/source"
	"github.com/nhle/mailcontacts/internal/ui"
	sheet "github.com/nhle/mailcontacts/internal/ui/details"
	helpview "github.com/nhle/mailcontacts/internal/ui/help"
)

// composeResultMsg reports whether the compose URI could be handed off.
type composeResultMsg struct {
	uri string
	err error
}

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewDetails ViewState = iota
	ViewHelp
)

// Options wires the application to its services.
type Options struct {
	// Service loads the message and resolves its participants.
	Service *details.Service

	// Actions performs participant actions from the sheet.
	Actions *details.Actions

	// Cache is cleared when the user reloads the sheet.
	Cache contact.CachingRepository

	Appearance details.Appearance
	Ref        source.MessageRef

	// Opener hands a mailto URI to the system mail client. Defaults to
	// OpenURI.
	Opener func(uri string) error
}

// Model is the root Bubble Tea model that routes between the details
// sheet and the help overlay.
type Model struct {
	currentView  ViewState
	previousView ViewState
	layout       ui.Layout
	service      *details.Service
	cache        contact.CachingRepository
	ref          source.MessageRef
	keys         *keys.KeyMap
	sheet        sheet.Model
	helpView     helpview.Model
	opener       func(uri string) error
	subject      string
	notice       string
	ready        bool
}

// New creates the root application model.
func New(opts Options) Model {
	km := keys.DefaultKeyMap()
	opener := opts.Opener
	if opener == nil {
		opener = OpenURI
	}

	return Model{
		currentView: ViewDetails,
		service:     opts.Service,
		cache:       opts.Cache,
		ref:         opts.Ref,
		keys:        km,
		sheet:       sheet.New(opts.Actions, opts.Appearance, km, 80, 24),
		helpView:    helpview.New(km, 80, 24),
		opener:      opener,
	}
}

// Init starts loading the message.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.sheet.Init(),
		m.loadDetails(),
	)
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		m.sheet.SetSize(m.layout.ContentWidth(), m.layout.ContentHeight())
		m.helpView.SetSize(m.layout.ContentWidth(), m.layout.ContentHeight())
		// Forward so an open huh form can recalculate its layout.
		var cmd tea.Cmd
		m.sheet, cmd = m.sheet.Update(msg)
		return m, cmd

	case sheet.LoadedMsg:
		if msg.Details != nil {
			m.subject = msg.Details.Subject
		}
		var cmd tea.Cmd
		m.sheet, cmd = m.sheet.Update(msg)
		return m, cmd

	case sheet.CloseMsg:
		return m, tea.Quit

	case sheet.ReloadMsg:
		m.cache.ClearCache()
		return m, tea.Batch(m.sheet.SetLoading(), m.loadDetails())

	case sheet.ComposeMsg:
		return m, m.compose(msg.URI)

	case composeResultMsg:
		if msg.err != nil {
			log.Error().Err(msg.err).Str("uri", msg.uri).Msg("opening mail client")
			m.notice = "Could not open mail client: " + msg.err.Error()
		} else {
			m.notice = "Opened " + msg.uri
		}
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.sheet.Capturing() {
			break
		}
		m.notice = ""

		if msg.String() == "?" {
			if m.currentView == ViewHelp {
				m.currentView = m.previousView
				return m, nil
			}
			m.previousView = m.currentView
			m.currentView = ViewHelp
			return m, nil
		}

		if m.currentView == ViewHelp {
			if msg.String() == "esc" || msg.String() == "q" {
				m.currentView = m.previousView
			}
			return m, nil
		}
	}

	return m.updateActiveView(msg)
}

// updateActiveView dispatches the message to the currently active view.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewDetails:
		m.sheet, cmd = m.sheet.Update(msg)
	case ViewHelp:
		m.helpView, cmd = m.helpView.Update(msg)
	}

	return m, cmd
}

// View renders the full terminal UI using the layout manager.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	title := m.subject
	if title == "" {
		title = "Message details"
	}
	header := m.layout.RenderHeader(title, m.ref.String())
	statusBar := m.layout.RenderStatusBar(m.keyHints())

	return m.layout.RenderWithFrame(header, m.renderContent(), statusBar)
}

// renderContent returns the rendered string for the current active view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewHelp:
		return m.helpView.View()
	default:
		return m.sheet.View()
	}
}

// keyHints returns keyboard shortcut hints for the status bar.
func (m Model) keyHints() string {
	if m.notice != "" {
		return m.notice
	}

	switch {
	case m.currentView == ViewHelp:
		return "? close help | esc back"
	case m.sheet.Capturing():
		return "enter save | esc cancel"
	case m.sheet.State() == details.StateError:
		return "r retry | q quit"
	default:
		return m.helpView.ShortView()
	}
}

// loadDetails returns a command that loads the message and resolves its
// participants.
func (m Model) loadDetails() tea.Cmd {
	svc := m.service
	ref := m.ref
	return func() tea.Msg {
		d, err := svc.LoadDetails(context.Background(), ref)
		if err != nil {
			log.Error().Err(err).Str("message", ref.String()).Msg("loading message details")
			return sheet.LoadedMsg{Err: err}
		}
		return sheet.LoadedMsg{Details: d}
	}
}

// compose hands uri to the opener off the update loop.
func (m Model) compose(uri string) tea.Cmd {
	open := m.opener
	return func() tea.Msg {
		if err := open(uri); err != nil {
			return composeResultMsg{uri: uri, err: fmt.Errorf("opening %s: %w", uri, err)}
		}
		return composeResultMsg{uri: uri}
	}
}
