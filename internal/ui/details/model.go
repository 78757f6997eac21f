package details

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	detailsvc "github.com/nhle/mailcontacts/internal/details"
	"github.com/nhle/mailcontacts/internal/keys"
	"github.com/nhle/mailcontacts/internal/model"
	"github.com/nhle/mailcontacts/internal/theme"
)

// LoadedMsg carries the result of loading a message's details.
type LoadedMsg struct {
	Details *detailsvc.MessageDetails
	Err     error
}

// CloseMsg signals the parent to dismiss the sheet.
type CloseMsg struct{}

// ReloadMsg asks the parent to load the details again, typically after
// the address book changed.
type ReloadMsg struct{}

// ComposeMsg asks the parent to open a new message to URI.
type ComposeMsg struct {
	URI string
}

// actionResultMsg reports the outcome of a participant action.
type actionResultMsg struct {
	text   string
	err    error
	reload bool
}

// contactLoadedMsg carries the contact opened from a participant row.
type contactLoadedMsg struct {
	contact *model.Contact
	err     error
}

type mode int

const (
	modeList mode = iota
	modeMenu
	modeAddForm
	modeContact
)

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	name string
}

// Model is the message details sheet: the message date, every
// participant grouped by header, and the folder it was loaded from.
type Model struct {
	state      detailsvc.State
	details    *detailsvc.MessageDetails
	items      []detailsvc.Item
	cursor     int
	err        error
	actions    *detailsvc.Actions
	appearance detailsvc.Appearance
	keys       *keys.KeyMap
	spinner    spinner.Model
	viewport   viewport.Model
	loc        *time.Location

	mode       mode
	menu       []detailsvc.MenuAction
	menuCursor int
	form       *huh.Form
	fb         *formBindings
	contact    *model.Contact

	status    string
	statusErr bool

	width  int
	height int
}

// New creates a details sheet in the loading state.
func New(
	actions *detailsvc.Actions,
	appearance detailsvc.Appearance,
	keys *keys.KeyMap,
	width, height int,
) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.ColorBlue)

	vp := viewport.New(width, height-1)
	vp.Style = lipgloss.NewStyle()

	return Model{
		state:      detailsvc.StateLoading,
		cursor:     -1,
		actions:    actions,
		appearance: appearance,
		keys:       keys,
		spinner:    sp,
		viewport:   vp,
		loc:        time.Local,
		fb:         &formBindings{},
		width:      width,
		height:     height,
	}
}

// Init starts the loading spinner.
func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// SetLoading puts the sheet back into the loading state.
func (m *Model) SetLoading() tea.Cmd {
	m.state = detailsvc.StateLoading
	m.err = nil
	return m.spinner.Tick
}

// SetLocation sets the time zone used to render the message date.
func (m *Model) SetLocation(loc *time.Location) {
	m.loc = loc
}

// SetSize updates the sheet dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height - 1
	if m.state == detailsvc.StateDataLoaded {
		m.refresh()
	}
}

// State returns the current load state.
func (m Model) State() detailsvc.State {
	return m.state
}

// Selected returns the participant under the cursor.
func (m Model) Selected() (detailsvc.Participant, bool) {
	if m.cursor < 0 || m.cursor >= len(m.items) {
		return detailsvc.Participant{}, false
	}
	p := m.items[m.cursor].Participant
	if p == nil {
		return detailsvc.Participant{}, false
	}
	return *p, true
}

// Capturing reports whether the sheet is consuming raw key input, so
// the parent should not intercept global keys.
func (m Model) Capturing() bool {
	return m.mode == modeAddForm
}

// Update handles messages for the details sheet.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if m.state != detailsvc.StateLoading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case LoadedMsg:
		if msg.Err != nil {
			m.state = detailsvc.StateError
			m.err = msg.Err
			return m, nil
		}
		m.setDetails(msg.Details)
		return m, nil

	case actionResultMsg:
		m.setStatus(msg.text, msg.err)
		if msg.reload {
			return m, func() tea.Msg { return ReloadMsg{} }
		}
		return m, nil

	case contactLoadedMsg:
		if msg.err != nil {
			m.setStatus("", msg.err)
			return m, nil
		}
		m.contact = msg.contact
		m.mode = modeContact
		return m, nil
	}

	if m.mode == modeAddForm {
		return m.updateForm(msg)
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	switch m.mode {
	case modeMenu:
		return m.updateMenu(keyMsg)
	case modeContact:
		if key.Matches(keyMsg, m.keys.Back, m.keys.Select) {
			m.mode = modeList
			m.contact = nil
		}
		return m, nil
	}

	return m.updateList(keyMsg)
}

func (m Model) updateList(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back), key.Matches(msg, m.keys.Quit):
		return m, func() tea.Msg { return CloseMsg{} }

	case key.Matches(msg, m.keys.Refresh):
		return m, func() tea.Msg { return ReloadMsg{} }
	}

	if m.state != detailsvc.StateDataLoaded {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Down):
		m.moveCursor(1)
		return m, nil

	case key.Matches(msg, m.keys.Up):
		m.moveCursor(-1)
		return m, nil
	}

	p, ok := m.Selected()
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Select):
		if p.IsInContacts {
			return m, m.showContact(p)
		}
		if m.appearance.ShowAddToContacts(p) {
			return m, m.startAddForm(p)
		}

	case key.Matches(msg, m.keys.AddContact):
		if m.appearance.ShowAddToContacts(p) {
			return m, m.startAddForm(p)
		}

	case key.Matches(msg, m.keys.Menu):
		m.menu = detailsvc.OverflowMenu(p)
		m.menuCursor = 0
		m.mode = modeMenu
		return m, nil

	case key.Matches(msg, m.keys.Compose):
		return m, m.runMenuAction(detailsvc.ActionComposeTo, p)

	case key.Matches(msg, m.keys.CopyAddress):
		return m, m.runMenuAction(detailsvc.ActionCopyEmailAddress, p)

	case key.Matches(msg, m.keys.CopyNameAddr):
		if p.HasPersonalName() {
			return m, m.runMenuAction(detailsvc.ActionCopyNameAndEmailAddress, p)
		}
	}

	return m, nil
}

func (m Model) updateMenu(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back), key.Matches(msg, m.keys.Menu):
		m.mode = modeList
		return m, nil

	case key.Matches(msg, m.keys.Down):
		if m.menuCursor < len(m.menu)-1 {
			m.menuCursor++
		}
		return m, nil

	case key.Matches(msg, m.keys.Up):
		if m.menuCursor > 0 {
			m.menuCursor--
		}
		return m, nil

	case key.Matches(msg, m.keys.Select):
		m.mode = modeList
		p, ok := m.Selected()
		if !ok || m.menuCursor >= len(m.menu) {
			return m, nil
		}
		return m, m.runMenuAction(m.menu[m.menuCursor], p)
	}
	return m, nil
}

func (m Model) updateForm(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		m.mode = modeList
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		m.mode = modeList
		m.form = nil
		p, ok := m.Selected()
		if !ok {
			return m, nil
		}
		return m, m.addToContacts(p, strings.TrimSpace(m.fb.name))

	case huh.StateAborted:
		m.mode = modeList
		m.form = nil
		return m, nil
	}

	return m, cmd
}

func (m *Model) startAddForm(p detailsvc.Participant) tea.Cmd {
	m.fb.name = p.Address.Name
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Add to contacts").
				Description(string(p.EmailAddress)),
			huh.NewInput().
				Title("Name").
				Placeholder("Contact name").
				Value(&m.fb.name),
		),
	).WithWidth(m.formWidth()).WithShowHelp(false)
	m.mode = modeAddForm
	return m.form.Init()
}

func (m Model) runMenuAction(a detailsvc.MenuAction, p detailsvc.Participant) tea.Cmd {
	actions := m.actions
	switch a {
	case detailsvc.ActionComposeTo:
		uri := detailsvc.ComposeURI(p)
		return func() tea.Msg { return ComposeMsg{URI: uri} }

	case detailsvc.ActionCopyEmailAddress:
		return func() tea.Msg {
			text, err := actions.CopyEmailAddress(p)
			return actionResultMsg{text: "Copied " + text, err: err}
		}

	case detailsvc.ActionCopyNameAndEmailAddress:
		return func() tea.Msg {
			text, err := actions.CopyNameAndEmailAddress(p)
			return actionResultMsg{text: "Copied " + text, err: err}
		}
	}
	return nil
}

func (m Model) addToContacts(p detailsvc.Participant, name string) tea.Cmd {
	actions := m.actions
	return func() tea.Msg {
		c, err := actions.AddToContacts(context.Background(), p, name)
		if err != nil {
			return actionResultMsg{err: err}
		}
		return actionResultMsg{
			text:   fmt.Sprintf("Added %s to contacts", contactName(c)),
			reload: true,
		}
	}
}

func (m Model) showContact(p detailsvc.Participant) tea.Cmd {
	actions := m.actions
	return func() tea.Msg {
		c, err := actions.ShowContact(context.Background(), p)
		return contactLoadedMsg{contact: c, err: err}
	}
}

func (m *Model) setDetails(d *detailsvc.MessageDetails) {
	prev, hadPrev := m.Selected()

	m.state = detailsvc.StateDataLoaded
	m.err = nil
	m.details = d
	m.items = detailsvc.Items(d, m.loc)

	m.cursor = -1
	for i, it := range m.items {
		if !it.Selectable() {
			continue
		}
		if m.cursor < 0 {
			m.cursor = i
		}
		// Keep the cursor on the same person across reloads.
		if hadPrev && it.Participant.EmailAddress == prev.EmailAddress {
			m.cursor = i
			break
		}
	}
	m.refresh()
	m.viewport.GotoTop()
	m.ensureVisible()
}

func (m *Model) moveCursor(delta int) {
	for i := m.cursor + delta; i >= 0 && i < len(m.items); i += delta {
		if m.items[i].Selectable() {
			m.cursor = i
			break
		}
	}
	m.refresh()
	m.ensureVisible()
}

func (m *Model) setStatus(text string, err error) {
	if err != nil {
		m.status = err.Error()
		m.statusErr = true
		return
	}
	m.status = text
	m.statusErr = false
}

// refresh re-renders the item list into the viewport.
func (m *Model) refresh() {
	m.viewport.SetContent(m.renderItems())
}

// ensureVisible scrolls the viewport so the cursor row is on screen.
func (m *Model) ensureVisible() {
	line := m.cursorLine()
	if line < m.viewport.YOffset {
		m.viewport.SetYOffset(line)
	} else if line >= m.viewport.YOffset+m.viewport.Height {
		m.viewport.SetYOffset(line - m.viewport.Height + 1)
	}
}

func (m Model) cursorLine() int {
	line := 0
	for i := 0; i < m.cursor && i < len(m.items); i++ {
		line += lipgloss.Height(m.renderItem(i))
	}
	return line
}

// View renders the details sheet.
func (m Model) View() string {
	centered := lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center)

	switch m.state {
	case detailsvc.StateLoading:
		return centered.Foreground(theme.ColorGray).
			Render(m.spinner.View() + " Loading message details...")
	case detailsvc.StateError:
		return centered.Render(theme.ErrorStyle.Render("Could not load message details") +
			"\n\n" + theme.DimmedStyle.Render(errorText(m.err)))
	}

	switch m.mode {
	case modeAddForm:
		if m.form != nil {
			return lipgloss.NewStyle().Padding(1, 2).Render(m.form.View())
		}
	case modeContact:
		return m.renderContact()
	}

	body := m.viewport.View()
	if m.mode == modeMenu {
		body = lipgloss.JoinHorizontal(lipgloss.Top, body, m.renderMenu())
	}
	return lipgloss.JoinVertical(lipgloss.Left, body, m.renderStatus())
}

func (m Model) renderItems() string {
	var b strings.Builder
	for i := range m.items {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(m.renderItem(i))
	}
	return b.String()
}

func (m Model) renderItem(i int) string {
	it := m.items[i]
	switch it.Kind {
	case detailsvc.ItemDate:
		return lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite).Render(it.Text)

	case detailsvc.ItemSectionHeader:
		title := it.Text
		if it.Extra != "" {
			title += " " + theme.DimmedStyle.Render("("+it.Extra+")")
		}
		return "\n" + theme.SectionHeaderStyle.UnsetMarginTop().Render(title)

	case detailsvc.ItemParticipant:
		return m.renderParticipant(*it.Participant, i == m.cursor)

	case detailsvc.ItemDivider:
		width := m.width - 4
		if width > 80 {
			width = 80
		}
		if width < 1 {
			width = 1
		}
		return "\n" + lipgloss.NewStyle().Foreground(theme.ColorSubtle).Render(strings.Repeat("─", width))

	case detailsvc.ItemFolder:
		label := it.Folder.Type.Icon() + " " + it.Text
		return "\n" + theme.FolderStyle(string(it.Folder.Type)).Render(label)
	}
	return ""
}

func (m Model) renderParticipant(p detailsvc.Participant, selected bool) string {
	var parts []string

	if m.appearance.ShowContactPicture {
		parts = append(parts, theme.BadgeStyle(string(p.EmailAddress)).Render(p.Initials()))
	}

	if p.DisplayName != "" {
		parts = append(parts, p.DisplayName, theme.DimmedStyle.Render(string(p.EmailAddress)))
	} else {
		parts = append(parts, string(p.EmailAddress))
	}

	if p.IsInContacts {
		parts = append(parts, theme.ContactLabelStyle(true).Render("●"))
	} else if m.appearance.ShowAddToContacts(p) {
		parts = append(parts, theme.ContactLabelStyle(false).Render("+"))
	}

	line := strings.Join(parts, " ")
	if selected {
		return theme.SelectedItemStyle.Render(line)
	}
	return theme.ListItemStyle.Render(line)
}

func (m Model) renderMenu() string {
	lines := make([]string, len(m.menu))
	for i, a := range m.menu {
		if i == m.menuCursor {
			lines[i] = lipgloss.NewStyle().Bold(true).Foreground(theme.ColorBlue).Render("› " + a.Label())
		} else {
			lines[i] = "  " + a.Label()
		}
	}
	return theme.MenuStyle.Render(strings.Join(lines, "\n"))
}

func (m Model) renderContact() string {
	c := m.contact
	if c == nil {
		return ""
	}

	title := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite).Render(contactName(c))
	lines := []string{title, ""}

	meta := lipgloss.NewStyle().Foreground(theme.ColorGray)
	for _, a := range c.EmailAddresses {
		lines = append(lines, meta.Render("Email:  ")+string(a))
	}
	lines = append(lines,
		meta.Render("Lookup: ")+c.LookupURI(),
		meta.Render("Added:  ")+c.CreatedAt.In(m.loc).Format("2006-01-02 15:04"),
	)

	return theme.DetailPanelStyle.
		Width(m.width - 4).
		Render(strings.Join(lines, "\n"))
}

func (m Model) renderStatus() string {
	if m.status == "" {
		return ""
	}
	if m.statusErr {
		return theme.ErrorStyle.Render(m.status)
	}
	return theme.ToastStyle.Render(m.status)
}

func (m Model) formWidth() int {
	w := m.width - 4
	if w < 40 {
		w = 40
	}
	if w > 80 {
		w = 80
	}
	return w
}

func contactName(c *model.Contact) string {
	if c.DisplayName != "" {
		return c.DisplayName
	}
	if len(c.EmailAddresses) > 0 {
		return string(c.EmailAddresses[0])
	}
	return c.LookupURI()
}

func errorText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
