// Package tableview is the interactive collection browser. It draws the plan
// of a listview binding as a bubbles table and turns key presses into
// navigation, search and row actions on that binding.
package tableview

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/wordwrap"
	"golang.org/x/term"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/storeops/storectl/internal/cmd/output/texttable"
	"github.com/storeops/storectl/internal/iostreams"
	"github.com/storeops/storectl/internal/listview"
	"github.com/storeops/storectl/internal/log"
	"github.com/storeops/storectl/internal/retail"
	"github.com/storeops/storectl/internal/theme"
	"github.com/storeops/storectl/internal/util"
)

// Page is one collection the browser can switch to.
type Page struct {
	Collection *retail.Collection
	Binding    *listview.Binding[retail.Record, []string]

	loaded bool
}

// NewPage binds a collection to a fresh controller configured with opts.
func NewPage(c *retail.Collection, source listview.Source[retail.Record],
	opts ...listview.Option[retail.Record],
) *Page {
	ctrl := listview.New(opts...)
	b := listview.NewBinding(ctrl, retail.Columns, retail.Record.RecordID)
	b.SetSource(source)
	return &Page{Collection: c, Binding: b}
}

type config struct {
	title       string
	profileName string
	initial     int
	palette     *theme.Palette
	copy        func(string) error
}

type Option func(*config)

func WithTitle(title string) Option {
	return func(c *config) { c.title = title }
}

// WithProfileName shows the active configuration profile in the status bar.
func WithProfileName(name string) Option {
	return func(c *config) { c.profileName = strings.TrimSpace(name) }
}

// WithInitialPage selects the page shown first.
func WithInitialPage(index int) Option {
	return func(c *config) { c.initial = index }
}

func WithPalette(p theme.Palette) Option {
	return func(c *config) { c.palette = &p }
}

// WithClipboard replaces the system clipboard writer.
func WithClipboard(fn func(string) error) Option {
	return func(c *config) { c.copy = fn }
}

// Run starts the browser on the terminal behind streams and blocks until the
// user quits.
func Run(ctx context.Context, streams *iostreams.IOStreams, pages []*Page, opts ...Option) error {
	if streams == nil || streams.Out == nil {
		return errors.New("tableview: output stream is not available")
	}
	if len(pages) == 0 {
		return errors.New("tableview: no collections to browse")
	}

	m := newModel(ctx, pages, opts...)
	width, height := terminalSize(streams.Out)
	m.resize(width, height)

	// Errors are reported in the status bar while the alt screen is up.
	log.DisableErrorMirroring()
	defer log.EnableErrorMirroring()

	program := tea.NewProgram(m,
		tea.WithContext(ctx),
		tea.WithInput(streams.In),
		tea.WithOutput(streams.Out),
		tea.WithAltScreen(),
	)
	_, err := program.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

func terminalSize(out io.Writer) (int, int) {
	const defaultHeight = 24
	width := texttable.TerminalWidth(out)
	height := defaultHeight
	if f, ok := out.(interface{ Fd() uintptr }); ok && iostreams.IsTerminal(out) {
		if _, h, err := term.GetSize(int(f.Fd())); err == nil && h > 0 {
			height = h
		}
	}
	return width, height
}

type inputMode int

const (
	modeBrowse inputMode = iota
	modeSearch
	modeReason
	modeConfirm
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusSuccess
	statusError
)

type pendingAction struct {
	spec retail.ActionSpec
	id   string
}

type loadedMsg struct {
	page    int
	records []retail.Record
	err     error
	elapsed time.Duration
}

type actionDoneMsg struct {
	page   int
	action retail.ActionSpec
	id     string
	err    error
}

type model struct {
	ctx     context.Context
	pages   []*Page
	active  int
	plan    listview.Plan[[]string]
	table   table.Model
	search  textinput.Model
	reason  textinput.Model
	mode    inputMode
	pending *pendingAction

	spinner   spinner.Model
	busy      bool
	busyLabel string

	status     string
	statusKind statusKind
	// keepStatus keeps an action result visible across the reload it starts.
	keepStatus bool

	keys    keyMap
	help    help.Model
	palette theme.Palette
	themes  []string

	width   int
	height  int
	title   string
	profile string
	copy    func(string) error
}

var titleCase = cases.Title(language.English)

func newModel(ctx context.Context, pages []*Page, opts ...Option) *model {
	cfg := config{copy: clipboard.WriteAll}
	for _, opt := range opts {
		opt(&cfg)
	}
	if ctx == nil {
		ctx = context.Background()
	}

	palette := theme.FromContext(ctx)
	if cfg.palette != nil {
		palette = *cfg.palette
	}

	search := textinput.New()
	search.Prompt = "/"
	search.Placeholder = "search"
	search.CharLimit = 120

	reason := textinput.New()
	reason.Prompt = "Reason: "
	reason.Placeholder = "why is this rejected?"
	reason.CharLimit = 500

	m := &model{
		ctx:     ctx,
		pages:   pages,
		active:  max(0, min(cfg.initial, len(pages)-1)),
		search:  search,
		reason:  reason,
		keys:    newKeyMap(),
		help:    help.New(),
		themes:  theme.Available(),
		title:   cfg.title,
		profile: cfg.profileName,
		copy:    cfg.copy,
	}
	m.table = table.New(
		table.WithFocused(true),
		table.WithKeyMap(table.KeyMap{
			LineUp:     m.keys.Up,
			LineDown:   m.keys.Down,
			GotoTop:    key.NewBinding(key.WithKeys("home", "g")),
			GotoBottom: key.NewBinding(key.WithKeys("end", "G")),
		}),
	)
	m.applyPalette(palette)
	m.bindRowActions()
	m.refresh()
	return m
}

func newSpinnerModel(p theme.Palette) spinner.Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = p.ForegroundStyle(theme.ColorAccent)
	return s
}

func (m *model) applyPalette(p theme.Palette) {
	m.palette = p
	m.spinner = newSpinnerModel(p)

	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		BorderForeground(p.Adaptive(theme.ColorBorder)).
		Foreground(p.Adaptive(theme.ColorTextPrimary)).
		Bold(true)
	styles.Cell = styles.Cell.
		Foreground(p.Adaptive(theme.ColorTextPrimary))
	styles.Selected = styles.Selected.
		Foreground(p.Adaptive(theme.ColorPrimaryText)).
		Background(p.Adaptive(theme.ColorPrimary))
	m.table.SetStyles(styles)

	m.search.PromptStyle = p.ForegroundStyle(theme.ColorAccent)
	m.reason.PromptStyle = p.ForegroundStyle(theme.ColorWarning)
}

func (m *model) page() *Page {
	return m.pages[m.active]
}

func (m *model) bindRowActions() {
	m.keys.rowActions = m.keys.rowActions[:0]
	for _, spec := range m.page().Collection.Actions {
		m.keys.rowActions = append(m.keys.rowActions, key.NewBinding(
			key.WithKeys(spec.Key),
			key.WithHelp(spec.Key, spec.Label),
		))
	}
}

// refresh re-plans the active page and redraws the table from the plan.
func (m *model) refresh() {
	p := m.page()
	m.plan = p.Binding.Plan()

	headers := p.Collection.Headers
	rows := texttable.AbbreviateIDs(headers, m.plan.Rows)
	widths := columnWidths(headers, rows, m.tableWidth())

	columns := make([]table.Column, len(headers))
	for i, h := range headers {
		columns[i] = table.Column{Title: h, Width: widths[i]}
	}
	tableRows := make([]table.Row, len(rows))
	for i, r := range rows {
		row := make(table.Row, len(headers))
		copy(row, r)
		tableRows[i] = row
	}

	cursor := m.table.Cursor()
	m.table.SetRows(nil)
	m.table.SetColumns(columns)
	m.table.SetRows(tableRows)
	m.table.SetHeight(m.tableHeight())
	if len(tableRows) > 0 {
		m.table.SetCursor(max(0, min(cursor, len(tableRows)-1)))
	}
}

func (m *model) tableWidth() int {
	if m.width <= 0 {
		return 0
	}
	// border and padding of the table box
	return m.width - 4
}

func (m *model) tableHeight() int {
	rows := m.page().Binding.Controller().PageSize() + 1
	if m.height <= 0 {
		return rows
	}
	// tabs, title, box border, footer, input, status and help lines
	const chrome = 10
	return max(3, min(rows, m.height-chrome))
}

func (m *model) resize(width, height int) {
	m.width, m.height = width, height
	m.help.Width = width
	m.search.Width = max(10, width-4)
	m.reason.Width = max(10, width-12)
	m.refresh()
}

func (m *model) selectedID() string {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.plan.IDs) {
		return ""
	}
	return m.plan.IDs[i]
}

func (m *model) setStatus(kind statusKind, format string, args ...any) {
	m.statusKind = kind
	m.status = fmt.Sprintf(format, args...)
}

func (m *model) Init() tea.Cmd {
	return m.load(m.active)
}

func (m *model) load(index int) tea.Cmd {
	p := m.pages[index]
	m.busy = true
	m.busyLabel = fmt.Sprintf("Loading %s…", strings.ToLower(p.Collection.Title))
	ctx := m.ctx
	fetch := func() tea.Msg {
		started := time.Now()
		records, err := p.Binding.Fetch(ctx)
		return loadedMsg{page: index, records: records, err: err, elapsed: time.Since(started)}
	}
	return tea.Batch(fetch, m.spinner.Tick)
}

// dispatch resolves the action against the plan on screen and runs only the
// handler in the background; the binding stays owned by Update.
func (m *model) dispatch(spec retail.ActionSpec, id string, in retail.ActionInput) tea.Cmd {
	index := m.active
	handler, err := m.page().Binding.Resolve(spec.Name, id)
	if err != nil {
		m.setStatus(statusError, "Failed to %s %s: %v", spec.Label, util.AbbreviateUUID(id), err)
		return nil
	}
	m.busy = true
	m.busyLabel = fmt.Sprintf("%s %s…", titleCase.String(spec.Label), util.AbbreviateUUID(id))
	ctx := retail.WithActionInput(m.ctx, in)
	run := func() tea.Msg {
		return actionDoneMsg{page: index, action: spec, id: id, err: handler(ctx)}
	}
	return tea.Batch(run, m.spinner.Tick)
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) { //nolint:ireturn
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil
	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case loadedMsg:
		return m, m.handleLoaded(msg)
	case actionDoneMsg:
		return m, m.handleActionDone(msg)
	case tea.KeyMsg:
		return m, m.handleKey(msg)
	}
	return m, nil
}

func (m *model) handleLoaded(msg loadedMsg) tea.Cmd {
	m.busy = false
	p := m.pages[msg.page]
	p.loaded = true
	keep := m.keepStatus
	m.keepStatus = false
	if err := p.Binding.Receive(msg.records, msg.err); err != nil {
		m.setStatus(statusError, "Unable to load %s: %v", strings.ToLower(p.Collection.Title), err)
	} else if !keep {
		m.setStatus(statusInfo, "Loaded %d items in %s", len(msg.records), formatElapsed(msg.elapsed))
	}
	if msg.page == m.active {
		m.refresh()
	}
	return nil
}

func (m *model) handleActionDone(msg actionDoneMsg) tea.Cmd {
	m.busy = false
	short := util.AbbreviateUUID(msg.id)
	if msg.err != nil {
		var verr *retail.ValidationError
		if errors.As(msg.err, &verr) {
			m.setStatus(statusError, "Cannot %s %s: %s", msg.action.Label, short, strings.Join(verr.Problems, "; "))
		} else {
			m.setStatus(statusError, "Failed to %s %s: %v", msg.action.Label, short, msg.err)
		}
		return nil
	}
	cmd := m.load(msg.page)
	m.keepStatus = true
	m.setStatus(statusSuccess, "%s %s", msg.action.PastTense(), short)
	return cmd
}

func (m *model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if msg.String() == "ctrl+c" {
		return tea.Quit
	}

	switch m.mode {
	case modeSearch:
		return m.handleSearchKey(msg)
	case modeReason:
		return m.handleReasonKey(msg)
	case modeConfirm:
		return m.handleConfirmKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return nil
	case key.Matches(msg, m.keys.Up), key.Matches(msg, m.keys.Down):
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		return cmd
	}

	// The binding is in use by a background load or action until it reports
	// back.
	if m.busy {
		return nil
	}

	ctrl := m.page().Binding.Controller()
	switch {
	case key.Matches(msg, m.keys.PrevPage):
		if ctrl.PrevPage() {
			m.refresh()
			m.table.SetCursor(0)
		}
	case key.Matches(msg, m.keys.NextPage):
		if ctrl.NextPage() {
			m.refresh()
			m.table.SetCursor(0)
		}
	case key.Matches(msg, m.keys.Search):
		m.mode = modeSearch
		m.search.SetValue(ctrl.SearchTerm())
		m.search.CursorEnd()
		return m.search.Focus()
	case key.Matches(msg, m.keys.Reload):
		return m.load(m.active)
	case key.Matches(msg, m.keys.Copy):
		m.copySelected()
	case key.Matches(msg, m.keys.NextList):
		return m.switchPage(1)
	case key.Matches(msg, m.keys.PrevList):
		return m.switchPage(-1)
	case key.Matches(msg, m.keys.Theme):
		m.nextTheme()
	default:
		for _, spec := range m.page().Collection.Actions {
			if msg.String() == spec.Key {
				return m.startAction(spec)
			}
		}
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		return cmd
	}
	return nil
}

func (m *model) handleSearchKey(msg tea.KeyMsg) tea.Cmd {
	ctrl := m.page().Binding.Controller()
	switch msg.Type {
	case tea.KeyEnter:
		m.mode = modeBrowse
		m.search.Blur()
		return nil
	case tea.KeyEsc:
		m.mode = modeBrowse
		m.search.Blur()
		m.search.SetValue("")
		ctrl.SetSearchTerm("")
		m.refresh()
		return nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if m.search.Value() != ctrl.SearchTerm() && !m.busy {
		ctrl.SetSearchTerm(m.search.Value())
		m.refresh()
		m.table.SetCursor(0)
	}
	return cmd
}

func (m *model) handleReasonKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEsc:
		m.setStatus(statusInfo, "%s cancelled", titleCase.String(m.pending.spec.Label))
		m.endPrompt()
		return nil
	case tea.KeyEnter:
		reason := strings.TrimSpace(m.reason.Value())
		if reason == "" {
			m.setStatus(statusError, "A reason is required to %s", m.pending.spec.Label)
			return nil
		}
		p := m.pending
		m.endPrompt()
		return m.dispatch(p.spec, p.id, retail.ActionInput{Reason: reason})
	}
	var cmd tea.Cmd
	m.reason, cmd = m.reason.Update(msg)
	return cmd
}

func (m *model) handleConfirmKey(msg tea.KeyMsg) tea.Cmd {
	p := m.pending
	m.endPrompt()
	if s := msg.String(); s == "y" || s == "Y" {
		return m.dispatch(p.spec, p.id, retail.ActionInput{})
	}
	m.setStatus(statusInfo, "%s cancelled", titleCase.String(p.spec.Label))
	return nil
}

func (m *model) endPrompt() {
	m.mode = modeBrowse
	m.pending = nil
	m.reason.Blur()
	m.reason.SetValue("")
}

func (m *model) startAction(spec retail.ActionSpec) tea.Cmd {
	id := m.selectedID()
	if id == "" {
		m.setStatus(statusError, "No record selected")
		return nil
	}
	switch {
	case spec.NeedsReason:
		m.mode = modeReason
		m.pending = &pendingAction{spec: spec, id: id}
		m.reason.SetValue("")
		return m.reason.Focus()
	case spec.Destructive:
		m.mode = modeConfirm
		m.pending = &pendingAction{spec: spec, id: id}
		return nil
	default:
		return m.dispatch(spec, id, retail.ActionInput{})
	}
}

func (m *model) copySelected() {
	id := m.selectedID()
	if id == "" {
		m.setStatus(statusError, "No record selected")
		return
	}
	if err := m.copy(id); err != nil {
		m.setStatus(statusError, "Unable to copy %s: %v", util.AbbreviateUUID(id), err)
		return
	}
	m.setStatus(statusSuccess, "Copied %s to clipboard", id)
}

func (m *model) switchPage(delta int) tea.Cmd {
	n := len(m.pages)
	m.active = ((m.active+delta)%n + n) % n
	m.bindRowActions()
	m.status = ""
	m.table.SetCursor(0)
	m.refresh()
	if !m.page().loaded {
		return m.load(m.active)
	}
	return nil
}

func (m *model) nextTheme() {
	if len(m.themes) == 0 {
		return
	}
	idx := 0
	for i, name := range m.themes {
		if name == m.palette.Name {
			idx = (i + 1) % len(m.themes)
			break
		}
	}
	if p, ok := theme.Get(m.themes[idx]); ok {
		m.applyPalette(p)
		m.setStatus(statusInfo, "Theme: %s (set color-theme: %s in config to persist)", p.DisplayName, p.Name)
	}
}

func (m *model) View() string {
	width := m.width
	if width <= 0 {
		width = 100
	}

	sections := []string{
		ansi.Truncate(m.renderTabs(), width, "…"),
		m.renderTitle(),
		m.renderTable(),
		m.renderFooter(),
	}
	if line := m.renderInput(); line != "" {
		sections = append(sections, line)
	}
	if line := m.renderStatus(width); line != "" {
		sections = append(sections, line)
	}
	sections = append(sections, m.help.View(m.keys))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *model) renderTabs() string {
	active := lipgloss.NewStyle().Padding(0, 1).Bold(true).
		Foreground(m.palette.Adaptive(theme.ColorPrimaryText)).
		Background(m.palette.Adaptive(theme.ColorPrimary))
	idle := lipgloss.NewStyle().Padding(0, 1).
		Foreground(m.palette.Adaptive(theme.ColorTextMuted))

	tabs := make([]string, len(m.pages))
	for i, p := range m.pages {
		if i == m.active {
			tabs[i] = active.Render(p.Collection.Name)
		} else {
			tabs[i] = idle.Render(p.Collection.Name)
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m *model) renderTitle() string {
	title := m.page().Collection.Title
	if m.title != "" {
		title = m.title + " · " + title
	}
	line := lipgloss.NewStyle().Bold(true).Foreground(m.palette.Adaptive(theme.ColorTextPrimary)).Render(title)
	if m.profile != "" {
		line += m.palette.ForegroundStyle(theme.ColorTextMuted).Render("  profile: " + m.profile)
	}
	return line
}

func (m *model) renderTable() string {
	box := lipgloss.NewStyle().BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(m.palette.Adaptive(theme.ColorBorder)).
		Padding(0, 1)
	content := m.table.View()
	if len(m.plan.Rows) == 0 && !m.busy {
		content += "\n" + m.palette.ForegroundStyle(theme.ColorTextMuted).Render("No items to display.")
	}
	return box.Render(content)
}

func (m *model) renderFooter() string {
	muted := m.palette.ForegroundStyle(theme.ColorTextMuted)
	parts := []string{m.plan.Showing, m.plan.PageText}
	ctrl := m.page().Binding.Controller()
	if term := ctrl.SearchTerm(); strings.TrimSpace(term) != "" && m.mode != modeSearch {
		hl := m.palette.ForegroundStyle(theme.ColorHighlight)
		parts = append(parts, fmt.Sprintf("search %s (%s)", hl.Render(fmt.Sprintf("%q", term)), ctrl.Mode()))
	}
	return muted.Render(strings.Join(parts, "  ·  "))
}

func (m *model) renderInput() string {
	switch m.mode {
	case modeSearch:
		return m.search.View()
	case modeReason:
		return m.reason.View()
	case modeConfirm:
		warn := m.palette.ForegroundStyle(theme.ColorWarning).Bold(true)
		return warn.Render(fmt.Sprintf("%s %s? [y/N]", titleCase.String(m.pending.spec.Label),
			util.AbbreviateUUID(m.pending.id)))
	}
	return ""
}

func (m *model) renderStatus(width int) string {
	if m.busy {
		return m.spinner.View() + " " + m.busyLabel
	}
	if m.status == "" {
		return ""
	}
	var style lipgloss.Style
	switch m.statusKind {
	case statusError:
		style = m.palette.ForegroundStyle(theme.ColorDanger)
	case statusSuccess:
		style = m.palette.ForegroundStyle(theme.ColorSuccess)
	default:
		style = lipgloss.NewStyle().Faint(true)
	}
	return style.Render(wordwrap.String(m.status, max(20, width-2)))
}

// columnWidths sizes columns to their content and shrinks the widest ones
// until the row fits in limit. A limit of zero disables fitting.
func columnWidths(headers []string, rows [][]string, limit int) []int {
	const (
		minWidth = 4
		maxWidth = 40
		padding  = 2
	)
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, r := range rows {
		for i := 0; i < len(r) && i < len(widths); i++ {
			widths[i] = max(widths[i], runewidth.StringWidth(r[i]))
		}
	}
	for i := range widths {
		widths[i] = max(minWidth, min(widths[i], maxWidth))
	}
	if limit <= 0 {
		return widths
	}

	total := func() int {
		sum := 0
		for _, w := range widths {
			sum += w + padding
		}
		return sum
	}
	for total() > limit {
		widest := -1
		for i, w := range widths {
			if w > minWidth && (widest < 0 || w > widths[widest]) {
				widest = i
			}
		}
		if widest < 0 {
			break
		}
		widths[widest]--
	}
	return widths
}

func formatElapsed(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return d.Round(100 * time.Millisecond).String()
}
