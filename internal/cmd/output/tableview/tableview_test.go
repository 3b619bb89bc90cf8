package tableview

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storeops/storectl/internal/backend"
	"github.com/storeops/storectl/internal/listview"
	"github.com/storeops/storectl/internal/retail"
	"github.com/storeops/storectl/internal/theme"
)

const pendingUsers = `{"data":[
	{"id":"u1","full_name":"Ada Lovelace","username":"ada","email":"ada@shop.example"},
	{"id":"u2","full_name":"Grace Hopper","username":"grace","email":"grace@shop.example"},
	{"id":"u3","full_name":"Zed Shaw","username":"zed","email":"zed@shop.example"}
]}`

const lostItems = `[{"id":"L1","item_name":"Rice","quantity":"2","unit":"kg","value":"3.5"}]`

func newPage(t *testing.T, name string, api backend.API, mode listview.SearchMode) *Page {
	t.Helper()
	c, err := retail.Lookup(name)
	require.NoError(t, err)
	p := NewPage(c, c.Source(api),
		listview.WithPageSize[retail.Record](2),
		listview.WithSearchMode[retail.Record](mode),
	)
	retail.Bind(p.Binding, c, api)
	return p
}

func newTestModel(t *testing.T, api *backend.MockAPI, opts ...Option) *model {
	t.Helper()
	pages := []*Page{
		newPage(t, "pending-approvals", api, listview.ModeRank),
		newPage(t, "lost-items", api, listview.ModeExclude),
	}
	p, ok := theme.Get(theme.DefaultName)
	require.True(t, ok)
	opts = append([]Option{WithPalette(p)}, opts...)
	return newModel(context.Background(), pages, opts...)
}

func newMockAPI() *backend.MockAPI {
	return &backend.MockAPI{Bodies: map[string]string{
		"/users":      pendingUsers,
		"/lost-items": lostItems,
	}}
}

// drain runs cmd and feeds every resulting message back into the model.
// Spinner ticks reschedule themselves and are dropped.
func drain(t *testing.T, m *model, cmd tea.Cmd) {
	t.Helper()
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if current == nil {
			continue
		}
		switch msg := current().(type) {
		case tea.BatchMsg:
			queue = append(queue, msg...)
		case spinner.TickMsg, nil:
		default:
			_, next := m.Update(msg)
			queue = append(queue, next)
		}
	}
}

func press(m *model, keys ...string) tea.Cmd {
	var cmd tea.Cmd
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "tab":
			msg = tea.KeyMsg{Type: tea.KeyTab}
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		_, cmd = m.Update(msg)
	}
	return cmd
}

func typeText(m *model, text string) {
	for _, r := range text {
		m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func loaded(t *testing.T, api *backend.MockAPI, opts ...Option) *model {
	t.Helper()
	m := newTestModel(t, api, opts...)
	drain(t, m, m.Init())
	require.False(t, m.busy)
	return m
}

func callsOf(api *backend.MockAPI, method string) []backend.Call {
	var rv []backend.Call
	for _, c := range api.Calls() {
		if c.Method == method {
			rv = append(rv, c)
		}
	}
	return rv
}

func TestInitLoadsFirstPage(t *testing.T) {
	api := newMockAPI()
	m := loaded(t, api)

	assert.Equal(t, 3, m.plan.Total)
	assert.Equal(t, []string{"u1", "u2"}, m.plan.IDs)
	assert.Len(t, m.table.Rows(), 2)
	assert.Contains(t, m.status, "Loaded 3 items")

	gets := callsOf(api, "GET")
	require.Len(t, gets, 1)
	assert.Equal(t, "pending", gets[0].Query["status"])

	view := m.View()
	assert.Contains(t, view, "Showing 1 to 2 of 3 items")
	assert.Contains(t, view, "Page 1 of 2")
	assert.Contains(t, view, "lost-items")
}

func TestPagingKeys(t *testing.T) {
	m := loaded(t, newMockAPI())

	press(m, "n")
	assert.Equal(t, 2, m.plan.Page)
	assert.Equal(t, []string{"u3"}, m.plan.IDs)

	press(m, "n")
	assert.Equal(t, 2, m.plan.Page, "last page stays put")

	press(m, "p")
	assert.Equal(t, 1, m.plan.Page)
	press(m, "p")
	assert.Equal(t, 1, m.plan.Page)
}

func TestSearchRanksMatchesFirst(t *testing.T) {
	m := loaded(t, newMockAPI())

	press(m, "/")
	require.Equal(t, modeSearch, m.mode)
	typeText(m, "zed")

	assert.Equal(t, "zed", m.page().Binding.Controller().SearchTerm())
	assert.Equal(t, []string{"u3", "u1"}, m.plan.IDs)
	assert.Equal(t, 3, m.plan.Total, "rank mode keeps every record")

	press(m, "enter")
	assert.Equal(t, modeBrowse, m.mode)
	assert.Contains(t, m.View(), `search "zed" (rank)`)

	press(m, "/", "esc")
	assert.Empty(t, m.page().Binding.Controller().SearchTerm())
	assert.Equal(t, []string{"u1", "u2"}, m.plan.IDs)
}

func TestApproveSubmitsAndReloads(t *testing.T) {
	api := newMockAPI()
	m := loaded(t, api)

	press(m, "down")
	require.Equal(t, "u2", m.selectedID())

	drain(t, m, press(m, "a"))

	posts := callsOf(api, "POST")
	require.Len(t, posts, 1)
	assert.Equal(t, "/users/u2/approve", posts[0].Path)
	form, ok := posts[0].Form.(*retail.ApprovalForm)
	require.True(t, ok)
	assert.Equal(t, "u2", form.UserID)

	assert.Equal(t, statusSuccess, m.statusKind)
	assert.Len(t, callsOf(api, "GET"), 2, "approving reloads the list")
}

func TestRejectRequiresReason(t *testing.T) {
	api := newMockAPI()
	m := loaded(t, api)

	press(m, "x")
	require.Equal(t, modeReason, m.mode)

	press(m, "enter")
	assert.Equal(t, modeReason, m.mode)
	assert.Equal(t, statusError, m.statusKind)
	assert.Contains(t, m.status, "reason is required")
	assert.Empty(t, callsOf(api, "POST"))

	typeText(m, "duplicate account")
	drain(t, m, press(m, "enter"))

	posts := callsOf(api, "POST")
	require.Len(t, posts, 1)
	assert.Equal(t, "/users/u1/reject", posts[0].Path)
	form, ok := posts[0].Form.(*retail.RejectionForm)
	require.True(t, ok)
	assert.Equal(t, "duplicate account", form.Reason)
	assert.Equal(t, modeBrowse, m.mode)
}

func TestRejectCancelled(t *testing.T) {
	api := newMockAPI()
	m := loaded(t, api)

	press(m, "x", "esc")
	assert.Equal(t, modeBrowse, m.mode)
	assert.Equal(t, "Reject cancelled", m.status)
	assert.Empty(t, callsOf(api, "POST"))
}

func TestDeleteAsksForConfirmation(t *testing.T) {
	api := newMockAPI()
	m := loaded(t, api)

	drain(t, m, press(m, "tab"))
	require.Equal(t, "lost-items", m.page().Collection.Name)
	require.Equal(t, []string{"L1"}, m.plan.IDs)

	press(m, "d")
	require.Equal(t, modeConfirm, m.mode)
	assert.Contains(t, m.View(), "Delete L1? [y/N]")

	press(m, "n")
	assert.Equal(t, "Delete cancelled", m.status)
	assert.Empty(t, callsOf(api, "DELETE"))

	drain(t, m, press(m, "d", "y"))
	deletes := callsOf(api, "DELETE")
	require.Len(t, deletes, 1)
	assert.Equal(t, "/lost-items/L1", deletes[0].Path)
	assert.Equal(t, "Deleted L1", m.status)
}

func TestActionFailureIsReported(t *testing.T) {
	api := newMockAPI()
	api.Errors = map[string]error{"POST /users/u1/approve": errors.New("403 Forbidden")}
	m := loaded(t, api)

	drain(t, m, press(m, "a"))
	assert.Equal(t, statusError, m.statusKind)
	assert.Equal(t, "Failed to approve u1: 403 Forbidden", m.status)
	assert.Len(t, callsOf(api, "GET"), 1, "failed actions do not reload")
}

func TestUnsupportedKeyDoesNothing(t *testing.T) {
	api := newMockAPI()
	m := loaded(t, api)

	press(m, "d")
	assert.Equal(t, modeBrowse, m.mode)
	assert.Empty(t, callsOf(api, "DELETE"))
}

func TestLoadFailureShowsEmptyList(t *testing.T) {
	api := newMockAPI()
	api.Errors = map[string]error{"GET /users": errors.New("connection refused")}
	m := loaded(t, api)

	assert.Equal(t, statusError, m.statusKind)
	assert.Contains(t, m.status, "connection refused")
	assert.Empty(t, m.plan.IDs)

	view := m.View()
	assert.Contains(t, view, "No items to display.")
	assert.Contains(t, view, "Showing 0 to 0 of 0 items")
}

func TestCopySelectedID(t *testing.T) {
	var copied string
	m := loaded(t, newMockAPI(), WithClipboard(func(s string) error {
		copied = s
		return nil
	}))

	press(m, "y")
	assert.Equal(t, "u1", copied)
	assert.Equal(t, statusSuccess, m.statusKind)
}

func TestKeysIgnoredWhileBusy(t *testing.T) {
	m := loaded(t, newMockAPI())
	m.busy = true

	press(m, "n")
	assert.Equal(t, 1, m.plan.Page)
}

func TestQuit(t *testing.T) {
	m := loaded(t, newMockAPI())
	cmd := press(m, "q")
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestThemeCycles(t *testing.T) {
	m := loaded(t, newMockAPI())
	before := m.palette.Name

	press(m, "t")
	assert.NotEqual(t, before, m.palette.Name)
	assert.Contains(t, m.status, "Theme:")
}

func TestColumnWidthsFitLimit(t *testing.T) {
	headers := []string{"ID", "NAME", "EMAIL"}
	rows := [][]string{{"1", "A very long customer name indeed", "someone@a-long-domain.example"}}

	widths := columnWidths(headers, rows, 0)
	assert.Equal(t, []int{4, 32, 29}, widths)

	widths = columnWidths(headers, rows, 40)
	total := 0
	for _, w := range widths {
		total += w + 2
	}
	assert.LessOrEqual(t, total, 40)
	assert.Equal(t, 4, widths[0])
}

func TestActionRunsWhileWindowResizes(t *testing.T) {
	api := newMockAPI()
	m := loaded(t, api)
	press(m, "down")
	require.Equal(t, "u2", m.selectedID())

	cmd := press(m, "a")
	require.NotNil(t, cmd)
	require.True(t, m.busy)
	batch, ok := cmd().(tea.BatchMsg)
	require.True(t, ok)

	msgs := make(chan tea.Msg, len(batch))
	var wg sync.WaitGroup
	for _, c := range batch {
		if c == nil {
			continue
		}
		wg.Add(1)
		go func(c tea.Cmd) {
			defer wg.Done()
			msgs <- c()
		}(c)
	}
	for i := 0; i < 50; i++ {
		m.Update(tea.WindowSizeMsg{Width: 80 + i, Height: 20 + i%5})
	}
	wg.Wait()
	close(msgs)

	for msg := range msgs {
		if done, ok := msg.(actionDoneMsg); ok {
			require.NoError(t, done.err)
			drain(t, m, func() tea.Msg { return done })
		}
	}

	posts := callsOf(api, "POST")
	require.Len(t, posts, 1)
	assert.Equal(t, "/users/u2/approve", posts[0].Path)
	assert.Equal(t, "Approved u2", m.status)
}

func TestActionOnRecordMissingFromPlan(t *testing.T) {
	api := newMockAPI()
	m := loaded(t, api)

	cmd := m.dispatch(m.page().Collection.Actions[0], "u3", retail.ActionInput{})
	assert.Nil(t, cmd)
	assert.False(t, m.busy)
	assert.Equal(t, statusError, m.statusKind)
	assert.Contains(t, m.status, listview.ErrUnknownRecord.Error())
	assert.Empty(t, callsOf(api, "POST"))
}
