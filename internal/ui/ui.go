package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"photosync/internal/models"
	"photosync/internal/services"
	"photosync/internal/shared"
	"photosync/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	AlbumListView ViewState = iota
	ConfirmView
	SyncView
	ResultView
)

// Model represents the TUI application state.
type Model struct {
	ctx    context.Context
	view   ViewState
	target services.TargetService
	engine *tasks.SyncEngine
	params tasks.RunParams

	width  int
	height int

	albumList     list.Model
	albums        []models.Album
	selectedAlbum *models.Album

	progressChan chan tasks.ProgressUpdate
	progress     tasks.ProgressUpdate
	summary      *tasks.RunSummary
	err          error

	help help.Model
	keys keyMap
}

type albumsFetchedMsg struct {
	albums []models.Album
	err    error
}

type progressUpdateMsg tasks.ProgressUpdate

type syncCompleteMsg struct {
	summary *tasks.RunSummary
	err     error
}

// NewModel creates a new TUI model. params carries the folder and filter
// configuration; the album is chosen interactively and overrides any album
// fields in params.
func NewModel(ctx context.Context, engine *tasks.SyncEngine, target services.TargetService, params tasks.RunParams) *Model {
	return &Model{
		ctx:    ctx,
		view:   AlbumListView,
		target: target,
		engine: engine,
		params: params,
		help:   help.New(),
		keys:   newKeyMap(),
	}
}

// Init initializes the TUI by fetching the user's albums.
func (m *Model) Init() tea.Cmd {
	return m.fetchAlbums()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.albumList.Width() == 0 {
			m.albumList.SetSize(msg.Width-4, msg.Height-8)
		}
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case AlbumListView:
			return m.handleAlbumListKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		case ResultView:
			return m.handleResultKeys(msg)
		}

	case albumsFetchedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, tea.Quit
		}
		m.albums = msg.albums
		items := make([]list.Item, len(msg.albums))
		for i, album := range msg.albums {
			items[i] = albumItem{album: album}
		}
		m.albumList = list.New(items, list.NewDefaultDelegate(), 0, 0)
		m.albumList.Title = "Google Photos Albums"
		m.albumList.SetSize(m.width-4, m.height-8)
		return m, nil

	case progressUpdateMsg:
		m.progress = tasks.ProgressUpdate(msg)
		return m, m.waitForProgress()

	case syncCompleteMsg:
		m.summary = msg.summary
		m.err = msg.err
		m.view = ResultView
		m.progressChan = nil
		return m, nil
	}

	return m.updateList(msg)
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil && m.view != ResultView {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	switch m.view {
	case AlbumListView:
		return m.renderAlbumList()
	case ConfirmView:
		return m.renderConfirm()
	case SyncView:
		return m.renderSync()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) handleAlbumListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "enter":
		selected := m.albumList.SelectedItem()
		if selected != nil {
			if item, ok := selected.(albumItem); ok {
				album := item.album
				m.selectedAlbum = &album
				m.view = ConfirmView
			}
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.albumList, cmd = m.albumList.Update(msg)
	return m, cmd
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "n", "esc":
		m.view = AlbumListView
		return m, nil
	case "y":
		m.view = SyncView
		return m, m.startSync()
	}
	return m, nil
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "o":
		if m.summary != nil && m.summary.AlbumURL != "" {
			shared.OpenBrowser(m.summary.AlbumURL)
		}
		return m, nil
	case "r":
		m.view = AlbumListView
		m.selectedAlbum = nil
		m.summary = nil
		m.err = nil
		return m, nil
	}
	return m, nil
}

func (m *Model) updateList(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	if m.view == AlbumListView {
		m.albumList, cmd = m.albumList.Update(msg)
	}
	return m, cmd
}

func (m *Model) fetchAlbums() tea.Cmd {
	return func() tea.Msg {
		var albums []models.Album
		pageToken := ""
		for {
			page, next, err := m.target.ListAlbums(m.ctx, pageToken)
			if err != nil {
				return albumsFetchedMsg{err: err}
			}
			albums = append(albums, page...)
			if next == "" {
				return albumsFetchedMsg{albums: albums}
			}
			pageToken = next
		}
	}
}

func (m *Model) startSync() tea.Cmd {
	params := m.params
	params.AlbumID = m.selectedAlbum.ID
	params.AlbumName = ""

	m.progressChan = make(chan tasks.ProgressUpdate, 50)
	progressChan := m.progressChan

	go func() {
		summary, err := m.engine.Run(m.ctx, progressChan, params)
		m.summary = summary
		m.err = err
		close(progressChan)
	}()

	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	return func() tea.Msg {
		if m.progressChan == nil {
			return syncCompleteMsg{summary: m.summary, err: m.err}
		}

		update, ok := <-m.progressChan
		if !ok {
			return syncCompleteMsg{summary: m.summary, err: m.err}
		}
		return progressUpdateMsg(update)
	}
}

func (m *Model) renderAlbumList() string {
	helpKeys := []key.Binding{m.keys.enter, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n\n%s", m.albumList.View(), helpView)
}

func (m *Model) renderConfirm() string {
	title := styles.title.Render(fmt.Sprintf("Sync folder to '%s'?", m.selectedAlbum.Title))
	info := fmt.Sprintf("\nFolder: %s\nAlbum: %s (%d items)\n", m.params.FolderID, m.selectedAlbum.Title, m.selectedAlbum.ItemCount)

	helpKeys := []key.Binding{m.keys.yes, m.keys.no, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s\n%s", title, info, helpView)
}

func (m *Model) renderSync() string {
	title := styles.title.Render("Syncing Files")

	var phase string
	switch m.progress.Phase {
	case tasks.ScanSource:
		phase = "Scanning source folder..."
	case tasks.ApplyFiltersPhase:
		phase = "Applying filters..."
	case tasks.ProcessBatches:
		phase = fmt.Sprintf("Uploading (%d/%d)", m.progress.Step, m.progress.Total)
	default:
		phase = "Processing..."
	}

	return fmt.Sprintf("%s\n\n%s\n%s", title, phase, m.progress.Message)
}

func (m *Model) renderResult() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Sync failed: %v\n\nPress r to retry, q to quit", m.err))
	}

	if m.summary == nil {
		return styles.err.Render("No result available\n\nPress r to retry, q to quit")
	}

	title := styles.ok.Render("✓ Sync Complete!")
	info := fmt.Sprintf(
		"\nUploaded: %d\nSkipped: %d\nErrors: %d\nAlbum: %s",
		m.summary.Succeeded,
		m.summary.Skipped,
		m.summary.Errored,
		m.summary.AlbumURL,
	)

	var failed string
	if m.summary.Errored > 0 {
		failed = fmt.Sprintf("\n\n%s", styles.warn.Render(fmt.Sprintf("%d files failed:", m.summary.Errored)))
		for _, result := range m.summary.Results {
			if result.Outcome == models.OutcomeError {
				failed += fmt.Sprintf("\n  • %s", result.Filename)
			}
		}
	}

	helpKeys := []key.Binding{m.keys.open, m.keys.restart, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s%s\n\n%s", title, info, failed, helpView)
}
