// Package floor is the terminal console the operator drives during a live auction.
package floor

import (
	"context"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"connectrpc.com/connect"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/tgfriperie/cavalin-tcg-novo/go/internal/live"
)

// LiveClient is the part of the LiveService the console uses. *live.Client satisfies it.
type LiveClient interface {
	OpenSession(ctx context.Context, auctionID string) (*live.State, error)
	CloseSession(ctx context.Context, auctionID string, finalize bool) error
	GetState(ctx context.Context, auctionID string) (*live.State, error)
	StartTimer(ctx context.Context, auctionID string) (*live.State, error)
	PauseTimer(ctx context.Context, auctionID string) (*live.State, error)
	ResetTimer(ctx context.Context, auctionID string) (*live.State, error)
	NextItem(ctx context.Context, auctionID string) (*live.State, error)
	PrevItem(ctx context.Context, auctionID string) (*live.State, error)
	RegisterBid(ctx context.Context, auctionID string, value float64, client string) (*live.BidResult, error)
	FinishSale(ctx context.Context, auctionID string) (*live.SaleResult, error)
	ShareMessage(ctx context.Context, auctionID string) (*live.ShareMessage, error)
}

type Options struct {
	Context   context.Context
	Client    LiveClient
	AuctionID string
	PollTick  time.Duration
	Timeout   time.Duration
}

type mode int

const (
	modeFloor mode = iota
	modeBid
	modeConfirmSale
	modeConfirmFinalize
)

// Model is the root Bubble Tea model.
type Model struct {
	ctx       context.Context
	client    LiveClient
	auctionID string
	pollTick  time.Duration
	timeout   time.Duration

	keys  keyMap
	help  help.Model
	theme styles

	width  int
	height int

	mode       mode
	bidInputs  [2]textinput.Model // value, client
	bidFocus   int
	state      *live.State
	share      *live.ShareMessage
	status     string
	err        error
	busy       bool
	quitting   bool
	lastUpdate time.Time
}

func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	pollTick := opts.PollTick
	if pollTick <= 0 {
		pollTick = time.Second
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	value := textinput.New()
	value.Placeholder = "valor (ex. 25,50)"
	value.CharLimit = 12
	value.Width = 20
	client := textinput.New()
	client.Placeholder = "cliente"
	client.CharLimit = 60
	client.Width = 30

	return Model{
		ctx:       ctx,
		client:    opts.Client,
		auctionID: opts.AuctionID,
		pollTick:  pollTick,
		timeout:   timeout,
		keys:      defaultKeyMap(),
		help:      help.New(),
		theme:     defaultStyles(),
		bidInputs: [2]textinput.Model{value, client},
	}
}

// Messages

type tickMsg time.Time

type stateMsg struct {
	state  *live.State
	status string
}

type bidMsg struct{ res *live.BidResult }

type saleMsg struct{ res *live.SaleResult }

type shareMsg struct{ msg *live.ShareMessage }

type closedMsg struct{}

type errMsg struct{ err error }

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.openCmd(), tickCmd(m.pollTick))
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tickMsg:
		// the console API owns the countdown; poll it unless a call is in flight
		if m.busy || m.state == nil {
			return m, tickCmd(m.pollTick)
		}
		return m, tea.Batch(m.stateCmd(m.client.GetState, ""), tickCmd(m.pollTick))

	case stateMsg:
		m.busy = false
		m.err = nil
		m.state = msg.state
		m.lastUpdate = time.Now()
		if msg.status != "" {
			m.status = msg.status
		}
		return m, nil

	case bidMsg:
		m.busy = false
		m.err = nil
		m.state = msg.res.State
		m.lastUpdate = time.Now()
		m.status = fmt.Sprintf("Lance de %s para %s", formatMoney(msg.res.Bid.Value), msg.res.Bid.Client)
		if !msg.res.Persisted {
			m.status += " (não salvo no servidor)"
		}
		return m, nil

	case saleMsg:
		m.busy = false
		m.err = nil
		m.state = msg.res.State
		m.lastUpdate = time.Now()
		m.status = fmt.Sprintf("Vendido para %s por %s", msg.res.Buyer, formatMoney(msg.res.Value))
		return m, nil

	case shareMsg:
		m.busy = false
		m.err = nil
		m.share = msg.msg
		m.status = "Link do WhatsApp gerado"
		return m, nil

	case closedMsg:
		m.quitting = true
		return m, tea.Quit

	case errMsg:
		m.busy = false
		m.err = msg.err
		return m, nil
	}

	if m.mode == modeBid {
		return m.updateInputs(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.quitting = true
		return m, tea.Quit
	}

	switch m.mode {
	case modeBid:
		return m.handleBidKey(msg)
	case modeConfirmSale, modeConfirmFinalize:
		return m.handleConfirmKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}

	if m.state == nil || m.busy {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Toggle):
		m.busy = true
		if m.state.Paused {
			return m, m.stateCmd(m.client.StartTimer, "Timer iniciado")
		}
		return m, m.stateCmd(m.client.PauseTimer, "Timer pausado")
	case key.Matches(msg, m.keys.Reset):
		m.busy = true
		return m, m.stateCmd(m.client.ResetTimer, "Timer reiniciado")
	case key.Matches(msg, m.keys.Next):
		m.busy = true
		m.share = nil
		return m, m.stateCmd(m.client.NextItem, "")
	case key.Matches(msg, m.keys.Prev):
		m.busy = true
		m.share = nil
		return m, m.stateCmd(m.client.PrevItem, "")
	case key.Matches(msg, m.keys.Refresh):
		m.busy = true
		return m, m.stateCmd(m.client.GetState, "")
	case key.Matches(msg, m.keys.Bid):
		return m.openBidForm(), textinput.Blink
	case key.Matches(msg, m.keys.Sell):
		if m.state.WinningClient == "" {
			m.err = errors.New("nenhum lance vencedor para esta carta")
			return m, nil
		}
		m.mode = modeConfirmSale
		return m, nil
	case key.Matches(msg, m.keys.Share):
		m.busy = true
		return m, m.shareCmd()
	case key.Matches(msg, m.keys.Finalize):
		m.mode = modeConfirmFinalize
		return m, nil
	}
	return m, nil
}

func (m Model) openBidForm() Model {
	m.mode = modeBid
	m.err = nil
	m.bidFocus = 0
	m.bidInputs[0].SetValue("")
	m.bidInputs[1].SetValue("")
	if m.state != nil {
		m.bidInputs[0].SetValue(suggestBid(m.state))
	}
	m.bidInputs[0].Focus()
	m.bidInputs[1].Blur()
	return m
}

func (m Model) handleBidKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.mode = modeFloor
		return m, nil
	case key.Matches(msg, m.keys.Focus):
		m.bidInputs[m.bidFocus].Blur()
		m.bidFocus = (m.bidFocus + 1) % len(m.bidInputs)
		return m, m.bidInputs[m.bidFocus].Focus()
	case key.Matches(msg, m.keys.Submit):
		if m.bidFocus == 0 {
			m.bidInputs[0].Blur()
			m.bidFocus = 1
			return m, m.bidInputs[1].Focus()
		}
		value, err := parseMoney(m.bidInputs[0].Value())
		if err != nil {
			m.err = err
			return m, nil
		}
		client := strings.TrimSpace(m.bidInputs[1].Value())
		if client == "" {
			m.err = errors.New("informe o cliente")
			return m, nil
		}
		m.mode = modeFloor
		m.busy = true
		return m, m.bidCmd(value, client)
	}
	return m.updateInputs(msg)
}

func (m Model) updateInputs(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.bidInputs[m.bidFocus], cmd = m.bidInputs[m.bidFocus].Update(msg)
	return m, cmd
}

func (m Model) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	confirming := m.mode
	m.mode = modeFloor
	if !key.Matches(msg, m.keys.Confirm) {
		return m, nil
	}
	m.busy = true
	if confirming == modeConfirmFinalize {
		return m, m.closeCmd(true)
	}
	return m, m.saleCmd()
}

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) callCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(m.ctx, m.timeout)
}

func (m Model) openCmd() tea.Cmd {
	return m.stateCmd(m.client.OpenSession, "Sessão aberta")
}

func (m Model) stateCmd(op func(context.Context, string) (*live.State, error), status string) tea.Cmd {
	auctionID := m.auctionID
	return func() tea.Msg {
		ctx, cancel := m.callCtx()
		defer cancel()
		st, err := op(ctx, auctionID)
		if err != nil {
			return errMsg{err}
		}
		return stateMsg{state: st, status: status}
	}
}

func (m Model) bidCmd(value float64, client string) tea.Cmd {
	auctionID := m.auctionID
	return func() tea.Msg {
		ctx, cancel := m.callCtx()
		defer cancel()
		res, err := m.client.RegisterBid(ctx, auctionID, value, client)
		if err != nil {
			return errMsg{err}
		}
		return bidMsg{res}
	}
}

func (m Model) saleCmd() tea.Cmd {
	auctionID := m.auctionID
	return func() tea.Msg {
		ctx, cancel := m.callCtx()
		defer cancel()
		res, err := m.client.FinishSale(ctx, auctionID)
		if err != nil {
			return errMsg{err}
		}
		return saleMsg{res}
	}
}

func (m Model) shareCmd() tea.Cmd {
	auctionID := m.auctionID
	return func() tea.Msg {
		ctx, cancel := m.callCtx()
		defer cancel()
		msg, err := m.client.ShareMessage(ctx, auctionID)
		if err != nil {
			return errMsg{err}
		}
		return shareMsg{msg}
	}
}

func (m Model) closeCmd(finalize bool) tea.Cmd {
	auctionID := m.auctionID
	return func() tea.Msg {
		ctx, cancel := m.callCtx()
		defer cancel()
		if err := m.client.CloseSession(ctx, auctionID, finalize); err != nil {
			return errMsg{err}
		}
		return closedMsg{}
	}
}

// suggestBid pre-fills the bid form: the opening value while nobody has bid,
// otherwise the current bid plus the minimum increment.
func suggestBid(st *live.State) string {
	v := st.CurrentBid
	if st.WinningClient != "" {
		v += st.MinIncrement
	}
	return strings.Replace(strconv.FormatFloat(v, 'f', 2, 64), ".", ",", 1)
}

// parseMoney accepts "25", "25,50", "1.234,56", "R$ 25,50" and "25.50".
var (
	// 1.500 and 12.000.000 are pt-BR thousands groups, not decimals.
	thousandsPattern = regexp.MustCompile(`^\d{1,3}(\.\d{3})+$`)
	decimalPattern   = regexp.MustCompile(`^\d+(\.\d+)?$`)
)

func parseMoney(s string) (float64, error) {
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "R$"))
	n := s
	switch {
	case strings.Contains(n, ","):
		n = strings.ReplaceAll(n, ".", "")
		n = strings.Replace(n, ",", ".", 1)
	case thousandsPattern.MatchString(n):
		n = strings.ReplaceAll(n, ".", "")
	}
	if !decimalPattern.MatchString(n) {
		return 0, fmt.Errorf("valor inválido: %q", s)
	}
	v, err := strconv.ParseFloat(n, 64)
	if err != nil || v <= 0 || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, fmt.Errorf("valor inválido: %q", s)
	}
	return v, nil
}

// errorText strips the Connect code prefix for the status line.
func errorText(err error) string {
	var cerr *connect.Error
	if errors.As(err, &cerr) {
		return cerr.Message()
	}
	return err.Error()
}

// Run starts the console and blocks until the operator quits.
func Run(opts Options) error {
	if opts.Context == nil {
		opts.Context = context.Background()
	}
	p := tea.NewProgram(New(opts), tea.WithAltScreen(), tea.WithContext(opts.Context))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}
