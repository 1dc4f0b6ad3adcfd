package floor

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"connectrpc.com/connect"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/tgfriperie/cavalin-tcg-novo/go/internal/live"
	"github.com/tgfriperie/cavalin-tcg-novo/go/internal/models"
)

type fakeClient struct {
	state *live.State
	calls []string
	bids  []models.Bid
	err   error
}

func newFakeClient() *fakeClient {
	return &fakeClient{state: &live.State{
		AuctionID:        uuid.New(),
		AuctionName:      "Leilão de Sexta",
		Status:           models.AuctionStatusLive,
		QueueLength:      3,
		Card:             &models.Card{Name: "Charizard", Collection: "4/102", Condition: "NM (Near Mint)", InitialValue: 10},
		RemainingSeconds: 60,
		Paused:           true,
		CurrentBid:       10,
		MinIncrement:     2,
		DefaultTimer:     60,
	}}
}

func (f *fakeClient) op(name string) (*live.State, error) {
	f.calls = append(f.calls, name)
	if f.err != nil {
		return nil, f.err
	}
	st := *f.state
	return &st, nil
}

func (f *fakeClient) OpenSession(context.Context, string) (*live.State, error) { return f.op("open") }
func (f *fakeClient) GetState(context.Context, string) (*live.State, error)    { return f.op("state") }
func (f *fakeClient) ResetTimer(context.Context, string) (*live.State, error)  { return f.op("reset") }
func (f *fakeClient) NextItem(context.Context, string) (*live.State, error) {
	f.state.Index++
	return f.op("next")
}
func (f *fakeClient) PrevItem(context.Context, string) (*live.State, error) { return f.op("prev") }

func (f *fakeClient) StartTimer(context.Context, string) (*live.State, error) {
	f.state.Paused = false
	return f.op("start")
}

func (f *fakeClient) PauseTimer(context.Context, string) (*live.State, error) {
	f.state.Paused = true
	return f.op("pause")
}

func (f *fakeClient) CloseSession(_ context.Context, _ string, finalize bool) error {
	f.calls = append(f.calls, "close")
	return f.err
}

func (f *fakeClient) RegisterBid(_ context.Context, _ string, value float64, client string) (*live.BidResult, error) {
	f.calls = append(f.calls, "bid")
	if f.err != nil {
		return nil, f.err
	}
	bid := models.Bid{Value: value, Client: client, CreatedAt: time.Now()}
	f.bids = append(f.bids, bid)
	f.state.CurrentBid = value
	f.state.WinningClient = client
	f.state.BidHistory = append([]live.BidEntry{{Value: value, Client: client, At: bid.CreatedAt}}, f.state.BidHistory...)
	st := *f.state
	return &live.BidResult{State: &st, Bid: bid, Persisted: true}, nil
}

func (f *fakeClient) FinishSale(context.Context, string) (*live.SaleResult, error) {
	f.calls = append(f.calls, "sale")
	if f.err != nil {
		return nil, f.err
	}
	res := &live.SaleResult{Buyer: f.state.WinningClient, Value: f.state.CurrentBid}
	f.state.Index++
	f.state.WinningClient = ""
	st := *f.state
	res.State = &st
	return res, nil
}

func (f *fakeClient) ShareMessage(context.Context, string) (*live.ShareMessage, error) {
	f.calls = append(f.calls, "share")
	return &live.ShareMessage{Text: "Charizard", Link: live.ShareLinkPrefix + "Charizard"}, f.err
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// send feeds msg to the model and executes the returned command once,
// feeding its message back. Commands from text inputs (cursor blinks) are
// not executed.
func send(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, cmd := m.Update(msg)
	m = next.(Model)
	if cmd == nil {
		return m
	}
	switch msg.(type) {
	case tea.KeyMsg:
		if m.mode == modeBid {
			return m
		}
		if out := cmd(); out != nil {
			next, _ = m.Update(out)
			m = next.(Model)
		}
	}
	return m
}

func openModel(t *testing.T, f *fakeClient) Model {
	t.Helper()
	m := New(Options{Client: f, AuctionID: f.state.AuctionID.String()})
	next, _ := m.Update(m.openCmd()())
	return next.(Model)
}

func TestOpenShowsActiveCard(t *testing.T) {
	f := newFakeClient()
	m := openModel(t, f)

	if m.state == nil || m.state.Card.Name != "Charizard" {
		t.Fatalf("state = %+v", m.state)
	}
	view := m.View()
	for _, want := range []string{"Leilão de Sexta", "Carta 1 de 3", "Charizard", "Ninguém", "01:00"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestTimerToggle(t *testing.T) {
	f := newFakeClient()
	m := openModel(t, f)

	m = send(t, m, tea.KeyMsg{Type: tea.KeySpace})
	if m.state.Paused {
		t.Error("timer still paused after first toggle")
	}
	m = send(t, m, tea.KeyMsg{Type: tea.KeySpace})
	if !m.state.Paused {
		t.Error("timer running after second toggle")
	}
	m = send(t, m, runes("r"))
	if got := strings.Join(f.calls, ","); got != "open,start,pause,reset" {
		t.Errorf("calls = %s", got)
	}
}

func TestBidForm(t *testing.T) {
	f := newFakeClient()
	m := openModel(t, f)

	m = send(t, m, runes("b"))
	if m.mode != modeBid {
		t.Fatalf("mode = %v, want bid form", m.mode)
	}
	if got := m.bidInputs[0].Value(); got != "10,00" {
		t.Errorf("suggested bid = %q, want opening value", got)
	}

	m.bidInputs[0].SetValue("32,50")
	m = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.bidFocus != 1 {
		t.Fatalf("focus = %d, want client field", m.bidFocus)
	}

	// no client yet
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(Model)
	if m.err == nil || m.mode != modeBid {
		t.Fatalf("empty client accepted: mode=%v err=%v", m.mode, m.err)
	}

	m.bidInputs[1].SetValue(" Ana ")
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(Model)
	if m.mode != modeFloor || cmd == nil {
		t.Fatalf("bid not submitted: mode=%v", m.mode)
	}
	next, _ = m.Update(cmd())
	m = next.(Model)

	if len(f.bids) != 1 || f.bids[0].Value != 32.5 || f.bids[0].Client != "Ana" {
		t.Fatalf("bids = %+v", f.bids)
	}
	if m.state.WinningClient != "Ana" || !strings.Contains(m.status, "Ana") {
		t.Errorf("state winner = %q, status = %q", m.state.WinningClient, m.status)
	}
	if !strings.Contains(m.View(), "Lances") {
		t.Error("bid history not rendered")
	}

	m = send(t, m, runes("b"))
	if got := m.bidInputs[0].Value(); got != "34,50" {
		t.Errorf("suggested bid = %q, want current bid plus increment", got)
	}
	m = send(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.mode != modeFloor {
		t.Errorf("esc did not close the form")
	}
}

func TestSellNeedsConfirmation(t *testing.T) {
	f := newFakeClient()
	m := openModel(t, f)

	m = send(t, m, runes("v"))
	if m.err == nil || m.mode != modeFloor {
		t.Fatal("sale without winner was not refused")
	}

	f.state.WinningClient = "Bruno"
	f.state.CurrentBid = 25
	m = send(t, m, runes("r"))

	m = send(t, m, runes("v"))
	if m.mode != modeConfirmSale {
		t.Fatalf("mode = %v, want confirmation", m.mode)
	}
	m = send(t, m, runes("n"))
	if m.mode != modeFloor || strings.Contains(strings.Join(f.calls, ","), "sale") {
		t.Fatal("declined confirmation still sold")
	}

	m = send(t, m, runes("v"))
	m = send(t, m, runes("s"))
	if m.state.Index != 1 || !strings.Contains(m.status, "Bruno") {
		t.Errorf("after sale index=%d status=%q", m.state.Index, m.status)
	}
}

func TestRemoteErrorIsShown(t *testing.T) {
	f := newFakeClient()
	m := openModel(t, f)

	f.err = connect.NewError(connect.CodeFailedPrecondition, errors.New("card already sold"))
	m = send(t, m, runes("n"))
	if m.err == nil || m.busy {
		t.Fatalf("err = %v busy = %v", m.err, m.busy)
	}
	if !strings.Contains(m.View(), "card already sold") {
		t.Errorf("view does not show the error:\n%s", m.View())
	}
}

func TestShareLink(t *testing.T) {
	f := newFakeClient()
	m := openModel(t, f)
	m = send(t, m, runes("w"))
	if m.share == nil || !strings.Contains(m.View(), "https://wa.me/?text=") {
		t.Errorf("share = %+v", m.share)
	}
	m = send(t, m, runes("n"))
	if m.share != nil {
		t.Error("share message kept after moving to the next card")
	}
}

func TestParseMoney(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{"25", 25, false},
		{"25,50", 25.5, false},
		{"1.234,56", 1234.56, false},
		{"R$ 40,00", 40, false},
		{"12.75", 12.75, false},
		{"1.500", 1500, false},
		{"2.000", 2000, false},
		{"R$ 12.000.000", 12000000, false},
		{"1.5", 1.5, false},
		{"1.2345", 1.2345, false},
		{"Inf", 0, true},
		{"NaN", 0, true},
		{"1e300", 0, true},
		{"1,2,3", 0, true},
		{"0", 0, true},
		{"-5", 0, true},
		{"dez", 0, true},
	}
	for _, tt := range tests {
		got, err := parseMoney(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseMoney(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("parseMoney(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
