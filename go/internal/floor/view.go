package floor

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/tgfriperie/cavalin-tcg-novo/go/internal/financial"
	"github.com/tgfriperie/cavalin-tcg-novo/go/internal/live"
)

// historyRows caps the bid ledger shown under the card
const historyRows = 8

type styles struct {
	Title    lipgloss.Style
	Panel    lipgloss.Style
	Label    lipgloss.Style
	Value    lipgloss.Style
	Muted    lipgloss.Style
	Timer    lipgloss.Style
	TimerLow lipgloss.Style
	TimerOff lipgloss.Style
	Leader   lipgloss.Style
	Success  lipgloss.Style
	Error    lipgloss.Style
	Modal    lipgloss.Style
	Sold     lipgloss.Style
}

func defaultStyles() styles {
	return styles{
		Title:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFD700")),
		Panel:    lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#44475A")).Padding(0, 1),
		Label:    lipgloss.NewStyle().Foreground(lipgloss.Color("#8BE9FD")),
		Value:    lipgloss.NewStyle().Foreground(lipgloss.Color("#F8F8F2")),
		Muted:    lipgloss.NewStyle().Foreground(lipgloss.Color("#6272A4")),
		Timer:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#50FA7B")),
		TimerLow: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF5555")),
		TimerOff: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F1FA8C")),
		Leader:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF79C6")),
		Success:  lipgloss.NewStyle().Foreground(lipgloss.Color("#50FA7B")),
		Error:    lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5555")),
		Modal:    lipgloss.NewStyle().Border(lipgloss.DoubleBorder()).BorderForeground(lipgloss.Color("#BD93F9")).Padding(1, 2),
		Sold:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF5555")).Reverse(true),
	}
}

func formatMoney(v float64) string {
	return financial.FormatCurrency(v)
}

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.state == nil {
		if m.err != nil {
			return m.theme.Error.Render("Erro ao abrir a sessão: "+errorText(m.err)) + "\n\n" + m.help.View(m.keys)
		}
		return "Abrindo sessão..."
	}

	sections := []string{m.renderHeader(), m.renderFloor()}
	switch m.mode {
	case modeBid:
		sections = append(sections, m.renderBidForm())
	case modeConfirmSale:
		sections = append(sections, m.theme.Modal.Render(fmt.Sprintf("Vender %s para %s por %s? (s/N)",
			m.cardName(), m.state.WinningClient, formatMoney(m.state.CurrentBid))))
	case modeConfirmFinalize:
		sections = append(sections, m.theme.Modal.Render("Encerrar a sessão e finalizar o leilão? (s/N)"))
	}
	if m.share != nil {
		sections = append(sections, m.theme.Panel.Render(m.share.Text+"\n\n"+m.theme.Muted.Render(m.share.Link)))
	}
	sections = append(sections, m.renderStatus(), m.help.View(m.keys))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) cardName() string {
	if m.state.Card == nil {
		return "-"
	}
	return m.state.Card.Name
}

func (m Model) renderHeader() string {
	st := m.state
	pos := fmt.Sprintf("Carta %d de %d", st.Index+1, st.QueueLength)
	return m.theme.Title.Render(st.AuctionName) + "  " +
		m.theme.Muted.Render(string(st.Status)+" · "+pos)
}

func (m Model) renderFloor() string {
	card := m.renderCard()
	bidding := lipgloss.JoinVertical(lipgloss.Left, m.renderTimer(), "", m.renderBid(), "", m.renderHistory())
	return lipgloss.JoinHorizontal(lipgloss.Top, m.theme.Panel.Render(card), m.theme.Panel.Render(bidding))
}

func (m Model) renderCard() string {
	c := m.state.Card
	if c == nil {
		return m.theme.Muted.Render("Nenhuma carta ativa")
	}
	market := "---"
	if c.MarketValue != nil && *c.MarketValue > 0 {
		market = formatMoney(*c.MarketValue)
	}
	lines := []string{
		m.theme.Title.Render(c.Name),
		m.field("Coleção", c.Collection),
		m.field("Condição", c.Condition),
		m.field("Idioma", c.Language),
		m.field("Valor inicial", formatMoney(c.InitialValue)),
		m.field("Valor Liga", market),
		m.field("Incremento", formatMoney(m.state.MinIncrement)),
	}
	if c.ImageURL != "" {
		lines = append(lines, m.theme.Muted.Render(c.ImageURL))
	}
	if c.IsSold() {
		buyer := ""
		if c.Buyer != nil {
			buyer = " para " + *c.Buyer
		}
		lines = append(lines, "", m.theme.Sold.Render(" VENDIDO"+buyer+" "))
	}
	return strings.Join(lines, "\n")
}

func (m Model) field(label, value string) string {
	if value == "" {
		value = "-"
	}
	return m.theme.Label.Render(label+": ") + m.theme.Value.Render(value)
}

func (m Model) renderTimer() string {
	st := m.state
	clock := fmt.Sprintf("%02d:%02d", st.RemainingSeconds/60, st.RemainingSeconds%60)
	switch {
	case st.Expired:
		return m.theme.TimerLow.Render("⏱ " + clock + "  TEMPO ESGOTADO")
	case st.Paused:
		return m.theme.TimerOff.Render("⏱ " + clock + "  pausado")
	case st.RemainingSeconds <= 10:
		return m.theme.TimerLow.Render("⏱ " + clock)
	default:
		return m.theme.Timer.Render("⏱ " + clock)
	}
}

func (m Model) renderBid() string {
	st := m.state
	leader := live.NoWinner
	if st.WinningClient != "" {
		leader = st.WinningClient
	}
	return m.field("Lance atual", formatMoney(st.CurrentBid)) + "\n" +
		m.theme.Label.Render("Vencedor: ") + m.theme.Leader.Render(leader)
}

func (m Model) renderHistory() string {
	if len(m.state.BidHistory) == 0 {
		return m.theme.Muted.Render("Sem lances nesta carta")
	}
	rows := []string{m.theme.Label.Render("Lances")}
	for i, b := range m.state.BidHistory {
		if i == historyRows {
			rows = append(rows, m.theme.Muted.Render(fmt.Sprintf("... e mais %d", len(m.state.BidHistory)-historyRows)))
			break
		}
		rows = append(rows, fmt.Sprintf("%-12s %-20s %s", formatMoney(b.Value), b.Client, m.theme.Muted.Render(humanize.Time(b.At))))
	}
	return strings.Join(rows, "\n")
}

func (m Model) renderBidForm() string {
	return m.theme.Modal.Render(lipgloss.JoinVertical(lipgloss.Left,
		m.theme.Title.Render("Novo lance"),
		m.theme.Label.Render("Valor:   ")+m.bidInputs[0].View(),
		m.theme.Label.Render("Cliente: ")+m.bidInputs[1].View(),
		m.theme.Muted.Render("enter confirma · tab troca campo · esc cancela"),
	))
}

func (m Model) renderStatus() string {
	switch {
	case m.err != nil:
		return m.theme.Error.Render("✗ " + errorText(m.err))
	case m.busy:
		return m.theme.Muted.Render("...")
	case m.status != "":
		line := m.theme.Success.Render("✓ " + m.status)
		if !m.lastUpdate.IsZero() {
			line += m.theme.Muted.Render("  atualizado " + humanize.Time(m.lastUpdate))
		}
		return line
	}
	return ""
}
