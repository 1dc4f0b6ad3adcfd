package floor

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Quit     key.Binding
	Help     key.Binding
	Toggle   key.Binding
	Reset    key.Binding
	Next     key.Binding
	Prev     key.Binding
	Bid      key.Binding
	Sell     key.Binding
	Share    key.Binding
	Refresh  key.Binding
	Finalize key.Binding

	// bid form and confirmations
	Submit  key.Binding
	Cancel  key.Binding
	Focus   key.Binding
	Confirm key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "q"),
			key.WithHelp("q", "sair"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "ajuda"),
		),
		Toggle: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("espaço", "iniciar/pausar"),
		),
		Reset: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reiniciar timer"),
		),
		Next: key.NewBinding(
			key.WithKeys("right", "n"),
			key.WithHelp("→/n", "próxima carta"),
		),
		Prev: key.NewBinding(
			key.WithKeys("left", "p"),
			key.WithHelp("←/p", "carta anterior"),
		),
		Bid: key.NewBinding(
			key.WithKeys("b"),
			key.WithHelp("b", "registrar lance"),
		),
		Sell: key.NewBinding(
			key.WithKeys("v"),
			key.WithHelp("v", "vender"),
		),
		Share: key.NewBinding(
			key.WithKeys("w"),
			key.WithHelp("w", "WhatsApp"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("ctrl+r", "atualizar"),
		),
		Finalize: key.NewBinding(
			key.WithKeys("F"),
			key.WithHelp("F", "finalizar leilão"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "confirmar"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancelar"),
		),
		Focus: key.NewBinding(
			key.WithKeys("tab", "shift+tab"),
			key.WithHelp("tab", "trocar campo"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("y", "s"),
			key.WithHelp("s", "sim"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Bid, k.Sell, k.Next, k.Prev, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Toggle, k.Reset, k.Next, k.Prev},
		{k.Bid, k.Sell, k.Share, k.Refresh},
		{k.Finalize, k.Help, k.Quit},
	}
}
