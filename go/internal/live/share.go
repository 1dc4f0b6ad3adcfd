package live

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/tgfriperie/cavalin-tcg-novo/go/internal/models"
)

// ShareLinkPrefix opens WhatsApp with a prefilled message.
const ShareLinkPrefix = "https://wa.me/?text="

// uriComponent undoes the QueryEscape encodings that encodeURIComponent leaves
// alone, so links match what browsers produce.
var uriComponent = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// ShareInput is the live state a share message describes.
type ShareInput struct {
	Card          models.Card
	CurrentBid    float64
	WinningClient string
	MinIncrement  float64
}

// RenderShareMessage fills the announcement template for a card.
func RenderShareMessage(template string, in ShareInput) ShareMessage {
	market := "---"
	if in.Card.MarketValue != nil && *in.Card.MarketValue != 0 {
		market = money(*in.Card.MarketValue)
	}
	winner := in.WinningClient
	if winner == "" {
		winner = NoWinner
	}

	text := strings.NewReplacer(
		"[Nome da Carta]", in.Card.Name,
		"[Numeração da Carta]", in.Card.Collection,
		"[Condição]", in.Card.Condition,
		"[Valor de Mercado]", market,
		"[Idioma]", in.Card.Language,
		"[Valor Inicial]", money(in.Card.InitialValue),
		"[Incremento Mínimo]", money(in.MinIncrement),
		"[Lance Atual]", money(in.CurrentBid),
		"[Vencedor Atual]", winner,
	).Replace(template)

	encoded := EncodeURIComponent(text)
	return ShareMessage{
		Text:    text,
		Encoded: encoded,
		Link:    ShareLinkPrefix + encoded,
	}
}

// EncodeURIComponent percent-encodes s like the JavaScript function of the same name.
func EncodeURIComponent(s string) string {
	return uriComponent.Replace(url.QueryEscape(s))
}

func money(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
