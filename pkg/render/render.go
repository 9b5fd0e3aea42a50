// Package render builds the terminal view of a snapshot. Rendering is a pure
// function of the snapshot: the same input always produces the same bytes,
// and every call rebuilds the whole view.
package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/poly-watch/pkg/polymarket"
	"github.com/poly-watch/pkg/wallet"
)

type Options struct {
	// ShowRaw expands the raw-payload disclosure; collapsed by default.
	ShowRaw bool
}

var (
	liveBadge  = color.New(color.FgGreen, color.Bold)
	errorBadge = color.New(color.FgRed, color.Bold)
)

// Render produces the full results view for a snapshot.
func Render(snap *polymarket.Snapshot, opts Options) string {
	var b strings.Builder

	fmt.Fprintf(&b, "snapshot requested at %s\n", FormatTime(snap.RequestedAt))

	for _, res := range snap.Results {
		b.WriteString("\n")
		renderWallet(&b, res, opts)
	}
	return b.String()
}

func renderWallet(b *strings.Builder, res polymarket.WalletResult, opts Options) {
	if res.Error != "" {
		fmt.Fprintf(b, "%s  %s\n", res.Address, errorBadge.Sprint("[API ERROR]"))
		fmt.Fprintf(b, "  %s\n", res.Error)
		return
	}

	fmt.Fprintf(b, "%s  %s\n", res.Address, liveBadge.Sprint("[LIVE]"))

	if len(res.Positions) == 0 {
		b.WriteString("  no open positions\n")
	} else {
		renderPositions(b, res.Positions)
	}

	if len(res.OpenOrders) == 0 {
		b.WriteString("  no open orders\n")
	} else {
		renderOrders(b, res.OpenOrders)
	}

	renderRaw(b, res, opts)
}

func renderPositions(b *strings.Builder, positions []polymarket.Position) {
	t := tablewriter.NewWriter(b)
	t.SetHeader([]string{"Market", "Outcome", "Size", "Avg", "Last", "Value"})
	t.SetBorder(false)
	t.SetAutoWrapText(false)
	for _, p := range positions {
		t.Append([]string{
			marketLabel(p.Slug, p.Question),
			orDash(p.Outcome),
			FormatValue(p.Size),
			FormatValue(p.AvgPrice),
			FormatValue(p.LastPrice),
			FormatValue(p.Value),
		})
	}
	t.Render()
}

func renderOrders(b *strings.Builder, orders []polymarket.Order) {
	t := tablewriter.NewWriter(b)
	t.SetHeader([]string{"Market", "Outcome", "Side", "Type", "Price", "Size", "Remaining", "Status", "Created"})
	t.SetBorder(false)
	t.SetAutoWrapText(false)
	for _, o := range orders {
		t.Append([]string{
			marketLabel(o.Slug, o.Question),
			orDash(o.Outcome),
			orDash(o.Side),
			orDash(o.OrderType),
			FormatValue(o.Price),
			FormatValue(o.Size),
			FormatValue(o.SizeRemaining),
			orDash(o.Status),
			FormatTime(o.CreatedAt),
		})
	}
	t.Render()
}

func renderRaw(b *strings.Builder, res polymarket.WalletResult, opts Options) {
	if !opts.ShowRaw {
		fmt.Fprintf(b, "  raw payload: %d position records, %d order records (hidden)\n",
			len(res.RawPositions), len(res.RawOrders))
		return
	}
	fmt.Fprintf(b, "  raw payload for %s:\n", wallet.Abbrev(res.Address))
	for _, r := range res.RawPositions {
		b.WriteString("    " + compactJSON(r) + "\n")
	}
	for _, r := range res.RawOrders {
		b.WriteString("    " + compactJSON(r) + "\n")
	}
}

func marketLabel(slug, question string) string {
	if question != "" {
		return question
	}
	return orDash(slug)
}

func compactJSON(r json.RawMessage) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, r); err != nil {
		return string(r)
	}
	return buf.String()
}
