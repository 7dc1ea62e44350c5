package scan

import (
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"strconv"

	"github.com/Mohsinsiddi/txscan/internal/ui"
	"gopkg.in/yaml.v3"
)

// Printer is a Sink that renders matches to a writer.
type Printer interface {
	Sink
	Close() error
}

// NewPrinter returns the printer for format: "text", "json" or "yaml".
func NewPrinter(format string, w io.Writer) (Printer, error) {
	switch format {
	case "", "text":
		return &TextPrinter{w: w}, nil
	case "json":
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		return &JSONPrinter{enc: enc}, nil
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		return &YAMLPrinter{enc: enc}, nil
	default:
		return nil, fmt.Errorf("unknown output format %q: want text, json or yaml", format)
	}
}

// Labels of the text block, in print order.
var textLabels = [...]string{"tx-hash", "from", "to", "gas", "gas-used", "cumm-gas", "gas-price", "contract"}

// TextPrinter writes one eight-line labelled block per match, followed by a
// blank line.
type TextPrinter struct {
	w io.Writer
}

// Write renders m.
func (p *TextPrinter) Write(m Match) error {
	values := [len(textLabels)]string{
		m.TxHash,
		m.From,
		m.To,
		strconv.FormatUint(m.Gas, 10),
		strconv.FormatUint(m.GasUsed, 10),
		strconv.FormatUint(m.CumulativeGasUsed, 10),
		bigString(m.GasPrice),
		m.ContractAddress,
	}
	for i, label := range textLabels {
		key := ui.StyleMeta.Render(fmt.Sprintf("%-16s", label))
		if _, err := fmt.Fprintf(p.w, "   %s : %s\n", key, values[i]); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(p.w)
	return err
}

// Close is a no-op.
func (p *TextPrinter) Close() error { return nil }

// record is the structured form of a Match. Big values are decimal strings
// so JSON consumers do not lose precision.
type record struct {
	BlockNumber       uint64 `json:"block_number"        yaml:"block_number"`
	TxHash            string `json:"tx_hash"             yaml:"tx_hash"`
	From              string `json:"from"                yaml:"from"`
	To                string `json:"to"                  yaml:"to"`
	Gas               uint64 `json:"gas"                 yaml:"gas"`
	GasUsed           uint64 `json:"gas_used"            yaml:"gas_used"`
	CumulativeGasUsed uint64 `json:"cumulative_gas_used" yaml:"cumulative_gas_used"`
	GasPrice          string `json:"gas_price"           yaml:"gas_price"`
	ContractAddress   string `json:"contract_address"    yaml:"contract_address"`
}

func toRecord(m Match) record {
	return record{
		BlockNumber:       m.BlockNumber,
		TxHash:            m.TxHash,
		From:              m.From,
		To:                m.To,
		Gas:               m.Gas,
		GasUsed:           m.GasUsed,
		CumulativeGasUsed: m.CumulativeGasUsed,
		GasPrice:          bigString(m.GasPrice),
		ContractAddress:   m.ContractAddress,
	}
}

// JSONPrinter writes one JSON object per line.
type JSONPrinter struct {
	enc *json.Encoder
}

// Write renders m.
func (p *JSONPrinter) Write(m Match) error { return p.enc.Encode(toRecord(m)) }

// Close is a no-op.
func (p *JSONPrinter) Close() error { return nil }

// YAMLPrinter writes one YAML document per match.
type YAMLPrinter struct {
	enc *yaml.Encoder
}

// Write renders m.
func (p *YAMLPrinter) Write(m Match) error { return p.enc.Encode(toRecord(m)) }

// Close flushes the encoder.
func (p *YAMLPrinter) Close() error { return p.enc.Close() }

func bigString(n *big.Int) string {
	if n == nil {
		return ""
	}
	return n.String()
}
