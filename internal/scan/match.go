package scan

import (
	"math/big"

	"github.com/Mohsinsiddi/txscan/internal/chain"
)

// Match is one transaction that passed the account filter, joined with the
// receipt fields that are printed for it.
type Match struct {
	BlockNumber       uint64
	TxHash            string
	From              string
	To                string
	Gas               uint64   // gas limit, from the transaction
	GasUsed           uint64   // from the receipt
	CumulativeGasUsed uint64   // from the receipt
	GasPrice          *big.Int // from the transaction
	ContractAddress   string   // from the receipt; empty unless a contract was created
}

// Sink receives matches in scan order.
type Sink interface {
	Write(m Match) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(m Match) error

// Write calls f(m).
func (f SinkFunc) Write(m Match) error { return f(m) }

func newMatch(block uint64, tx chain.Transaction, r *chain.Receipt) Match {
	return Match{
		BlockNumber:       block,
		TxHash:            r.TransactionHash,
		From:              r.From,
		To:                r.To,
		Gas:               tx.Gas,
		GasUsed:           r.GasUsed,
		CumulativeGasUsed: r.CumulativeGasUsed,
		GasPrice:          tx.GasPrice,
		ContractAddress:   r.ContractAddress,
	}
}
