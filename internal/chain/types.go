package chain

import "math/big"

// Block is a block fetched with full transaction bodies.
type Block struct {
	Number       uint64
	Hash         string
	Transactions []Transaction
}

// Transaction holds the fields txscan reads from a block's transaction list.
// Addresses keep the exact form the node returned them in.
type Transaction struct {
	Hash     string
	From     string
	To       string // empty for contract creation
	Gas      uint64
	GasPrice *big.Int
}

// Receipt holds the post-execution fields of a mined transaction.
type Receipt struct {
	TransactionHash   string
	From              string
	To                string
	GasUsed           uint64
	CumulativeGasUsed uint64
	ContractAddress   string // non-empty when a contract was deployed
}
