// Package chain
package chain

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"go.uber.org/zap"
)

// Node is the slice of the RPC client surface this service reads through.
// *ethclient.Client satisfies it; tests inject fakes.
type Node interface {
	CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	FilterLogs(ctx context.Context, query ethereum.FilterQuery) ([]ethtypes.Log, error)
	BlockNumber(ctx context.Context) (uint64, error)
	HeaderByNumber(ctx context.Context, number *big.Int) (*ethtypes.Header, error)
}

type WrapperConfig struct {
	URLs   []string
	Logger *zap.Logger
}

// Wrapper holds the dialed RPC nodes. Reads go to the first node; the rest
// are spares for operators to rotate in via config.
type Wrapper struct {
	nodes  []Node
	logger *zap.Logger
}

func NewWrapper(cfg WrapperConfig) (*Wrapper, error) {
	w := &Wrapper{
		logger: cfg.Logger,
	}
	for _, url := range cfg.URLs {
		w.logger.Info("Setup RPC node", zap.String("url", url))
		client, err := ethclient.Dial(url)
		if err != nil {
			return nil, err
		}
		w.nodes = append(w.nodes, client)
	}
	return w, nil
}

func (w *Wrapper) Node() Node {
	return w.nodes[0]
}
