// Package chain
package chain

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/daoforge/governor-backend/types"
)

type ReaderConfig struct {
	Node            Node
	GovernorAddress string
	TokenAddress    string
	Logger          *zap.Logger
}

// Reader wraps the read-only governor and token calls. Every operation is
// side-effect free and maps provider or revert failures to
// types.ErrUnavailable instead of propagating them raw: the caller must see
// "unknown", not a throw and not a zero.
type Reader struct {
	node     Node
	governor common.Address
	token    common.Address
	logger   *zap.Logger
}

func NewReader(cfg ReaderConfig) (*Reader, error) {
	if !common.IsHexAddress(cfg.GovernorAddress) {
		return nil, fmt.Errorf("invalid governor address: %s", cfg.GovernorAddress)
	}
	if !common.IsHexAddress(cfg.TokenAddress) {
		return nil, fmt.Errorf("invalid token address: %s", cfg.TokenAddress)
	}
	return &Reader{
		node:     cfg.Node,
		governor: common.HexToAddress(cfg.GovernorAddress),
		token:    common.HexToAddress(cfg.TokenAddress),
		logger:   cfg.Logger.With(zap.String("component", "chain.Reader")),
	}, nil
}

func (r *Reader) GovernorAddress() common.Address {
	return r.governor
}

// staticCall packs method args, performs an eth_call and unpacks the result
// into out. All failure modes collapse into ErrUnavailable with the cause
// preserved for the log line.
func (r *Reader) staticCall(ctx context.Context, contract common.Address, contractABI *abi.ABI, method string, out interface{}, args ...interface{}) error {
	lgr := r.logger.With(zap.String("method", method))
	payload, err := contractABI.Pack(method, args...)
	if err != nil {
		return err
	}
	res, err := r.node.CallContract(ctx, ethereum.CallMsg{To: &contract, Data: payload}, nil)
	if err != nil {
		lgr.Warn("contract call failed", zap.Error(err))
		return fmt.Errorf("%w: %s: %v", types.ErrUnavailable, method, err)
	}
	if len(res) == 0 {
		// A zero-length return means the contract is not deployed at this
		// address or the call reverted without data.
		lgr.Warn("contract call returned no data")
		return fmt.Errorf("%w: %s: empty return", types.ErrUnavailable, method)
	}
	if err := contractABI.UnpackIntoInterface(out, method, res); err != nil {
		lgr.Warn("cannot unpack call result", zap.Error(err))
		return fmt.Errorf("%w: %s: %v", types.ErrUnavailable, method, err)
	}
	return nil
}

// ProposalCore reads state, snapshot and deadline for one proposal within a
// single pass. Any sub-read failing makes the whole core unavailable.
func (r *Reader) ProposalCore(ctx context.Context, id *big.Int) (*types.ProposalCore, error) {
	var state uint8
	if err := r.staticCall(ctx, r.governor, &GovernorABI, "state", &state, id); err != nil {
		return nil, err
	}
	var snapshot *big.Int
	if err := r.staticCall(ctx, r.governor, &GovernorABI, "proposalSnapshot", &snapshot, id); err != nil {
		return nil, err
	}
	var deadline *big.Int
	if err := r.staticCall(ctx, r.governor, &GovernorABI, "proposalDeadline", &deadline, id); err != nil {
		return nil, err
	}
	return &types.ProposalCore{
		State:    types.ProposalState(state),
		Snapshot: snapshot.Uint64(),
		Deadline: deadline.Uint64(),
	}, nil
}

// AggregateVotes reads the contract's cumulative totals getter. This source
// can lag the event log right after a transaction is mined; reconciliation
// decides which source wins, not this method.
func (r *Reader) AggregateVotes(ctx context.Context, id *big.Int) (*types.Tally, error) {
	var out struct {
		AgainstVotes *big.Int
		ForVotes     *big.Int
		AbstainVotes *big.Int
	}
	if err := r.staticCall(ctx, r.governor, &GovernorABI, "proposalVotes", &out, id); err != nil {
		return nil, err
	}
	return &types.Tally{
		For:     out.ForVotes,
		Against: out.AgainstVotes,
		Abstain: out.AbstainVotes,
	}, nil
}

func (r *Reader) HasVoted(ctx context.Context, id *big.Int, account common.Address) (bool, error) {
	var voted bool
	if err := r.staticCall(ctx, r.governor, &GovernorABI, "hasVoted", &voted, id, account); err != nil {
		return false, err
	}
	return voted, nil
}

// VotingPower is the account's live delegated power. Not valid for
// eligibility decisions, those must use VotingPowerAt with the proposal's
// snapshot block.
func (r *Reader) VotingPower(ctx context.Context, account common.Address) (*big.Int, error) {
	var power *big.Int
	if err := r.staticCall(ctx, r.token, &TokenABI, "getVotes", &power, account); err != nil {
		return nil, err
	}
	return power, nil
}

func (r *Reader) VotingPowerAt(ctx context.Context, account common.Address, block uint64) (*big.Int, error) {
	var power *big.Int
	if err := r.staticCall(ctx, r.token, &TokenABI, "getPastVotes", &power, account, new(big.Int).SetUint64(block)); err != nil {
		return nil, err
	}
	return power, nil
}

func (r *Reader) TokenBalance(ctx context.Context, account common.Address) (*big.Int, error) {
	var balance *big.Int
	if err := r.staticCall(ctx, r.token, &TokenABI, "balanceOf", &balance, account); err != nil {
		return nil, err
	}
	return balance, nil
}

// VoteCost reads the fixed per-ballot cost constant.
func (r *Reader) VoteCost(ctx context.Context) (*big.Int, error) {
	var cost *big.Int
	if err := r.staticCall(ctx, r.governor, &GovernorABI, "voteCost", &cost); err != nil {
		return nil, err
	}
	return cost, nil
}

// LatestBlock returns the newest header's number and timestamp, used to
// estimate wall-clock deadlines for unmined blocks.
func (r *Reader) LatestBlock(ctx context.Context) (uint64, time.Time, error) {
	header, err := r.node.HeaderByNumber(ctx, nil)
	if err != nil {
		r.logger.Warn("cannot load latest header", zap.Error(err))
		return 0, time.Time{}, fmt.Errorf("%w: latest header: %v", types.ErrUnavailable, err)
	}
	return header.Number.Uint64(), time.Unix(int64(header.Time), 0), nil
}

// BlockTime returns the timestamp of an already-mined block.
func (r *Reader) BlockTime(ctx context.Context, number uint64) (time.Time, error) {
	header, err := r.node.HeaderByNumber(ctx, new(big.Int).SetUint64(number))
	if err != nil {
		r.logger.Warn("cannot load header", zap.Uint64("number", number), zap.Error(err))
		return time.Time{}, fmt.Errorf("%w: header %d: %v", types.ErrUnavailable, number, err)
	}
	return time.Unix(int64(header.Time), 0), nil
}
