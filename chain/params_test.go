// Copyright (C) 2025 Creditor Corp. Group.
// See LICENSE for copying information.

package chain_test

import (
	"math/big"
	"testing"

	"github.com/btcsuite/btcd/blockchain"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/stretchr/testify/require"

	"github.com/BoostyLabs/walletcore/chain"
)

func TestParams(t *testing.T) {
	t.Run("checkpoints are ordered at transition boundaries", func(t *testing.T) {
		for _, params := range []chain.Params{chain.MainNetParams, chain.TestNetParams} {
			require.NotEmpty(t, params.Checkpoints)

			prev := params.Checkpoints[0]
			require.EqualValues(t, 0, prev.Height, "first checkpoint must be genesis")

			for _, checkpoint := range params.Checkpoints[1:] {
				require.Greater(t, checkpoint.Height, prev.Height)
				require.Greater(t, checkpoint.Timestamp, prev.Timestamp)
				require.Zero(t, checkpoint.Height%chain.BlockDifficultyInterval)
				prev = checkpoint
			}
		}
	})

	t.Run("last checkpoint", func(t *testing.T) {
		last := chain.MainNetParams.LastCheckpoint()
		require.NotNil(t, last)
		require.EqualValues(t, 1260000, last.Height)

		empty := chain.Params{}
		require.Nil(t, empty.LastCheckpoint())
	})

	t.Run("checkpoint before height", func(t *testing.T) {
		tests := []struct {
			height   uint32
			expected uint32
		}{
			{0, 0},
			{20159, 0},
			{20160, 20160},
			{1000000, 993888},
			{5000000, 1260000},
		}

		for _, test := range tests {
			checkpoint := chain.MainNetParams.CheckpointBefore(test.height)
			require.NotNil(t, checkpoint)
			require.Equal(t, test.expected, checkpoint.Height, "height %d", test.height)
		}
	})

	t.Run("verify difficulty continuity", func(t *testing.T) {
		genesis := chain.TestNetParams.Checkpoints[0]
		previous := &chain.Header{
			Hash:      genesis.Hash,
			Height:    genesis.Height,
			Timestamp: genesis.Timestamp,
			Target:    genesis.Target,
		}
		block := &chain.Header{
			PrevBlock: genesis.Hash,
			Height:    1,
			Timestamp: genesis.Timestamp + 150,
			Target:    genesis.Target,
		}

		require.True(t, chain.TestNetParams.VerifyDifficulty(block, previous, 0))
		require.False(t, chain.TestNetParams.VerifyDifficulty(block, nil, 0), "missing previous block")
		require.False(t, chain.TestNetParams.VerifyDifficulty(nil, previous, 0), "missing block")

		orphan := *block
		orphan.PrevBlock = chainhash.Hash{0x01}
		require.False(t, chain.TestNetParams.VerifyDifficulty(&orphan, previous, 0), "broken prev hash linkage")

		skipped := *block
		skipped.Height = 2
		require.False(t, chain.TestNetParams.VerifyDifficulty(&skipped, previous, 0), "height gap")
	})

	t.Run("verify difficulty transition", func(t *testing.T) {
		var transitionTime uint32 = 1317972665
		previous := &chain.Header{
			Hash:      chainhash.Hash{0x02},
			Height:    chain.BlockDifficultyInterval - 1,
			Timestamp: transitionTime + 302400,
			Target:    0x1d00ffff,
		}
		block := &chain.Header{
			PrevBlock: previous.Hash,
			Height:    chain.BlockDifficultyInterval,
			Timestamp: previous.Timestamp + 150,
			Target:    previous.Target,
		}

		require.True(t, chain.MainNetParams.VerifyDifficulty(block, previous, transitionTime),
			"actual timespan equal to target timespan keeps the target")
		require.False(t, chain.MainNetParams.VerifyDifficulty(block, previous, 0),
			"transition boundary without transition time")

		// blocks came in four times too fast, difficulty quadruples.
		fast := *previous
		fast.Timestamp = transitionTime + 302400/4
		quarter := blockchain.CompactToBig(previous.Target)
		quarter.Div(quarter, big.NewInt(4))

		adjusted := *block
		adjusted.Target = blockchain.BigToCompact(quarter)
		require.True(t, chain.MainNetParams.VerifyDifficulty(&adjusted, &fast, transitionTime))
		require.False(t, chain.MainNetParams.VerifyDifficulty(block, &fast, transitionTime),
			"stale target after a transition")

		// timespan is clamped to a fourfold slowdown even when blocks
		// stalled for far longer.
		slow := *previous
		slow.Timestamp = transitionTime + 302400*100
		relaxed := blockchain.CompactToBig(previous.Target)
		relaxed.Mul(relaxed, big.NewInt(4))

		eased := *block
		eased.Target = blockchain.BigToCompact(relaxed)
		require.True(t, chain.MainNetParams.VerifyDifficulty(&eased, &slow, transitionTime))

		// the adjusted target never exceeds the proof of work limit.
		easiest := *previous
		easiest.Timestamp = transitionTime + 302400*4
		easiest.Target = chain.MainNetParams.PowLimitBits
		capped := *block
		capped.PrevBlock = easiest.Hash
		capped.Target = chain.MainNetParams.PowLimitBits
		require.True(t, chain.MainNetParams.VerifyDifficulty(&capped, &easiest, transitionTime))
	})

	t.Run("verify difficulty between transitions", func(t *testing.T) {
		previous := &chain.Header{
			Hash:      chainhash.Hash{0x03},
			Height:    chain.BlockDifficultyInterval,
			Timestamp: 1319798300,
			Target:    0x1d055262,
		}
		block := &chain.Header{
			PrevBlock: previous.Hash,
			Height:    previous.Height + 1,
			Timestamp: previous.Timestamp + 150,
			Target:    previous.Target,
		}

		require.True(t, chain.MainNetParams.VerifyDifficulty(block, previous, 0))

		retargeted := *block
		retargeted.Target = 0x1d055263
		require.False(t, chain.MainNetParams.VerifyDifficulty(&retargeted, previous, 0),
			"target must not change between transitions")
	})
}
