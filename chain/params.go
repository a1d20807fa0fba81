// Copyright (C) 2025 Creditor Corp. Group.
// See LICENSE for copying information.

package chain

import (
	"math/big"

	"github.com/btcsuite/btcd/blockchain"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
)

const (
	// BlockDifficultyInterval defines the number of blocks between
	// difficulty transitions.
	BlockDifficultyInterval = 2016
	// targetTimespan defines the expected duration of one difficulty
	// window in seconds, 3.5 days.
	targetTimespan = 302400
)

// Checkpoint marks a block at a difficulty transition boundary. Checkpoints
// double as starting points for partial chain downloads, so they must sit
// exactly at transition boundaries for the immediately following transition
// to be verifiable.
type Checkpoint struct {
	Height    uint32
	Hash      chainhash.Hash
	Timestamp uint32
	Target    uint32
}

// Header carries the block header fields consumed by continuity checks.
type Header struct {
	Hash      chainhash.Hash
	PrevBlock chainhash.Hash
	Height    uint32
	Timestamp uint32
	Target    uint32
}

// VerifyDifficultyFunc reports whether a block correctly extends its
// previous block, transitionTime is the timestamp of the last transition
// boundary block (zero when unknown).
type VerifyDifficultyFunc func(block, previous *Header, transitionTime uint32) bool

// Params defines network-level chain constants.
type Params struct {
	Name             string
	DNSSeeds         []string
	StandardPort     uint16
	Magic            wire.BitcoinNet
	Services         wire.ServiceFlag
	PowLimitBits     uint32
	VerifyDifficulty VerifyDifficultyFunc
	Checkpoints      []Checkpoint
}

// LastCheckpoint returns the most recent checkpoint or nil if none exist.
func (p *Params) LastCheckpoint() *Checkpoint {
	if len(p.Checkpoints) == 0 {
		return nil
	}

	return &p.Checkpoints[len(p.Checkpoints)-1]
}

// CheckpointBefore returns the latest checkpoint at or below the given
// height, or nil when the height precedes all checkpoints.
func (p *Params) CheckpointBefore(height uint32) *Checkpoint {
	for i := len(p.Checkpoints) - 1; i >= 0; i-- {
		if p.Checkpoints[i].Height <= height {
			return &p.Checkpoints[i]
		}
	}

	return nil
}

// verifyHeaderContinuity checks prev-hash linkage, height continuity and
// that a transition boundary block comes with a known transition time.
func verifyHeaderContinuity(block, previous *Header, transitionTime uint32) bool {
	if block == nil || previous == nil {
		return false
	}
	if block.PrevBlock != previous.Hash || block.Height != previous.Height+1 {
		return false
	}
	if block.Height%BlockDifficultyInterval == 0 && transitionTime == 0 {
		return false
	}

	return true
}

// verifyDifficultyMainNet additionally validates the retarget math at
// transition boundaries, adjustment is limited to -75% or +400%.
func verifyDifficultyMainNet(block, previous *Header, transitionTime uint32) bool {
	if !verifyHeaderContinuity(block, previous, transitionTime) {
		return false
	}

	if block.Height%BlockDifficultyInterval != 0 {
		return block.Target == previous.Target
	}

	timespan := int64(previous.Timestamp) - int64(transitionTime)
	if timespan < targetTimespan/4 {
		timespan = targetTimespan / 4
	}
	if timespan > targetTimespan*4 {
		timespan = targetTimespan * 4
	}

	target := blockchain.CompactToBig(previous.Target)
	target.Mul(target, big.NewInt(timespan))
	target.Div(target, big.NewInt(targetTimespan))

	powLimit := blockchain.CompactToBig(MainNetParams.PowLimitBits)
	if target.Cmp(powLimit) > 0 {
		target = powLimit
	}

	return block.Target == blockchain.BigToCompact(target)
}

// verifyDifficultyTestNet skips retarget math, testnet permits
// minimum-difficulty blocks when block production stalls.
func verifyDifficultyTestNet(block, previous *Header, transitionTime uint32) bool {
	return verifyHeaderContinuity(block, previous, transitionTime)
}

// MainNetParams defines the network parameters for the main network.
var MainNetParams = Params{
	Name: "mainnet",
	DNSSeeds: []string{
		"dnsseed.litecointools.com.", "dnsseed.litecoinpool.org.", "seed-a.litecoin.loshan.co.uk.",
		"dnsseed.thrasher.io.", "dnsseed.koin-project.com.",
	},
	StandardPort:     9333,
	Magic:            0xdbb6c0fb,
	Services:         0,
	PowLimitBits:     0x1e0fffff,
	VerifyDifficulty: verifyDifficultyMainNet,

	// Checkpoints ordered from oldest to newest, each at a difficulty
	// transition boundary.
	Checkpoints: []Checkpoint{
		{0, newHashFromStr("12a765e31ffd4059bada1e25190f6e98c99d9714d334efa41a195a7e7e04bfe2"), 1317972665, 0x1e0ffff0},
		{20160, newHashFromStr("633036c8df655531c2449b2d09b264cc0b49d945a89be23fd3c1a97361ca198c"), 1319798300, 0x1d055262},
		{40320, newHashFromStr("d148cdd2cf44069cef4b63f0feaf30a8d291ca9ea9ba7e83f226b9738c1d5e9c"), 1322522019, 0x1d018053},
		{60480, newHashFromStr("3250f0a560d55f039c34bfaee1b71297aa5104ac6641778f9a87d73232d12c6c"), 1325540574, 0x1d00e848},
		{80640, newHashFromStr("bedc0a090b740b1902d870aeb6caa89040a24e7d670d46f8ef035fd9d2e9ce80"), 1328779944, 0x1d00ab92},
		{100800, newHashFromStr("7b0b620d15f781faaaa73b43607a49d5becb2b803ef19b4010014646cc177a61"), 1331873688, 0x1d00ae9f},
		{120960, newHashFromStr("dbd6249f30e5690890bc03dabcc0a526c46adcde572be06af4075b6ea28aa251"), 1334881566, 0x1d009e48},
		{161280, newHashFromStr("f595c754d0abcfe3616573bfabee01b230ec0ea6b2f2894c40214ea23d772b6c"), 1340918301, 0x1d008881},
		{201600, newHashFromStr("d481df8e8ce144fca9ae6b3157cc706e903c6ea161a13d2c421270354a02d6d0"), 1346567025, 0x1c1c89e8},
		{221760, newHashFromStr("88cf3446129161a633050244f112e3041a2d53152ee9293984b20f468fbadb8a"), 1349481542, 0x1c135d42},
		{262080, newHashFromStr("13a5d47f01fe3ab17ebf2b15b605efa41efe06b02bb685bc2ad4cec22af0b478"), 1355560195, 0x1c0a01e5},
		{302400, newHashFromStr("e798d897a837bf4989d329266128754ec1cbeff1eb0c0afd67f71d2b7c44bdaa"), 1361913149, 0x1c102ea7},
		{342720, newHashFromStr("33f62e026a202be550e8a9df37d638d38991553544e279cb264123378bf46042"), 1367113967, 0x1c0095a5},
		{383040, newHashFromStr("5c0a443361c1356796a7db472c69433b6ce6108d61e4403fd9a9d91e01009ce3"), 1372971948, 0x1b481262},
		{403200, newHashFromStr("ef78aa1925cc51ff8dc3a1e59f389c89845fb8b9e566348222e663e963e67640"), 1376014028, 0x1b4b858d},
		{443520, newHashFromStr("37d668803ed1efc24ffab4a2a90da9ac92679acf68370d7570f042c2bd6d651b"), 1382034998, 0x1b3f864f},
		{483840, newHashFromStr("759de6c4e6161fc8c996cf0d5e012ee0afc52a037e657dd54e85da9a9f803633"), 1387792541, 0x1b167254},
		{504000, newHashFromStr("97db0624d3d5137bc085f0d731607314972bb4124b85b73420ef9aa5fc10d640"), 1390892377, 0x1b1aa868},
		{544320, newHashFromStr("95ae252971d1ec9deeed1ed19fe9537e04348a82839a9e2bf8856faaa03e324e"), 1396719779, 0x1b0a9622},
		{564480, newHashFromStr("c876276bf12754c2b265787d9e7ab83d429e59761dc63057f728529018db7834"), 1399724592, 0x1b099dce},
		{584640, newHashFromStr("df5454af79491c392fe740b5efd47afbe1cb53cd8d86be3ab9c97fdd2786d237"), 1402630524, 0x1b065b94},
		{604800, newHashFromStr("43c1a80b8abaf57817e5daea9cfdde99ea5f324705779045792ccad52d54f3d4"), 1405459509, 0x1b033d34},
		{645120, newHashFromStr("9b7ddc3753c5138fc471accd15f9730020e828bc69058f2e382549c7c0ffba0f"), 1411376787, 0x1b020a10},
		{685440, newHashFromStr("29d2328990dda4c4870846d4e3d573785452bed68e6013930a83fc8d5fe89b09"), 1417289378, 0x1b01473b},
		{705600, newHashFromStr("e350118d9047c1ca5f047a1b1ee400562fb0cfb8b3c8032b56b8545b456a03ab"), 1420305710, 0x1b01399e},
		{745920, newHashFromStr("04809a35ff6e5054e21d14582072605b812b7d4ae11d3450e7c03a7237e1d35d"), 1426441593, 0x1b019b8c},
		{786240, newHashFromStr("d1b9fa6999f7a09d1dc52511750e47d263aaa7ea4a262762fff8665890d631a5"), 1432507384, 0x1b01a8ec},
		{806400, newHashFromStr("e2363e8b3e8f237b9b1bfc1c72ede80fef2c7bd1aabcd78afed82065a194b960"), 1435516150, 0x1b019268},
		{846720, newHashFromStr("6f5d94d7cfd01f1dbf4aa631b987f8e2ec9d0c57720604787b816bafe34192a8"), 1441561050, 0x1b0187a3},
		{901152, newHashFromStr("cfccdf8e3830ae4879e910051ac3dc583b4fb45b83be3a38019e5d9326dfa223"), 1449698771, 0x1b015b0e},
		{941472, newHashFromStr("4fddb941d414f071c29f100da2a160cf527397fc9a7a9c9d0a849b6f67799042"), 1455719547, 0x1b0133ec},
		{953568, newHashFromStr("e46e01cf1239cffa69408ac162d517bac5a4899972e0328fd0ba4d93e8ad3764"), 1457542869, 0x1b013c91},
		{961632, newHashFromStr("bfc01091cb21ea81dd079fcee6cf7910087281bfdbcb1ad9e5dbc226b5f45a86"), 1458730622, 0x1b012535},
		{993888, newHashFromStr("1d80e7793bd9e16e0ce84d93b105d6732ed63e1a6fe491c1b7ea310e75eb504e"), 1463613744, 0x1b014cbd},
		{1001952, newHashFromStr("eccbede26ac99ea996377972d5bd05b9306bcc6ac1f4071f1587e3094a704dff"), 1464900396, 0x1b01a29e},
		{1058400, newHashFromStr("76ce37c66d449a4ffbfc35674cf932da701066a001dc223754f9250dd2bdbc62"), 1473296285, 0x1b013ca7},
		{1260000, newHashFromStr("85a22b528d805bf7a641d1d7c6d96ef5054beda3dcab6be7b83f2e3df24b33a8"), 1502976600, 0x1a25a0d3},
	},
}

// TestNetParams defines the network parameters for the test network.
var TestNetParams = Params{
	Name: "testnet",
	DNSSeeds: []string{
		"testnet-seed.ltc.xurious.com.", "seed-b.litecoin.loshan.co.uk.", "dnsseed-testnet.thrasher.io.",
	},
	StandardPort:     19335,
	Magic:            0xf1c8d2fd,
	Services:         0,
	PowLimitBits:     0x1e0fffff,
	VerifyDifficulty: verifyDifficultyTestNet,

	Checkpoints: []Checkpoint{
		{0, newHashFromStr("4966625a4b2851d9fdee139e56211a0d88575f59ed816ff5e6a63deb4e3e29a0"), 1486949366, 0x1e0ffff0},
	},
}

// newHashFromStr converts a known-good hex string to chainhash.Hash.
func newHashFromStr(hexStr string) chainhash.Hash {
	hash, _ := chainhash.NewHashFromStr(hexStr)
	return *hash
}
