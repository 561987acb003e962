package types

import (
	"bytes"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/colorfulnotion/dappstaking/codec"
	"github.com/colorfulnotion/dappstaking/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func eraInfo(stakers, dapps, staked, locked uint64) EraInfo {
	return EraInfo{
		Rewards: RewardInfo{Stakers: NewBalance(stakers), Dapps: NewBalance(dapps)},
		Staked:  NewBalance(staked),
		Locked:  NewBalance(locked),
	}
}

func TestEraInfoEncoding(t *testing.T) {
	b, err := codec.Marshal(eraInfo(100, 50, 1000, 200))
	require.NoError(t, err)
	assert.Equal(t, "9101c8a10f2103", hex.EncodeToString(b))

	var out EraInfo
	require.NoError(t, codec.UnmarshalExact(b, &out))
	assert.Equal(t, eraInfo(100, 50, 1000, 200), out)
}

func TestEraInfoRoundTripBounds(t *testing.T) {
	maxInfo := EraInfo{
		Rewards: RewardInfo{Stakers: MaxBalance, Dapps: MaxBalance},
		Staked:  MaxBalance,
		Locked:  MaxBalance,
	}
	for name, in := range map[string]EraInfo{"zero": {}, "max": maxInfo} {
		t.Run(name, func(t *testing.T) {
			b, err := codec.Marshal(in)
			require.NoError(t, err)
			var out EraInfo
			require.NoError(t, codec.UnmarshalExact(b, &out))
			assert.Equal(t, in, out)
		})
	}

	zero, err := codec.Marshal(EraInfo{})
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 0, 0, 0}, zero)

	encoded, err := codec.Marshal(maxInfo)
	require.NoError(t, err)
	field := "33" + strings.Repeat("ff", 16)
	assert.Equal(t, strings.Repeat(field, 4), hex.EncodeToString(encoded))
}

func TestBalanceRejectsAboveU128(t *testing.T) {
	// 2^128 in compact big-integer mode: 17 bytes.
	in := append([]byte{(17-4)<<2 | 0b11}, make([]byte, 16)...)
	in = append(in, 1)
	var b Balance
	err := codec.UnmarshalExact(in, &b)
	assert.ErrorIs(t, err, ErrBalanceOverflow)

	_, err = BalanceFromDecimal("340282366920938463463374607431768211456")
	assert.ErrorIs(t, err, ErrBalanceOverflow)

	parsed, err := BalanceFromDecimal("340282366920938463463374607431768211455")
	require.NoError(t, err)
	assert.Equal(t, MaxBalance, parsed)
}

func TestBalanceArithmetic(t *testing.T) {
	sum, err := NewBalance(7).Add(NewBalance(5))
	require.NoError(t, err)
	assert.Equal(t, "12", sum.String())

	_, err = MaxBalance.Add(NewBalance(1))
	assert.ErrorIs(t, err, ErrBalanceOverflow)

	diff, err := sum.Sub(NewBalance(12))
	require.NoError(t, err)
	assert.True(t, diff.IsZero())

	_, err = NewBalance(1).Sub(NewBalance(2))
	assert.ErrorIs(t, err, ErrBalanceUnderflow)

	assert.Equal(t, -1, NewBalance(1).Cmp(NewBalance(2)))
	assert.Equal(t, 0, MaxBalance.Cmp(MaxBalance))

	_, err = BalanceFromDecimal("12a")
	assert.Error(t, err)
}

func TestBalanceFixed(t *testing.T) {
	fixed := NewBalance(1000).Fixed()
	assert.Equal(t, "e8030000000000000000000000000000", hex.EncodeToString(fixed[:]))
	assert.Equal(t, MaxBalance, BalanceFromFixed(MaxBalance.Fixed()))

	b, err := codec.Marshal(FixedBalance{NewBalance(1)})
	require.NoError(t, err)
	assert.Len(t, b, 16)
	var out FixedBalance
	require.NoError(t, codec.UnmarshalExact(b, &out))
	assert.Equal(t, NewBalance(1), out.Balance)
}

func TestBondStakeInputEncoding(t *testing.T) {
	alice := common.MustDevAccount("alice")
	in := BondStakeInput{AccountId: alice, Value: NewBalance(1000)}
	b, err := codec.Marshal(in)
	require.NoError(t, err)
	require.Len(t, b, 48)
	assert.Equal(t, alice.Bytes(), b[:32])
	assert.Equal(t, "e8030000000000000000000000000000", hex.EncodeToString(b[32:]))

	var out BondStakeInput
	require.NoError(t, codec.UnmarshalExact(b, &out))
	assert.Equal(t, in, out)

	assert.Error(t, out.UnmarshalSCALE(bytes.NewReader(b[:40])))
}

func TestLoadCommandConfig(t *testing.T) {
	t.Setenv(EnvDataDir, "")
	t.Setenv(EnvLogLevel, "")

	cfg, err := LoadCommandConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultCommandConfig(), cfg)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("datadir: /tmp/ledger\ncontract: dave\ndebugmodules: hostsim,contract\n"), 0o600))
	cfg, err = LoadCommandConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/ledger", cfg.DataDir)
	assert.Equal(t, "dave", cfg.Contract)
	assert.Equal(t, "alice", cfg.Caller)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Contains(t, cfg.String(), `"contract": "dave"`)

	t.Setenv(EnvLogLevel, "debug")
	t.Setenv(EnvDataDir, "/var/ledger")
	cfg, err = LoadCommandConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "/var/ledger", cfg.DataDir)

	_, err = LoadCommandConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(path, []byte("contract: [\n"), 0o600))
	_, err = LoadCommandConfig(path)
	assert.Error(t, err)
}

func TestCommandConfigLedgerAndLogFormat(t *testing.T) {
	t.Setenv(EnvDataDir, "")
	t.Setenv(EnvLogLevel, "")

	def := DefaultCommandConfig()
	assert.NotEmpty(t, def.DataDir)
	assert.Equal(t, def.DataDir, def.LedgerDir())
	assert.Equal(t, "terminal", def.LogFormat)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("datadir: \":memory:\"\nlogformat: json\n"), 0o600))
	cfg, err := LoadCommandConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "", cfg.LedgerDir())

	require.NoError(t, os.WriteFile(path, []byte("logformat: xml\n"), 0o600))
	_, err = LoadCommandConfig(path)
	assert.ErrorContains(t, err, "logformat")
}

func TestEraInfoToTree(t *testing.T) {
	out := eraInfo(100, 50, 1000, 200).ToTree(5).String()
	for _, want := range []string{"era 5", "rewards", "stakers: 100", "dapps: 50", "staked: 1000", "locked: 200"} {
		assert.Contains(t, out, want)
	}
}
