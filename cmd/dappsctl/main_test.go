package main

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/colorfulnotion/dappstaking/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runWithStderr keeps every test off the real default ledger directory.
func runWithStderr(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	if os.Getenv(types.EnvDataDir) == "" {
		t.Setenv(types.EnvDataDir, t.TempDir())
	}
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out, _, err := runWithStderr(t, args...)
	return out, err
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := run(t, args...)
	require.NoError(t, err, "dappsctl %v", args)
	return out
}

func TestStakingLifecycle(t *testing.T) {
	dir := t.TempDir()
	ledger := func(args ...string) []string { return append([]string{"--datadir", dir}, args...) }

	out := mustRun(t, ledger("fund", "charlie", "1000")...)
	assert.Contains(t, out, "funded")

	out = mustRun(t, ledger("bond", "400")...)
	assert.Contains(t, out, "bonded 400 from")
	assert.Contains(t, out, "free=600 bonded=400")

	out = mustRun(t, ledger("era")...)
	assert.Contains(t, out, "current era: 1")
	assert.Contains(t, out, "::CurrentEraUpdated (#1)")
	assert.Contains(t, out, "topic[1]:")

	out = mustRun(t, ledger("era-info", "1")...)
	assert.Contains(t, out, "era 1")
	assert.Contains(t, out, "staked: 400")

	out = mustRun(t, ledger("advance-era", "--stakers", "10", "--dapps", "5")...)
	assert.Contains(t, out, "current era: 2")

	out = mustRun(t, ledger("era-info", "1")...)
	assert.Contains(t, out, "stakers: 10")
	assert.Contains(t, out, "dapps: 5")

	out = mustRun(t, ledger("era-info", "2")...)
	assert.Contains(t, out, "locked: 400")

	out = mustRun(t, ledger("balance", "charlie")...)
	assert.Contains(t, out, "free=600 bonded=400")
}

func TestStakingFailuresKeepProvenance(t *testing.T) {
	dir := t.TempDir()

	_, err := run(t, "--datadir", dir, "era-info", "9")
	require.Error(t, err)
	assert.Equal(t, "StakingError::DsError(ExtensionError::ErrorCode(Failed))", err.Error())

	_, err = run(t, "--datadir", dir, "bond", "1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ErrorCode(Failed)")

	out := mustRun(t, "--datadir", dir, "balance")
	assert.Contains(t, out, "free=0 bonded=0")
}

func TestBadArguments(t *testing.T) {
	_, err := run(t, "era-info", "not-an-era")
	assert.Error(t, err)

	_, err = run(t, "fund", "nobody", "1")
	assert.Error(t, err)

	_, err = run(t, "--log-level", "loud", "era")
	assert.Error(t, err)

	_, err = run(t, "--log-format", "xml", "era")
	assert.Error(t, err)
}

func TestLedgerPersistsAcrossCommands(t *testing.T) {
	t.Setenv(types.EnvDataDir, t.TempDir())

	mustRun(t, "fund", "charlie", "50")
	out := mustRun(t, "bond", "20")
	assert.Contains(t, out, "free=30 bonded=20")

	// A throwaway ledger starts empty every time.
	mustRun(t, "--datadir", types.MemoryDataDir, "fund", "charlie", "50")
	out = mustRun(t, "--datadir", types.MemoryDataDir, "balance")
	assert.Contains(t, out, "free=0 bonded=0")
}

func TestJSONLogs(t *testing.T) {
	_, stderr, err := runWithStderr(t, "--log-format", "json", "advance-era")
	require.NoError(t, err)
	line := strings.TrimSpace(stderr)
	require.NotEmpty(t, line)
	assert.True(t, strings.HasPrefix(line, "{"), line)
	assert.Contains(t, line, `"msg":"era advanced"`)
}

func TestVersionCarriesCommit(t *testing.T) {
	prev := Commit
	t.Cleanup(func() { Commit = prev })

	Commit = "abc12345"
	out := mustRun(t, "--version")
	assert.Contains(t, out, "(abc12345)")

	Commit = ""
	assert.NotEmpty(t, commit())
}

func TestEncode(t *testing.T) {
	assert.Equal(t, "READ_CURRENT_ERA (3401): 0x\n", mustRun(t, "encode", "READ_CURRENT_ERA"))
	assert.Equal(t, "READ_ERA_INFO (3402): 0x05000000\n", mustRun(t, "encode", "3402", "5"))

	out := mustRun(t, "encode", "BOND_AND_STAKE", "alice", "1")
	// 32 byte account followed by a fixed u128.
	assert.Len(t, out, len("BOND_AND_STAKE (3403): 0x")+2*48+1)
	assert.Contains(t, out, "01000000000000000000000000000000\n")

	_, err := run(t, "encode", "READ_ERA_INFO")
	assert.Error(t, err)
	_, err = run(t, "encode", "9999")
	assert.Error(t, err)
}

func TestDecode(t *testing.T) {
	assert.Equal(t, "5\n", mustRun(t, "decode", "READ_CURRENT_ERA", "0x05000000"))
	// read_current_era does not look at the status.
	assert.Equal(t, "5\n", mustRun(t, "decode", "--status", "7", "READ_CURRENT_ERA", "05000000"))

	out := mustRun(t, "decode", "READ_ERA_INFO", "0x009101c8a10f2103")
	assert.Contains(t, out, `"stakers": "100"`)
	assert.Contains(t, out, `"locked": "200"`)

	assert.Equal(t, "Ok(())\n", mustRun(t, "decode", "BOND_AND_STAKE", "0x00"))
	assert.Equal(t, "Err(ErrorCode(Failed))\n", mustRun(t, "decode", "BOND_AND_STAKE", "0x0100"))
	assert.Equal(t, "Err(ErrorCode(Failed))\n", mustRun(t, "decode", "--status", "1", "READ_ERA_INFO", "0x"))

	_, err := run(t, "decode", "--status", "42", "BOND_AND_STAKE", "0x00")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown status code 42")

	_, err = run(t, "decode", "READ_CURRENT_ERA", "0x0500")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "protocol violation in READ_CURRENT_ERA")

	_, err = run(t, "decode", "READ_CURRENT_ERA", "0xzz")
	assert.Error(t, err)
}

func TestSelectors(t *testing.T) {
	out := mustRun(t, "selectors")
	assert.Contains(t, out, "READ_CURRENT_ERA")
	assert.Contains(t, out, "3403")
	assert.Contains(t, out, "DappsStakingExtension::read_current_era")
	assert.Contains(t, out, "Staking::get_current_era")
	assert.Contains(t, out, "Staking::bond_and_stake")
}
