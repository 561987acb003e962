package dappsstaking

import (
	"github.com/colorfulnotion/dappstaking/chainext"
	"github.com/colorfulnotion/dappstaking/common"
	"github.com/colorfulnotion/dappstaking/log"
	"github.com/colorfulnotion/dappstaking/types"
)

// Capabilities is the set of staking operations a contract can reach. The
// host-backed Extension implements it; tests substitute doubles.
type Capabilities interface {
	ReadCurrentEra() uint32
	ReadEraInfo(era uint32) (types.EraInfo, error)
	BondAndStake(account common.AccountId, value types.Balance) error
}

var _ Capabilities = (*Extension)(nil)

// Extension routes Capabilities through a chain extension host.
type Extension struct {
	host chainext.Host
}

func NewExtension(h chainext.Host) *Extension {
	return &Extension{host: h}
}

func (e *Extension) ReadCurrentEra() uint32 {
	era := ReadCurrentEra(e.host)
	log.Debug(log.DappsStaking, "ReadCurrentEra", "era", era)
	return era
}

func (e *Extension) ReadEraInfo(era uint32) (types.EraInfo, error) {
	info, err := ReadEraInfo(e.host, era)
	if err != nil {
		log.Debug(log.DappsStaking, "ReadEraInfo failed", "era", era, "err", err)
		return info, err
	}
	log.Debug(log.DappsStaking, "ReadEraInfo", "era", era, "staked", info.Staked, "locked", info.Locked)
	return info, nil
}

func (e *Extension) BondAndStake(account common.AccountId, value types.Balance) error {
	err := BondAndStake(e.host, account, value)
	log.Debug(log.DappsStaking, "BondAndStake", "account", account, "value", value, "err", err)
	return err
}
