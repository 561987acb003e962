package main

import (
	"fmt"
	"strconv"

	"github.com/colorfulnotion/dappstaking/common"
	"github.com/colorfulnotion/dappstaking/hostsim"
	"github.com/colorfulnotion/dappstaking/types"
	"github.com/spf13/cobra"
)

func parseEra(s string) (uint32, error) {
	era, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("era %q: %w", s, err)
	}
	return uint32(era), nil
}

func (a *app) eraCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "era",
		Short: "Read the current era through the extension contract",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := a.open()
			if err != nil {
				return err
			}
			defer rt.Close()

			var era uint32
			err = rt.Transact(a.caller, func(tx *hostsim.Tx) (err error) {
				era, err = newSession(tx).ext.ReadCurrentEra()
				return err
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "current era: %d\n", era)

			events, err := rt.Events()
			if err != nil {
				return err
			}
			if len(events) > 0 {
				ev := events[len(events)-1]
				fmt.Fprintf(cmd.OutOrStdout(), "event %s (#%d)\n", ev.Name, len(events))
				for i, topic := range ev.Topics {
					fmt.Fprintf(cmd.OutOrStdout(), "  topic[%d]: %s\n", i, topic.Hex())
				}
			}
			return nil
		},
	}
}

func (a *app) eraInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "era-info <era>",
		Short: "Read the staking record of an era through the staking contract",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			era, err := parseEra(args[0])
			if err != nil {
				return err
			}
			return a.withSession(func(s *session) error {
				info, err := s.stk.ReadEraInfo(era)
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), info.ToTree(era).String())
				return nil
			})
		},
	}
}

func (a *app) bondCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "bond <value>",
		Short: "Bond and stake from the staking contract's own account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := types.BalanceFromDecimal(args[0])
			if err != nil {
				return err
			}
			err = a.withSession(func(s *session) error {
				return s.stk.BondAndStake(value)
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "bonded %s from %s\n", value, a.contract)
			return a.printBalances(cmd, a.contract)
		},
	}
}

func (a *app) fundCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fund <account> <value>",
		Short: "Credit free balance to an account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			account, err := common.ParseAccountId(args[0])
			if err != nil {
				return err
			}
			value, err := types.BalanceFromDecimal(args[1])
			if err != nil {
				return err
			}
			rt, err := a.open()
			if err != nil {
				return err
			}
			defer rt.Close()
			if err := rt.Fund(account, value); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "funded %s with %s\n", account, value)
			return nil
		},
	}
}

func (a *app) balanceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "balance [account]",
		Short: "Show free and bonded balance (default: the contract)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			account := a.contract
			if len(args) == 1 {
				var err error
				if account, err = common.ParseAccountId(args[0]); err != nil {
					return err
				}
			}
			return a.printBalances(cmd, account)
		},
	}
}

func (a *app) printBalances(cmd *cobra.Command, account common.AccountId) error {
	rt, err := a.open()
	if err != nil {
		return err
	}
	defer rt.Close()
	free, bonded, err := rt.Balances(account)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s free=%s bonded=%s\n", account, free, bonded)
	return nil
}

func (a *app) advanceEraCmd() *cobra.Command {
	var stakers, dapps string
	cmd := &cobra.Command{
		Use:   "advance-era",
		Short: "Book rewards on the current era and open the next",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var rewards types.RewardInfo
			var err error
			if rewards.Stakers, err = types.BalanceFromDecimal(stakers); err != nil {
				return err
			}
			if rewards.Dapps, err = types.BalanceFromDecimal(dapps); err != nil {
				return err
			}
			rt, err := a.open()
			if err != nil {
				return err
			}
			defer rt.Close()
			era, err := rt.AdvanceEra(rewards)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "current era: %d\n", era)
			return nil
		},
	}
	cmd.Flags().StringVar(&stakers, "stakers", "0", "staker rewards of the closing era")
	cmd.Flags().StringVar(&dapps, "dapps", "0", "dapp rewards of the closing era")
	return cmd
}
