package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/colorfulnotion/dappstaking/chainext"
	"github.com/colorfulnotion/dappstaking/common"
	"github.com/colorfulnotion/dappstaking/contract"
	"github.com/colorfulnotion/dappstaking/contracts/extension"
	"github.com/colorfulnotion/dappstaking/contracts/staking"
	"github.com/colorfulnotion/dappstaking/dappsstaking"
	"github.com/colorfulnotion/dappstaking/types"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/spf13/cobra"
)

// encodeInput builds the SCALE input of a call from command line arguments.
func encodeInput(id chainext.FuncID, args []string) ([]byte, error) {
	m := chainext.NewMethod(id)
	switch id {
	case chainext.ReadCurrentEra:
		if len(args) != 0 {
			return nil, fmt.Errorf("%s takes no arguments", id)
		}
		return m.EncodeInput(nil), nil
	case chainext.ReadEraInfo:
		if len(args) != 1 {
			return nil, fmt.Errorf("%s takes <era>", id)
		}
		era, err := parseEra(args[0])
		if err != nil {
			return nil, err
		}
		return m.EncodeInput(era), nil
	case chainext.BondAndStake:
		if len(args) != 2 {
			return nil, fmt.Errorf("%s takes <account> <value>", id)
		}
		account, err := common.ParseAccountId(args[0])
		if err != nil {
			return nil, err
		}
		value, err := types.BalanceFromDecimal(args[1])
		if err != nil {
			return nil, err
		}
		return m.EncodeInput(types.BondStakeInput{AccountId: account, Value: value}), nil
	}
	return nil, fmt.Errorf("unsupported function %s", id)
}

// describeOutput replays a raw host reply through the typed call layer.
// Protocol violations come back as errors.
func describeOutput(id chainext.FuncID, status uint32, output []byte) (desc string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			pv, ok := chainext.IsProtocolViolation(rec)
			if !ok {
				panic(rec)
			}
			err = pv
		}
	}()
	h := chainext.HostFunc(func(chainext.FuncID, []byte) (uint32, []byte) {
		return status, output
	})
	switch id {
	case chainext.ReadCurrentEra:
		return fmt.Sprintf("%d", dappsstaking.ReadCurrentEra(h)), nil
	case chainext.ReadEraInfo:
		info, err := dappsstaking.ReadEraInfo(h, 0)
		if err != nil {
			return fmt.Sprintf("Err(%v)", err), nil
		}
		b, err := json.MarshalIndent(info, "", "  ")
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Ok(%s)", b), nil
	case chainext.BondAndStake:
		if err := dappsstaking.BondAndStake(h, common.AccountId{}, types.Balance{}); err != nil {
			return fmt.Sprintf("Err(%v)", err), nil
		}
		return "Ok(())", nil
	}
	return "", fmt.Errorf("unsupported function %s", id)
}

func decodeHex(s string) ([]byte, error) {
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		s = "0x" + s
	}
	if s == "0x" {
		return []byte{}, nil
	}
	return hexutil.Decode(s)
}

func encodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "encode <func> [args...]",
		Short: "Print the SCALE input of a chain extension call",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := chainext.ParseFuncID(args[0])
			if err != nil {
				return err
			}
			input, err := encodeInput(id, args[1:])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%d): %s\n", id, uint32(id), hexutil.Encode(input))
			return nil
		},
	}
}

func decodeCmd() *cobra.Command {
	var status uint32
	cmd := &cobra.Command{
		Use:   "decode <func> <hex>",
		Short: "Decode a raw host reply to a chain extension call",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := chainext.ParseFuncID(args[0])
			if err != nil {
				return err
			}
			output, err := decodeHex(args[1])
			if err != nil {
				return err
			}
			desc, err := describeOutput(id, status, output)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), desc)
			return nil
		},
	}
	cmd.Flags().Uint32Var(&status, "status", 0, "status code returned with the output")
	return cmd
}

func selectorsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "selectors",
		Short: "List chain extension ids and contract message selectors",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, id := range chainext.FuncIDs() {
				fmt.Fprintf(out, "%-18s %d\n", id, uint32(id))
			}
			listings := []struct {
				name     string
				messages []contract.Message
			}{
				{extension.ContractName, extension.New(nil, nil).Messages()},
				{staking.ContractName, staking.New(nil, nil).Messages()},
			}
			for _, l := range listings {
				for _, m := range l.messages {
					fmt.Fprintf(out, "%s::%-18s %s\n", l.name, m.Name, hexutil.Encode(m.Selector[:]))
				}
			}
			return nil
		},
	}
}
