package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/shopspring/decimal"

	"github.com/Liqwid-Labs/ogmios-client-go/pkg/jsonrpc"
	"github.com/Liqwid-Labs/ogmios-client-go/pkg/log"
	"github.com/Liqwid-Labs/ogmios-client-go/pkg/ogmios"
)

// command is a one-shot query or submission issued over HTTP from the
// command line, or over the websocket from the console.
type command struct {
	name        string
	usage       string
	description string
	flags       []string
	run         func(ctx context.Context, client *ogmios.Client, out io.Writer, args []string) error
}

var commands = []command{
	{
		name:        "tip",
		usage:       "tip",
		description: "show the ledger tip",
		run:         runTipCmd,
	},
	{
		name:        "pparams",
		usage:       "pparams",
		description: "show the current protocol parameters",
		run:         runProtocolParamsCmd,
	},
	{
		name:        "utxo",
		usage:       "utxo (--address <addr>... | --ref <txid#index>...)",
		description: "list unspent outputs by address or output reference",
		flags:       []string{"--address", "--ref"},
		run:         runUtxoCmd,
	},
	{
		name:        "rewards",
		usage:       "rewards (--key <hash>... | --script <hash>...)",
		description: "summarize reward accounts",
		flags:       []string{"--key", "--script"},
		run:         runRewardsCmd,
	},
	{
		name:        "evaluate",
		usage:       "evaluate --cbor <hex>",
		description: "evaluate the scripts of a transaction",
		flags:       []string{"--cbor"},
		run:         runEvaluateCmd,
	},
	{
		name:        "submit",
		usage:       "submit --cbor <hex>",
		description: "submit a signed transaction",
		flags:       []string{"--cbor"},
		run:         runSubmitCmd,
	},
}

func findCommand(name string) (command, bool) {
	for _, cmd := range commands {
		if cmd.name == name {
			return cmd, true
		}
	}
	return command{}, false
}

// runCli runs a single command and returns once it completes.
func runCli(ctx context.Context, config *Config, name string, args []string, out io.Writer) error {
	logger := log.FromContext(ctx).WithName(name)
	ctx = log.SetContextLogger(ctx, logger)

	switch name {
	case "watch":
		return runWatchCli(ctx, config, args, out)
	case "export":
		return runExportCli(ctx, config, args, out)
	case "console":
		return runConsoleCli(ctx, config, out)
	}

	cmd, ok := findCommand(name)
	if !ok {
		return fmt.Errorf("unknown command %q", name)
	}

	client := ogmios.NewHTTPClient(jsonrpc.NewHTTPClient(config.HTTPURL, config.httpConfig()))
	ctx, cancel := context.WithTimeout(ctx, config.CallTimeout)
	defer cancel()

	return runCommand(ctx, cmd, client, out, args)
}

// runCommand runs cmd and renders an error variant answered by the node.
func runCommand(ctx context.Context, cmd command, client *ogmios.Client, out io.Writer, args []string) error {
	err := cmd.run(ctx, client, out, args)
	var variant *jsonrpc.ErrorVariant
	if errors.As(err, &variant) {
		printErrorVariant(out, variant)
	}
	return err
}

func newFlagSet(name string, out io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(out)
	return fs
}

// stringList collects the values of a repeatable flag.
type stringList []string

func (l *stringList) String() string {
	return strings.Join(*l, ",")
}

func (l *stringList) Set(v string) error {
	*l = append(*l, v)
	return nil
}

func noArgs(name string, out io.Writer, args []string) error {
	fs := newFlagSet(name, out)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}
	return nil
}

func runTipCmd(ctx context.Context, client *ogmios.Client, out io.Writer, args []string) error {
	if err := noArgs("tip", out, args); err != nil {
		return err
	}

	tip, variant, err := client.Tip(ctx)
	if err = resultErr(variant, err); err != nil {
		return err
	}

	if tip.Origin {
		fmt.Fprintln(out, "origin")
		return nil
	}
	fmt.Fprintf(out, "slot %d\nid   %s\n", tip.Slot, tip.ID)
	return nil
}

func runProtocolParamsCmd(ctx context.Context, client *ogmios.Client, out io.Writer, args []string) error {
	if err := noArgs("pparams", out, args); err != nil {
		return err
	}

	pp, variant, err := client.ProtocolParameters(ctx)
	if err = resultErr(variant, err); err != nil {
		return err
	}

	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.AppendHeader(table.Row{"Parameter", "Value"})
	t.AppendSeparator()
	t.AppendRow(table.Row{"minFeeCoefficient", pp.MinFeeCoefficient})
	t.AppendRow(table.Row{"minFeeConstant", fmtAda(pp.MinFeeConstant.Ada())})
	t.AppendRow(table.Row{"minUtxoDepositCoefficient", pp.MinUtxoDepositCoefficient})
	t.AppendRow(table.Row{"minFeeReferenceScripts", fmt.Sprintf("range=%d base=%v multiplier=%v",
		pp.MinFeeReferenceScripts.Range, pp.MinFeeReferenceScripts.Base, pp.MinFeeReferenceScripts.Multiplier)})
	t.AppendRow(table.Row{"scriptExecutionPrices", fmt.Sprintf("memory=%s cpu=%s",
		pp.ScriptExecutionPrices.Memory, pp.ScriptExecutionPrices.CPU)})
	t.AppendRow(table.Row{"collateralPercentage", pp.CollateralPercentage})
	if pp.MaxTransactionSize != nil {
		t.AppendRow(table.Row{"maxTransactionSize", pp.MaxTransactionSize.Bytes})
	}
	if pp.MaxValueSize != nil {
		t.AppendRow(table.Row{"maxValueSize", pp.MaxValueSize.Bytes})
	}
	if pp.MaxCollateralInputs != nil {
		t.AppendRow(table.Row{"maxCollateralInputs", *pp.MaxCollateralInputs})
	}
	if units := pp.MaxExecutionUnitsPerTransaction; units != nil {
		t.AppendRow(table.Row{"maxExecutionUnitsPerTransaction", fmt.Sprintf("memory=%s cpu=%s", units.Memory, units.CPU)})
	}
	if v := pp.Version; v != nil {
		t.AppendRow(table.Row{"version", fmt.Sprintf("%d.%d", v.Major, v.Minor)})
	}
	for _, lang := range []ogmios.Language{ogmios.LanguagePlutusV1, ogmios.LanguagePlutusV2, ogmios.LanguagePlutusV3} {
		if model, ok := pp.PlutusCostModels.For(lang); ok {
			t.AppendRow(table.Row{"costModel " + string(lang), fmt.Sprintf("%d parameters", len(model))})
		}
	}
	t.Render()
	return nil
}

func runUtxoCmd(ctx context.Context, client *ogmios.Client, out io.Writer, args []string) error {
	var addresses, refs stringList
	fs := newFlagSet("utxo", out)
	fs.Var(&addresses, "address", "address to list outputs of (repeatable)")
	fs.Var(&refs, "ref", "output reference as <txid>#<index> (repeatable)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	query := ogmios.UtxoByAddresses(addresses...)
	if len(refs) > 0 {
		pointers := make([]ogmios.TxOutputPointer, 0, len(refs))
		for _, ref := range refs {
			pointer, err := parseOutputReference(ref)
			if err != nil {
				return err
			}
			pointers = append(pointers, pointer)
		}
		query.OutputReferences = pointers
	}

	utxos, variant, err := client.Utxo(ctx, query)
	if err = resultErr(variant, err); err != nil {
		return err
	}

	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.AppendHeader(table.Row{"Reference", "Address", "Ada", "Assets"})
	t.AppendSeparator()
	total := uint64(0)
	for _, utxo := range utxos {
		total += utxo.Value.Lovelace
		t.AppendRow(table.Row{utxo.OutputReference().String(), utxo.Address, fmtAda(utxo.Value.Ada()), len(utxo.Value.Assets)})
	}
	t.AppendFooter(table.Row{fmt.Sprintf("%d outputs", len(utxos)), "", fmtAda(ogmios.LovelaceToAda(total)), ""})
	t.Render()
	return nil
}

// parseOutputReference parses "<txid>#<index>".
func parseOutputReference(s string) (ogmios.TxOutputPointer, error) {
	id, index, ok := strings.Cut(s, "#")
	if !ok {
		return ogmios.TxOutputPointer{}, fmt.Errorf("invalid output reference %q: expected <txid>#<index>", s)
	}
	n, err := strconv.ParseUint(index, 10, 32)
	if err != nil {
		return ogmios.TxOutputPointer{}, fmt.Errorf("invalid output reference %q: %w", s, err)
	}
	return ogmios.TxOutputPointer{
		Transaction: ogmios.TxPointer{ID: id},
		Index:       uint32(n),
	}, nil
}

func runRewardsCmd(ctx context.Context, client *ogmios.Client, out io.Writer, args []string) error {
	var keys, scripts stringList
	fs := newFlagSet("rewards", out)
	fs.Var(&keys, "key", "verification key hash or stake address (repeatable)")
	fs.Var(&scripts, "script", "script hash (repeatable)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	summaries, variant, err := client.RewardAccountSummaries(ctx, ogmios.RewardAccountSummariesParams{
		Keys:    keys,
		Scripts: scripts,
	})
	if err = resultErr(variant, err); err != nil {
		return err
	}

	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.AppendHeader(table.Row{"Credential", "Delegate", "Rewards", "Deposit"})
	t.AppendSeparator()
	for _, credential := range sortedKeys(summaries) {
		summary := summaries[credential]
		delegate := "N/A"
		if summary.Delegate != nil {
			delegate = summary.Delegate.ID
		}
		t.AppendRow(table.Row{credential, delegate, fmtAda(summary.Rewards.Ada()), fmtAda(summary.Deposit.Ada())})
	}
	t.Render()
	return nil
}

func runEvaluateCmd(ctx context.Context, client *ogmios.Client, out io.Writer, args []string) error {
	tx, err := parseTxFlags("evaluate", out, args)
	if err != nil {
		return err
	}

	evaluations, variant, err := client.Evaluate(ctx, tx)
	if err = resultErr(variant, err); err != nil {
		return err
	}

	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.AppendHeader(table.Row{"Validator", "Memory", "CPU"})
	t.AppendSeparator()
	for _, e := range evaluations {
		t.AppendRow(table.Row{e.Validator.String(), e.Budget.Memory.String(), e.Budget.CPU.String()})
	}
	total := ogmios.TotalBudget(evaluations)
	t.AppendFooter(table.Row{"total", total.Memory.String(), total.CPU.String()})
	t.Render()

	pp, variant, err := client.ProtocolParameters(ctx)
	if err = resultErr(variant, err); err != nil {
		return fmt.Errorf("failed to price execution: %w", err)
	}
	fee := pp.ExecutionFee(total)
	fmt.Fprintf(out, "execution fee: %s ada (%d lovelace)\n", fmtAda(ogmios.LovelaceToAda(fee)), fee)
	return nil
}

func runSubmitCmd(ctx context.Context, client *ogmios.Client, out io.Writer, args []string) error {
	tx, err := parseTxFlags("submit", out, args)
	if err != nil {
		return err
	}

	res, variant, err := client.Submit(ctx, tx)
	if err = resultErr(variant, err); err != nil {
		return err
	}

	log.FromContext(ctx).Info("transaction submitted", "id", res.Transaction.ID)
	fmt.Fprintln(out, res.Transaction.ID)
	return nil
}

func parseTxFlags(name string, out io.Writer, args []string) (ogmios.TxCbor, error) {
	var cbor string
	fs := newFlagSet(name, out)
	fs.StringVar(&cbor, "cbor", "", "hex-encoded serialized transaction")
	if err := fs.Parse(args); err != nil {
		return ogmios.TxCbor{}, err
	}
	return ogmios.TxCbor{CBOR: strings.TrimSpace(cbor)}, nil
}

// printErrorVariant renders a node error with its decoded fields.
func printErrorVariant(out io.Writer, variant *jsonrpc.ErrorVariant) {
	name := variant.Name
	if !variant.Known() {
		name = "unknown"
	}
	fmt.Fprintf(out, "%s error %s: [%d] %s\n", variant.Domain, name, variant.Code(), variant.Message())

	switch variant.Kind {
	case jsonrpc.KindStructured:
		t := table.NewWriter()
		t.SetOutputMirror(out)
		t.AppendHeader(table.Row{"Field", "Value"})
		for _, field := range variant.FieldNames() {
			value, _ := variant.Field(field)
			t.AppendRow(table.Row{field, fmtValue(value)})
		}
		t.Render()
	case jsonrpc.KindSingle:
		fmt.Fprintf(out, "data: %s\n", fmtValue(variant.Payload()))
	case jsonrpc.KindFallback:
		if len(variant.Data) > 0 && string(variant.Data) != "null" {
			fmt.Fprintf(out, "data: %s\n", variant.Data)
		}
	}
}

func fmtValue(v any) string {
	switch v := v.(type) {
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(raw)
}

func fmtAda(d decimal.Decimal) string {
	return d.StringFixed(6)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
