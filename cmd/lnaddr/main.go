package main

import (
	"bufio"
	"errors"
	"fmt"
	"io/ioutil"
	"log"
	"os"
	"strings"

	"github.com/ellemouton/lnaddr"

	"github.com/shopspring/decimal"
	"github.com/urfave/cli/v2"
)

func main() {
	app := cli.NewApp()

	app.Name = "lnaddr"
	app.Usage = "Resolve a Lightning Address into a BOLT11 invoice"
	app.ArgsUsage = "[address] [amount]"
	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "address",
			Aliases: []string{"r"},
			Usage:   "the Lightning Address to request an invoice from",
		},
		&cli.StringFlag{
			Name:    "amount",
			Aliases: []string{"a"},
			Usage:   "the amount, in BTC, the invoice should be payable for",
		},
		&cli.StringFlag{
			Name:    "comment",
			Aliases: []string{"c"},
			Usage:   "optional comment to attach to the invoice request",
		},
		&cli.DurationFlag{
			Name:  "timeout",
			Value: lnaddr.DefaultTimeout,
			Usage: "per-request timeout",
		},
		&cli.BoolFlag{
			Name:  "notls",
			Usage: "set to true to use http instead of https",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "enable logging",
		},
	}
	app.Action = resolve

	err := app.Run(os.Args)
	if err != nil {
		fatal(err)
	}
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "[lnaddr] %v\n", err)
	os.Exit(1)
}

func resolve(ctx *cli.Context) error {
	if !ctx.Bool("verbose") {
		log.SetOutput(ioutil.Discard)
	}

	address, amount, err := gatherInputs(ctx)
	if err != nil {
		return err
	}

	resolver := lnaddr.NewResolver(&lnaddr.Config{
		Timeout:       ctx.Duration("timeout"),
		AllowInsecure: ctx.Bool("notls"),
	})

	var opts *lnaddr.PayOptions
	if comment := ctx.String("comment"); comment != "" {
		opts = &lnaddr.PayOptions{Comment: comment}
	}

	for {
		log.Printf("resolving %s for %s BTC", address, amount)

		invoice, err := resolver.Resolve(
			ctx.Context, address, amount, opts,
		)

		// If the requested amount is outside the bounds advertised by
		// the service, report the bounds and ask for a new amount.
		var outOfRange *lnaddr.AmountOutOfRangeError
		if errors.As(err, &outOfRange) {
			fmt.Printf("Enter an amount (in BTC) between %s "+
				"and %s\n", outOfRange.MinBTC(),
				outOfRange.MaxBTC())

			amount, err = promptAmount()
			if err != nil {
				return err
			}
			continue
		}
		if err != nil {
			return err
		}

		fmt.Println(invoice)
		return nil
	}
}

// gatherInputs determines the address and amount from flags, positional
// arguments or, failing those, interactive prompts.
func gatherInputs(ctx *cli.Context) (string, decimal.Decimal, error) {
	address := ctx.String("address")
	amountStr := ctx.String("amount")

	// Detect address-like and amount-like positional arguments.
	for _, arg := range ctx.Args().Slice() {
		switch {
		case address == "" && strings.Contains(arg, "@"):
			address = arg

		case amountStr == "":
			if _, err := decimal.NewFromString(arg); err == nil {
				amountStr = arg
			}
		}
	}

	if address == "" {
		var err error
		address, err = prompt("Enter a Lightning Address: ")
		if err != nil {
			return "", decimal.Decimal{}, err
		}
	}

	if amountStr == "" {
		amount, err := promptAmount()
		return address, amount, err
	}

	amount, err := decimal.NewFromString(amountStr)
	if err != nil {
		return "", decimal.Decimal{}, fmt.Errorf("could not parse "+
			"amount: %w", err)
	}

	return address, amount, nil
}

func promptAmount() (decimal.Decimal, error) {
	for {
		input, err := prompt("Enter an amount (in BTC): ")
		if err != nil {
			return decimal.Decimal{}, err
		}

		amount, err := decimal.NewFromString(input)
		if err != nil {
			fmt.Printf("error parsing amount: %v\n", err)
			continue
		}

		return amount, nil
	}
}

func prompt(msg string) (string, error) {
	fmt.Print(msg)

	reader := bufio.NewReader(os.Stdin)
	input, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("could not read from console: %w", err)
	}

	return strings.TrimSpace(input), nil
}
