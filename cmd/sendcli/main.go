package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/urfave/cli"
)

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "[sendcli] %v\n", err)
	os.Exit(1)
}

func printJSON(resp interface{}) {
	b, err := json.MarshalIndent(resp, "", "    ")
	if err != nil {
		fatal(err)
	}

	fmt.Println(string(b))
}

func main() {
	app := cli.NewApp()
	app.Name = "sendcli"
	app.Usage = "quote fees and validate sends against live backends"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "configfile",
			Value: defaultConfigFile,
			Usage: "path to the INI config file",
		},
		cli.StringFlag{
			Name:  "chain",
			Usage: "chain to quote for, btc or evm",
		},
		cli.StringFlag{
			Name:  "network",
			Usage: "bitcoin network: mainnet, testnet, regtest or signet",
		},
		cli.StringFlag{
			Name:  "feesource",
			Usage: "bitcoin fee source, mempool or lnd",
		},
		cli.StringFlag{
			Name:  "debuglevel",
			Usage: "logging level: trace, debug, info, warn, error",
		},
	}
	app.Commands = []cli.Command{
		quoteCommand,
	}

	if err := app.Run(os.Args); err != nil {
		fatal(err)
	}
}

// getConfig loads the config file and applies the global flags on top.
func getConfig(ctx *cli.Context) (*config, error) {
	cfg, err := loadConfig(ctx.GlobalString("configfile"))
	if err != nil {
		return nil, err
	}

	if ctx.GlobalIsSet("chain") {
		cfg.Chain = ctx.GlobalString("chain")
	}
	if ctx.GlobalIsSet("network") {
		cfg.Network = ctx.GlobalString("network")
	}
	if ctx.GlobalIsSet("feesource") {
		cfg.FeeSource = ctx.GlobalString("feesource")
	}
	if ctx.GlobalIsSet("debuglevel") {
		cfg.DebugLevel = ctx.GlobalString("debuglevel")
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	if err := setupLoggers(cfg.DebugLevel); err != nil {
		return nil, err
	}

	return cfg, nil
}
