package main

import (
	"os"

	"github.com/alecthomas/kong"

	"github.com/fjordlab/memtopo/pkg/topoctl"
)

func main() {
	var param topoctl.Parameters
	k, err := kong.New(&param,
		kong.Name("topoctl"),
		kong.Description("Topology server utility"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
			Summary: false,
		}))
	if err != nil {
		panic(err)
	}
	kctx, err := k.Parse(os.Args[1:])
	if err != nil {
		k.FatalIfErrorf(err)
		return
	}

	// The commands take the RunContext interface, not the parameter struct
	kctx.BindTo(topoctl.NewRunContext(param), (*topoctl.RunContext)(nil))
	if err := kctx.Run(); err != nil {
		// The commands report their errors on stderr
		os.Exit(1)
	}
}
