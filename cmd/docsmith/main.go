package main

import (
	"github.com/alecthomas/kong"

	"github.com/docsmith/docsmith/cmd/docsmith/commands"
	"github.com/docsmith/docsmith/internal/version"
)

func main() {
	cli := &commands.CLI{}
	ctx := kong.Parse(cli,
		kong.Name("docsmith"),
		kong.Description("Static documentation site builder"),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
	)
	err := ctx.Run(&commands.Global{})
	ctx.FatalIfErrorf(err)
}
