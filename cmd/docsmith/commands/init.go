package commands

import (
	"fmt"

	"github.com/docsmith/docsmith/internal/config"
)

// InitCmd implements the 'init' command.
type InitCmd struct {
	Force bool `help:"Overwrite an existing configuration file"`
}

func (i *InitCmd) Run(_ *Global, root *CLI) error {
	if err := config.WriteStarter(root.Config, i.Force); err != nil {
		logClassified(err)
		return err
	}
	fmt.Printf("Wrote starter configuration to %s\n", root.Config)
	return nil
}
