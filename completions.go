package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/MuntasirSZN/d2o/internal/generator"
	"github.com/MuntasirSZN/d2o/internal/model"
	"github.com/MuntasirSZN/d2o/internal/parser"
	"github.com/MuntasirSZN/d2o/internal/shell"
	"github.com/MuntasirSZN/d2o/internal/source"
)

// printCompletions writes d2o's own completion script. Cobra covers the
// shells it knows; elvish and nushell go through d2o's own pipeline, fed
// with d2o's help text.
func printCompletions(cmd *cobra.Command, name string) error {
	sh, err := shell.Parse(name)
	if err != nil {
		return err
	}
	root := cmd.Root()
	switch sh {
	case shell.Bash:
		return root.GenBashCompletionV2(os.Stdout, true)
	case shell.Zsh:
		return root.GenZshCompletion(os.Stdout)
	case shell.Fish:
		return root.GenFishCompletion(os.Stdout, true)
	case shell.PowerShell:
		return root.GenPowerShellCompletionWithDesc(os.Stdout)
	}

	format, err := generator.ParseFormat(string(sh))
	if err != nil {
		return err
	}
	out, err := generator.Generate(selfTree(root), format, generator.Options{})
	if err != nil {
		return err
	}
	fmt.Print(out)
	return nil
}

func selfTree(root *cobra.Command) *model.Node {
	var help bytes.Buffer
	help.WriteString(root.Short + "\n\n")
	help.WriteString(root.UsageString())
	doc := &source.RawDocument{Kind: source.KindHelp, Text: help.Bytes()}
	return &model.Node{Command: parser.Parse(root.Name(), doc), Resolved: true}
}
