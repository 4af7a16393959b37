package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/reproducible-bioinformatics/schemer/internal/interp"
	"github.com/reproducible-bioinformatics/schemer/internal/parser"
	"github.com/reproducible-bioinformatics/schemer/internal/value"
	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "schemer",
	Short: "A tree-walking Scheme interpreter",
	Long:  `schemer lexes, parses and evaluates a small R5RS-subset Scheme dialect.`,
}

var runCmd = &cobra.Command{
	Use:   "run <file>",
	Short: "Evaluate every top-level form in a Scheme source file",
	Args:  cobra.ExactArgs(1),
	RunE:  runFile,
}

var checkCmd = &cobra.Command{
	Use:   "check <file>",
	Short: "Parse a Scheme source file without evaluating it",
	Args:  cobra.ExactArgs(1),
	RunE:  checkFile,
}

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Start an interactive read-eval-print loop",
	Args:  cobra.NoArgs,
	RunE:  runREPL,
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(replCmd)
}

func runFile(cmd *cobra.Command, args []string) error {
	content, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("error reading file %s: %w", args[0], err)
	}

	session := interp.New()
	results, err := session.EvalString(string(content))
	for _, v := range results {
		if v.Kind == value.KindUnspecified {
			continue
		}
		fmt.Println(value.Print(v))
	}
	if err != nil {
		return fmt.Errorf("error evaluating %s: %w", args[0], err)
	}
	return nil
}

func checkFile(cmd *cobra.Command, args []string) error {
	content, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("error reading file %s: %w", args[0], err)
	}
	forms, err := parser.ParseForms(string(content))
	if err != nil {
		return fmt.Errorf("error parsing %s: %w", args[0], err)
	}
	fmt.Printf("%s: %d top-level form(s), no parse errors\n", args[0], len(forms))
	return nil
}

func runREPL(cmd *cobra.Command, args []string) error {
	session := interp.New()
	scanner := bufio.NewScanner(os.Stdin)
	fmt.Print("schemer> ")
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			fmt.Print("schemer> ")
			continue
		}
		v, err := session.EvalOne(line)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		} else {
			fmt.Println(value.Print(v))
		}
		fmt.Print("schemer> ")
	}
	fmt.Println()
	return scanner.Err()
}
