package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	kmserrors "github.com/devinalusiana15/KMS-OOP/internal/errors"
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask a natural language question",
	Long:  `Answers a question from the indexed documents, or from the ontology for definition and direction questions.`,
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAsk,
}

var refinementsCmd = &cobra.Command{
	Use:   "refinements",
	Short: "List questions that could not be answered",
	Args:  cobra.NoArgs,
	RunE:  runRefinements,
}

func runAsk(cmd *cobra.Command, args []string) error {
	eng, err := openEngine()
	if err != nil {
		return err
	}
	defer eng.Close()

	question := strings.Join(args, " ")
	answer, err := eng.Ask(cmd.Context(), question)
	if err != nil && !errors.Is(err, kmserrors.ErrInvalidQuestion) {
		return err
	}

	if jsonOutput {
		if jsonErr := printJSON(answer); jsonErr != nil {
			return jsonErr
		}
		return err
	}

	fmt.Println(answer.Answer)
	if answer.ExtraInfo != "" {
		fmt.Println(answer.ExtraInfo)
	}
	for _, c := range answer.Candidates {
		fmt.Printf("  - %s (%s): %s\n", c.DocumentName, c.URL, c.Text)
	}
	return err
}

func runRefinements(cmd *cobra.Command, args []string) error {
	eng, err := openEngine()
	if err != nil {
		return err
	}
	defer eng.Close()

	refinements, err := eng.Refinements(cmd.Context())
	if err != nil {
		return err
	}
	if jsonOutput {
		return printJSON(refinements)
	}
	for _, r := range refinements {
		fmt.Printf("%s\t%s\t%s\n", r.CreatedAt.Format("2006-01-02 15:04:05"), r.Question, r.Answer)
	}
	return nil
}
