package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/yurisalesc/poc-legal-llm/internal/core/domain"
)

var queryCmd = &cobra.Command{
	Use:   "query <question>",
	Short: "Answer a question from the ingested laws",
	Long: `Answer a question in Portuguese using the passages retrieved from the
ingested laws. The answer lists the PDF files it was grounded on.

Retrieval strategies:
  semantic    similarity search, optionally re-ranked with MMR
  self_query  the language model derives a metadata filter such as a law
              number from the question; falls back to semantic retrieval

Examples:
  legal-llm query "Qual o prazo de vigência da Lei 14.133?"
  legal-llm query --strategy semantic --json "O que diz o art. 5º?"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runQuery,
}

var retrieveCmd = &cobra.Command{
	Use:   "retrieve <question>",
	Short: "Show the passages a question would be answered from",
	Long: `Run retrieval only and list the passages, without calling the language
model for an answer. Useful for checking what the store holds.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRetrieve,
}

func init() {
	for _, c := range []*cobra.Command{queryCmd, retrieveCmd} {
		c.Flags().String("strategy", "", "retrieval strategy: semantic or self_query")
		c.Flags().Int("k", 0, "number of passages to retrieve")
		c.Flags().Bool("json", false, "print JSON")
		rootCmd.AddCommand(c)
	}
}

func runQuery(cmd *cobra.Command, args []string) error {
	asJSON, _ := cmd.Flags().GetBool("json")
	question := strings.Join(args, " ")

	app, err := openApp(cmd, appOptions{})
	if err != nil {
		return err
	}
	defer app.Close()

	answer, err := app.Query.Ask(cmd.Context(), question)
	if err != nil {
		return err
	}

	sources := answer.Sources
	if sources == nil {
		sources = []string{}
	}
	if asJSON {
		return writeJSON(cmd.OutOrStdout(), answerJSON{
			Result:   answer.Text,
			Sources:  sources,
			Strategy: string(answer.Strategy),
		})
	}

	cmd.Println(answer.Text)
	cmd.Println()
	cmd.Println(heading("Fontes:"))
	if len(sources) == 0 {
		cmd.Println("  " + muted("nenhuma"))
	}
	for _, s := range sources {
		cmd.Printf("  - %s\n", s)
	}
	if answer.Strategy != "" {
		cmd.Println(muted("estratégia: " + string(answer.Strategy)))
	}
	return nil
}

func runRetrieve(cmd *cobra.Command, args []string) error {
	asJSON, _ := cmd.Flags().GetBool("json")
	question := strings.Join(args, " ")

	app, err := openApp(cmd, appOptions{})
	if err != nil {
		return err
	}
	defer app.Close()

	chunks, err := app.Query.Retrieve(cmd.Context(), question)
	if err != nil {
		return err
	}

	if asJSON {
		return writeJSON(cmd.OutOrStdout(), toPassages(chunks))
	}

	if len(chunks) == 0 {
		cmd.Println("No passages found.")
		return nil
	}
	cmd.Printf("Passages (%d):\n\n", len(chunks))
	for i, c := range chunks {
		label := c.Source()
		if n := c.Metadata[domain.MetaLawNumber]; n != "" {
			label += " · Lei " + n
		}
		if a := c.Metadata[domain.MetaArticle]; a != "" && a != domain.ArticleNotFound {
			label += " · Art. " + a
		}
		cmd.Printf("%d. %s\n", i+1, heading(label))
		cmd.Printf("   %s\n\n", preview(c.Content, maxPreview))
	}
	return nil
}
