package cli

import (
	"github.com/spf13/cobra"
)

var (
	knowledgeLimit int
	knowledgeJSON  bool
	rulesLimit     int
)

var knowledgeCmd = &cobra.Command{
	Use:   "knowledge",
	Short: "Inspect the reference corpus",
	Long:  `Search the reference snippets that are added to generation prompts.`,
}

var knowledgeSearchCmd = &cobra.Command{
	Use:   "search <tech> [keywords...]",
	Short: "Rank snippets for a technology and keywords",
	Long: `Filters the corpus to one technology tag and ranks items by keyword
relevance. A keyword scores 2 when it appears in an item's description or
keywords and 3 more when it equals one of the item's keyword tags.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runKnowledgeSearch,
}

var knowledgeRulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "List rule snippets in corpus order",
	Args:  cobra.NoArgs,
	RunE:  runKnowledgeRules,
}

func init() {
	knowledgeSearchCmd.Flags().IntVarP(&knowledgeLimit, "limit", "n", 5, "maximum number of results")
	knowledgeSearchCmd.Flags().BoolVar(&knowledgeJSON, "json", false, "output results as JSON")
	knowledgeRulesCmd.Flags().IntVarP(&rulesLimit, "limit", "n", 5, "maximum number of rules")
	knowledgeCmd.AddCommand(knowledgeSearchCmd)
	knowledgeCmd.AddCommand(knowledgeRulesCmd)
	rootCmd.AddCommand(knowledgeCmd)
}

func runKnowledgeSearch(cmd *cobra.Command, args []string) error {
	if knowledgeService == nil {
		return errNotConfigured("knowledge")
	}

	results := knowledgeService.Search(args[0], args[1:], knowledgeLimit)

	if knowledgeJSON {
		return printJSON(cmd, results)
	}

	if len(results) == 0 {
		cmd.Println("No matching snippets.")
		return nil
	}

	cmd.Println("Results:")
	cmd.Println()
	for i, r := range results {
		cmd.Printf("[%d] %s (score %d)\n", i+1, r.Item.Description, r.Score)
		cmd.Printf("    %s\n", r.Item.Path)
	}
	return nil
}

func runKnowledgeRules(cmd *cobra.Command, _ []string) error {
	if knowledgeService == nil {
		return errNotConfigured("knowledge")
	}

	rules := knowledgeService.Rules(rulesLimit)
	if len(rules) == 0 {
		cmd.Println("No rules in the corpus.")
		return nil
	}
	for i, rule := range rules {
		cmd.Printf("--- rule %d ---\n", i+1)
		cmd.Println(rule)
	}
	return nil
}
