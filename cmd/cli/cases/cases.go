// Package cases holds the command line operations for managing the case file.
package cases

import (
	"fmt"
	"github.com/myrjola/triage/internal/ai"
	"github.com/myrjola/triage/internal/errors"
	"github.com/myrjola/triage/internal/intake"
	"github.com/myrjola/triage/internal/random"
	"github.com/myrjola/triage/internal/repositories"
	"github.com/myrjola/triage/internal/sqlite"
	"github.com/myrjola/triage/internal/testhelpers"
	"github.com/spf13/cobra"
	"os"
	"text/tabwriter"
)

var Group = &cobra.Group{
	ID:    "cases",
	Title: "Case file operations",
}

var (
	topic      string
	difficulty string
	sqliteURL  string
)

func init() {
	Generate.Flags().StringVar(&topic, "topic", "", "topic to build the case around, e.g. 'tropical diseases'")
	Generate.Flags().StringVar(&difficulty, "difficulty", "Medium", "Easy, Medium or Hard")
	Generate.PersistentFlags().StringVar(&sqliteURL, "sqlite-url", "./triage.sqlite", "SQLite URL")
	List.PersistentFlags().StringVar(&sqliteURL, "sqlite-url", "./triage.sqlite", "SQLite URL")
}

func openRepository(cmd *cobra.Command) (*repositories.CaseRepository, func(), error) {
	logger := testhelpers.NewLogger(os.Stderr)
	db, err := sqlite.NewDatabase(cmd.Context(), sqliteURL)
	if err != nil {
		return nil, nil, errors.Wrap(err, "open database")
	}
	closeFn := func() {
		_ = db.Close()
	}
	return repositories.NewCaseRepository(db, logger), closeFn, nil
}

var Generate = &cobra.Command{
	Use:     "generate",
	GroupID: "cases",
	Short:   "Generate a new case and file it in the case store",
	RunE: func(cmd *cobra.Command, _ []string) error {
		apiKey, ok := os.LookupEnv("OPENAI_API_KEY")
		if !ok {
			return errors.New("OPENAI_API_KEY not set")
		}

		repo, closeFn, err := openRepository(cmd)
		if err != nil {
			return err
		}
		defer closeFn()

		client := ai.NewClient(apiKey)
		payload, err := client.GenerateCase(cmd.Context(), topic, difficulty)
		if err != nil {
			return errors.Wrap(err, "generate case")
		}

		id, err := random.Letters(12) //nolint:mnd // 12 characters
		if err != nil {
			return errors.Wrap(err, "mint case id")
		}

		c, err := intake.Normalize(id, payload, nil)
		if err != nil {
			return errors.Wrap(err, "normalize generated case")
		}

		if err = repo.Insert(cmd.Context(), id, c.DisplayTitle, difficulty, payload); err != nil {
			return errors.Wrap(err, "insert case")
		}

		cmd.Printf("Filed case %s: %s\n", id, c.DisplayTitle)
		return nil
	},
}

var List = &cobra.Command{
	Use:     "list",
	GroupID: "cases",
	Short:   "List the cases in the case store",
	RunE: func(cmd *cobra.Command, _ []string) error {
		repo, closeFn, err := openRepository(cmd)
		if err != nil {
			return err
		}
		defer closeFn()

		summaries, err := repo.List(cmd.Context())
		if err != nil {
			return errors.Wrap(err, "list cases")
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		_, _ = fmt.Fprintln(w, "ID\tTITLE\tDIFFICULTY\tCREATED")
		for _, s := range summaries {
			_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", s.ID, s.Title, s.Difficulty, s.CreatedAt)
		}
		return w.Flush()
	},
}
