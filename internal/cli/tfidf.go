package cli

import (
	"bufio"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mizupe/appliedml/dataset"
	"github.com/mizupe/appliedml/pkg/errors"
	"github.com/mizupe/appliedml/text"
)

func newTfidfCmd() *cobra.Command {
	var (
		top       int
		stopwords bool
		maxVocab  int
	)

	cmd := &cobra.Command{
		Use:   "tfidf [file.txt]",
		Short: "Compute TF-IDF over a file of one document per line",
		Long: "Compute TF-IDF over a file of one document per line. " +
			"Without a file, a small built-in sample corpus is used.",
		RunE: func(cmd *cobra.Command, args []string) error {
			docs := dataset.SampleCorpus()
			if len(args) == 1 {
				var err error
				docs, err = readLines(args[0])
				if err != nil {
					return err
				}
			}

			var opts []text.VectorizerOption
			if stopwords {
				opts = append(opts, text.WithStopwords())
			}
			if maxVocab > 0 {
				opts = append(opts, text.WithMaxVocab(maxVocab))
			}

			tv := text.NewTfidfVectorizer(opts...)
			tfidf, err := tv.FitTransform(docs)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			vocab := tv.Vocabulary()
			fmt.Fprintf(out, "%d documents, %d terms\n", len(docs), len(vocab))

			r, _ := tfidf.Dims()
			for i := 0; i < r; i++ {
				terms, err := text.TopTerms(tfidf.RowView(i), vocab, top)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "doc %d:", i)
				for _, term := range terms {
					if term.Weight == 0 {
						break
					}
					fmt.Fprintf(out, " %s=%.4f", term.Word, term.Weight)
				}
				fmt.Fprintln(out)
			}
			return nil
		},
		Args: cobra.MaximumNArgs(1),
	}

	cmd.Flags().IntVar(&top, "top", 5, "top terms to print per document")
	cmd.Flags().BoolVar(&stopwords, "stopwords", false, "remove English stopwords")
	cmd.Flags().IntVar(&maxVocab, "max-vocab", 0, "vocabulary size cap, 0 for unlimited")
	return cmd
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "tfidf: open %s", path)
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		if line := sc.Text(); line != "" {
			lines = append(lines, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrapf(err, "tfidf: read %s", path)
	}
	if len(lines) == 0 {
		return nil, errors.NewModelError("tfidf", "no documents in "+path, errors.ErrEmptyData)
	}
	return lines, nil
}
