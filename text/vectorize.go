package text

import (
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/mizupe/appliedml/core/model"
	"github.com/mizupe/appliedml/pkg/errors"
	"github.com/mizupe/appliedml/pkg/log"
)

// VectorizerOption configures CountVectorizer and TfidfVectorizer.
type VectorizerOption func(*vectorizerConfig)

type vectorizerConfig struct {
	stopwords bool
	maxVocab  int
	minDF     int
	smooth    bool
}

// WithStopwords removes English stopwords before counting.
func WithStopwords() VectorizerOption {
	return func(c *vectorizerConfig) { c.stopwords = true }
}

// WithMaxVocab keeps only the n most frequent terms across the corpus;
// 0 means unlimited. Ties break alphabetically.
func WithMaxVocab(n int) VectorizerOption {
	return func(c *vectorizerConfig) { c.maxVocab = n }
}

// WithMinDF drops terms that appear in fewer than n documents.
func WithMinDF(n int) VectorizerOption {
	return func(c *vectorizerConfig) { c.minDF = n }
}

// WithSmoothIDF uses the smoothed formula log10((1+n)/(1+df)) + 1 instead of
// the plain log10(n/df).
func WithSmoothIDF() VectorizerOption {
	return func(c *vectorizerConfig) { c.smooth = true }
}

// CountVectorizer converts documents to term-count vectors over a vocabulary
// learned from the training corpus. Vocabulary columns are sorted terms.
type CountVectorizer struct {
	model.BaseEstimator

	cfg   vectorizerConfig
	vocab []string
	index map[string]int
}

// NewCountVectorizer creates a vectorizer with the given options.
func NewCountVectorizer(opts ...VectorizerOption) *CountVectorizer {
	cv := &CountVectorizer{}
	for _, opt := range opts {
		opt(&cv.cfg)
	}
	return cv
}

func (cv *CountVectorizer) tokens(doc string) []string {
	toks := Tokenize(doc)
	if cv.cfg.stopwords {
		toks = RemoveStopwords(toks)
	}
	return toks
}

// Fit learns the vocabulary from the corpus.
func (cv *CountVectorizer) Fit(docs []string) error {
	if len(docs) == 0 {
		return errors.NewModelError("CountVectorizer.Fit", "empty corpus", errors.ErrEmptyData)
	}

	start := time.Now()
	totals := map[string]int{}
	docFreq := map[string]int{}
	for _, doc := range docs {
		seen := map[string]bool{}
		for _, t := range cv.tokens(doc) {
			totals[t]++
			seen[t] = true
		}
		for t := range seen {
			docFreq[t]++
		}
	}
	if len(totals) == 0 {
		return errors.NewValueError("CountVectorizer.Fit", "corpus contains no tokens")
	}

	terms := make([]string, 0, len(totals))
	for t := range totals {
		if cv.cfg.minDF > 0 && docFreq[t] < cv.cfg.minDF {
			continue
		}
		terms = append(terms, t)
	}
	if len(terms) == 0 {
		return errors.NewValueError("CountVectorizer.Fit", "min_df filtered out every term")
	}
	if cv.cfg.maxVocab > 0 && len(terms) > cv.cfg.maxVocab {
		sort.Slice(terms, func(a, b int) bool {
			if totals[terms[a]] != totals[terms[b]] {
				return totals[terms[a]] > totals[terms[b]]
			}
			return terms[a] < terms[b]
		})
		terms = terms[:cv.cfg.maxVocab]
	}
	sort.Strings(terms)

	cv.vocab = terms
	cv.index = make(map[string]int, len(terms))
	for i, t := range terms {
		cv.index[t] = i
	}
	cv.SetFitted()

	lg := log.With("text")

	lg.Debug().
		Str(log.OperationKey, "fit_vocabulary").
		Int("corpus.documents", len(docs)).
		Int("corpus.vocabulary", len(terms)).
		Int64(log.DurationMsKey, time.Since(start).Milliseconds()).
		Msg("vocabulary learned")
	return nil
}

// Transform counts vocabulary terms per document; out-of-vocabulary tokens
// are ignored. The result is n_docs x len(Vocabulary()).
func (cv *CountVectorizer) Transform(docs []string) (*mat.Dense, error) {
	if !cv.IsFitted() {
		return nil, errors.NewNotFittedError("CountVectorizer", "Transform")
	}
	if len(docs) == 0 {
		return nil, errors.NewModelError("CountVectorizer.Transform", "empty corpus", errors.ErrEmptyData)
	}

	out := mat.NewDense(len(docs), len(cv.vocab), nil)
	for i, doc := range docs {
		for _, t := range cv.tokens(doc) {
			if j, ok := cv.index[t]; ok {
				out.Set(i, j, out.At(i, j)+1)
			}
		}
	}
	return out, nil
}

// FitTransform fits the vocabulary and returns the transformed corpus.
func (cv *CountVectorizer) FitTransform(docs []string) (*mat.Dense, error) {
	if err := cv.Fit(docs); err != nil {
		return nil, err
	}
	return cv.Transform(docs)
}

// Vocabulary returns the learned terms in column order.
func (cv *CountVectorizer) Vocabulary() []string {
	return append([]string(nil), cv.vocab...)
}

// TfidfVectorizer weights term frequencies by inverse document frequency,
// idf(t) = log10(n_docs / df(t)). Term frequency is the count normalized by
// document length.
type TfidfVectorizer struct {
	model.BaseEstimator

	counts *CountVectorizer
	smooth bool
	nDocs  int
	idf    []float64
}

// NewTfidfVectorizer creates a vectorizer with the given options.
func NewTfidfVectorizer(opts ...VectorizerOption) *TfidfVectorizer {
	tv := &TfidfVectorizer{counts: NewCountVectorizer(opts...)}
	tv.smooth = tv.counts.cfg.smooth
	return tv
}

// Fit learns the vocabulary and the per-term IDF weights from the corpus.
func (tv *TfidfVectorizer) Fit(docs []string) error {
	if err := tv.counts.Fit(docs); err != nil {
		return err
	}

	df := make([]int, len(tv.counts.vocab))
	for _, doc := range docs {
		seen := map[int]bool{}
		for _, t := range tv.counts.tokens(doc) {
			if j, ok := tv.counts.index[t]; ok {
				seen[j] = true
			}
		}
		for j := range seen {
			df[j]++
		}
	}

	tv.nDocs = len(docs)
	tv.idf = make([]float64, len(df))
	for j, d := range df {
		if tv.smooth {
			tv.idf[j] = math.Log10(float64(1+tv.nDocs)/float64(1+d)) + 1
		} else {
			tv.idf[j] = math.Log10(float64(tv.nDocs) / float64(d))
		}
	}
	tv.SetFitted()
	return nil
}

// Transform maps documents to TF-IDF vectors, n_docs x len(Vocabulary()).
// Empty documents produce zero rows.
func (tv *TfidfVectorizer) Transform(docs []string) (*mat.Dense, error) {
	if !tv.IsFitted() {
		return nil, errors.NewNotFittedError("TfidfVectorizer", "Transform")
	}

	counts, err := tv.counts.Transform(docs)
	if err != nil {
		return nil, err
	}

	r, c := counts.Dims()
	out := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		total := 0.0
		for j := 0; j < c; j++ {
			total += counts.At(i, j)
		}
		if total == 0 {
			continue
		}
		for j := 0; j < c; j++ {
			tf := counts.At(i, j) / total
			out.Set(i, j, tf*tv.idf[j])
		}
	}
	return out, nil
}

// FitTransform fits on the corpus and returns its TF-IDF matrix.
func (tv *TfidfVectorizer) FitTransform(docs []string) (*mat.Dense, error) {
	if err := tv.Fit(docs); err != nil {
		return nil, err
	}
	return tv.Transform(docs)
}

// Vocabulary returns the learned terms in column order.
func (tv *TfidfVectorizer) Vocabulary() []string {
	return tv.counts.Vocabulary()
}

// IDF returns the learned inverse document frequencies in column order.
func (tv *TfidfVectorizer) IDF() []float64 {
	return append([]float64(nil), tv.idf...)
}

// Term pairs a vocabulary term with a weight.
type Term struct {
	Word   string
	Weight float64
}

// TopTerms returns the k highest-weighted terms of one TF-IDF row, in
// descending weight order with alphabetical tie-breaking.
func TopTerms(row mat.Vector, vocab []string, k int) ([]Term, error) {
	if row.Len() != len(vocab) {
		return nil, errors.NewDimensionError("TopTerms", len(vocab), row.Len(), 1)
	}
	if k <= 0 {
		return nil, errors.NewValidationError("k", "must be positive", k)
	}

	terms := make([]Term, len(vocab))
	for j := range vocab {
		terms[j] = Term{Word: vocab[j], Weight: row.AtVec(j)}
	}
	sort.Slice(terms, func(a, b int) bool {
		if terms[a].Weight != terms[b].Weight {
			return terms[a].Weight > terms[b].Weight
		}
		return terms[a].Word < terms[b].Word
	})
	if k > len(terms) {
		k = len(terms)
	}
	return terms[:k], nil
}
