package dataset

// SampleCorpus returns a small built-in document collection for trying out the
// text vectorizers without downloading anything. One string per document.
func SampleCorpus() []string {
	return []string{
		"the cat sat on the mat",
		"the dog chased the cat around the yard",
		"a quick brown fox jumps over the lazy dog",
		"machine learning models learn patterns from data",
		"data pipelines prepare raw data for training",
		"the model predicts the class of each sample",
		"text documents become vectors of term weights",
		"rare terms carry more weight than common terms",
	}
}
