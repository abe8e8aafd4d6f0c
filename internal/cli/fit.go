package cli

import (
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"featops/featurizer"
	"featops/featurizer/countvec"
	"featops/featurizer/tfidf"
	"featops/featurizer/tokenizer"
	internal "featops/internal"
	"featops/internal/corpus"
	"featops/store"
)

var (
	fitName           string
	fitDir            string
	fitIncludes       []string
	fitExcludes       []string
	fitOp             string
	fitBinary         bool
	fitMaxFeatures    int
	fitMinDocFreq     int
	fitMaxDocFraction float64
	fitAnalyzer       string
	fitNgramMin       int
	fitNgramMax       int
	fitWordpiece      string
	fitNorm           string
	fitOutFile        string
)

var fitCmd = &cobra.Command{
	Use:   "fit",
	Short: "Fit a vectorizer state over a corpus and store it",
	RunE:  runFit,
}

func init() {
	fitCmd.Flags().StringVar(&fitName, "name", "", "name to store the fitted state under")
	fitCmd.Flags().StringVar(&fitDir, "dir", ".", "corpus root directory")
	fitCmd.Flags().StringSliceVar(&fitIncludes, "include", nil, "include globs (doublestar), default everything")
	fitCmd.Flags().StringSliceVar(&fitExcludes, "exclude", nil, "exclude globs (doublestar)")
	fitCmd.Flags().StringVar(&fitOp, "op", "count", "vectorizer to fit: count or tfidf")
	fitCmd.Flags().BoolVar(&fitBinary, "binary", false, "clip counts to presence")
	fitCmd.Flags().IntVar(&fitMaxFeatures, "max-features", 0, "vocabulary cap, 0 for unbounded")
	fitCmd.Flags().IntVar(&fitMinDocFreq, "min-df", 0, "minimum document frequency, 0 to use config")
	fitCmd.Flags().Float64Var(&fitMaxDocFraction, "max-df", 0, "maximum document fraction, 0 to disable")
	fitCmd.Flags().StringVar(&fitAnalyzer, "analyzer", "", "analyzer: word, char or wordpiece (default from config)")
	fitCmd.Flags().IntVar(&fitNgramMin, "ngram-min", 0, "char n-gram lower bound")
	fitCmd.Flags().IntVar(&fitNgramMax, "ngram-max", 0, "char n-gram upper bound")
	fitCmd.Flags().StringVar(&fitWordpiece, "wordpiece-vocab", "", "wordpiece vocab file (analyzer=wordpiece)")
	fitCmd.Flags().StringVar(&fitNorm, "norm", "", "tf-idf norm: l1, l2 or none (default from config)")
	fitCmd.Flags().StringVar(&fitOutFile, "out", "", "write the state to a file instead of the store")
	fitCmd.MarkFlagRequired("name")
	rootCmd.AddCommand(fitCmd)
}

// buildAnalyzer resolves the analyzer from flags falling back to config.
func buildAnalyzer() (countvec.Analyzer, error) {
	name := fitAnalyzer
	if name == "" {
		name = cfg.Vectorizer.Analyzer
	}
	switch name {
	case "", "word":
		return countvec.NewWordAnalyzer(), nil
	case "char":
		minN, maxN := fitNgramMin, fitNgramMax
		if minN == 0 {
			minN = cfg.Vectorizer.NgramMin
		}
		if maxN == 0 {
			maxN = cfg.Vectorizer.NgramMax
		}
		return countvec.NewCharNgramAnalyzer(minN, maxN)
	case "wordpiece":
		if fitWordpiece == "" {
			return nil, fmt.Errorf("analyzer wordpiece requires --wordpiece-vocab")
		}
		return tokenizer.NewWordPiece(fitWordpiece)
	default:
		return nil, fmt.Errorf("unknown analyzer %q", name)
	}
}

func runFit(cmd *cobra.Command, args []string) error {
	logger := internal.GetLogger()

	walker := corpus.NewWalker(fitIncludes, fitExcludes)
	paths, err := walker.Walk(fitDir)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("no corpus files matched under %s", fitDir)
	}

	bar := progressbar.NewOptions(len(paths),
		progressbar.OptionSetDescription("reading corpus"),
		progressbar.OptionShowCount(),
	)
	docs := make([]string, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return fmt.Errorf("read %s: %w", p, err)
		}
		docs = append(docs, string(data))
		bar.Add(1)
	}
	fmt.Fprintln(os.Stderr)

	analyzer, err := buildAnalyzer()
	if err != nil {
		return err
	}
	fitOpts := countvec.FitOptions{
		Analyzer:       analyzer,
		Binary:         fitBinary || cfg.Vectorizer.Binary,
		MaxFeatures:    firstNonZero(fitMaxFeatures, cfg.Vectorizer.MaxFeatures),
		MinDocFreq:     firstNonZero(fitMinDocFreq, cfg.Vectorizer.MinDocFreq),
		MaxDocFraction: fitMaxDocFraction,
	}
	if fitOpts.MaxDocFraction == 0 {
		fitOpts.MaxDocFraction = cfg.Vectorizer.MaxDocFraction
	}

	archive := featurizer.NewWritableArchive()
	meta := store.Meta{Name: fitName, Analyzer: analyzer.Name()}
	switch fitOp {
	case "count":
		t, err := countvec.Fit(docs, fitOpts)
		if err != nil {
			return err
		}
		t.Save(archive)
		meta.OpType = "CountVectorizerTransformer"
		meta.NumFeatures = t.NumFeatures()
	case "tfidf":
		norm := tfidf.Norm(fitNorm)
		if norm == "" {
			norm = tfidf.Norm(cfg.Vectorizer.Norm)
		}
		t, err := tfidf.Fit(docs, tfidf.FitOptions{FitOptions: fitOpts, Norm: norm})
		if err != nil {
			return err
		}
		t.Save(archive)
		meta.OpType = "TfidfVectorizerTransformer"
		meta.NumFeatures = t.NumFeatures()
	default:
		return fmt.Errorf("unknown op %q, want count or tfidf", fitOp)
	}

	state := archive.Bytes()
	if fitOutFile != "" {
		if err := os.WriteFile(fitOutFile, state, 0o644); err != nil {
			return fmt.Errorf("write state file: %w", err)
		}
		logger.Info().Str("name", fitName).Str("file", fitOutFile).
			Uint64("features", meta.NumFeatures).Msg("state written")
		return nil
	}

	s, err := store.Open(storePath())
	if err != nil {
		return err
	}
	defer s.Close()
	if err := s.Put(meta, state); err != nil {
		return err
	}
	logger.Info().Str("name", fitName).Str("op", meta.OpType).
		Uint64("features", meta.NumFeatures).Int("docs", len(docs)).
		Msg("state stored")
	return nil
}

func firstNonZero(vals ...int) int {
	for _, v := range vals {
		if v != 0 {
			return v
		}
	}
	return 0
}
