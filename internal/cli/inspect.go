package cli

import (
	"fmt"
	"os"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"featops/featurizer"
	"featops/featurizer/countvec"
	"featops/featurizer/tfidf"
	"featops/featurizer/tokenizer"
	"featops/store"
)

var (
	inspectName      string
	inspectVocab     bool
	inspectWordpiece string
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "List stored states or dump one state's metadata and vocabulary",
	RunE:  runInspect,
}

func init() {
	inspectCmd.Flags().StringVar(&inspectName, "name", "", "stored state to inspect (omit to list all)")
	inspectCmd.Flags().BoolVar(&inspectVocab, "vocab", false, "include the vocabulary")
	inspectCmd.Flags().StringVar(&inspectWordpiece, "wordpiece-vocab", "", "wordpiece vocab file for states fitted with the wordpiece analyzer")
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, args []string) error {
	s, err := store.Open(storePath())
	if err != nil {
		return err
	}
	defer s.Close()

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")

	if inspectName == "" {
		metas, err := s.List()
		if err != nil {
			return err
		}
		return enc.Encode(metas)
	}

	state, meta, err := s.Get(inspectName)
	if err != nil {
		return err
	}
	if !inspectVocab {
		return enc.Encode(meta)
	}

	var cvOpts []countvec.Option
	var tfOpts []tfidf.Option
	if inspectWordpiece != "" {
		wp, err := tokenizer.NewWordPiece(inspectWordpiece)
		if err != nil {
			return err
		}
		cvOpts = append(cvOpts, countvec.WithAnalyzer(wp))
		tfOpts = append(tfOpts, tfidf.WithAnalyzer(wp))
	}

	var vocab map[string]uint32
	switch meta.OpType {
	case "CountVectorizerTransformer":
		t, err := countvec.Load(featurizer.NewArchive(state), cvOpts...)
		if err != nil {
			return err
		}
		vocab = t.Vocabulary()
	case "TfidfVectorizerTransformer":
		t, err := tfidf.Load(featurizer.NewArchive(state), tfOpts...)
		if err != nil {
			return err
		}
		vocab = t.Vocabulary()
	default:
		return fmt.Errorf("unknown op type %q in metadata", meta.OpType)
	}
	return enc.Encode(struct {
		Meta       store.Meta        `json:"meta"`
		Vocabulary map[string]uint32 `json:"vocabulary"`
	}{meta, vocab})
}
