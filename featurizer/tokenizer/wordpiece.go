// Package tokenizer provides subword analyzers for the count-style
// featurizers. The WordPiece analyzer wraps sugarme/tokenizer with a BERT
// normalizer and pre-tokenizer; unlike an embedding pipeline it emits no
// special tokens and applies no padding, since the terms feed a vocabulary
// counter rather than a sequence model.
package tokenizer

import (
	"fmt"
	"os"

	tk "github.com/sugarme/tokenizer"
	"github.com/sugarme/tokenizer/model/wordpiece"
	"github.com/sugarme/tokenizer/normalizer"
	"github.com/sugarme/tokenizer/pretokenizer"
)

// WordPiece tokenizes input into BERT-style subword units.
type WordPiece struct {
	t *tk.Tokenizer
}

// NewWordPiece loads a wordpiece vocabulary file (one token per line) and
// builds the analyzer.
func NewWordPiece(vocabPath string) (*WordPiece, error) {
	fi, err := os.Stat(vocabPath)
	if err != nil {
		return nil, fmt.Errorf("tokenizer: stat wordpiece vocab: %w", err)
	}
	if fi.IsDir() {
		return nil, fmt.Errorf("tokenizer: wordpiece vocab %s is a directory", vocabPath)
	}
	wp, err := wordpiece.NewWordPieceFromFile(vocabPath, "[UNK]")
	if err != nil {
		return nil, fmt.Errorf("tokenizer: load wordpiece vocab: %w", err)
	}
	t := tk.NewTokenizer(wp)
	t.WithNormalizer(normalizer.NewBertNormalizer(true, true, true, true))
	t.WithPreTokenizer(pretokenizer.NewBertPreTokenizer())
	return &WordPiece{t: t}, nil
}

// Name identifies the analyzer in serialized state. State fitted with this
// analyzer requires the vocabulary file again at load time.
func (w *WordPiece) Name() string { return "wordpiece" }

// Tokens returns the subword units of one input string. Inputs the
// underlying tokenizer rejects contribute no terms.
func (w *WordPiece) Tokens(text string) []string {
	enc, err := w.t.Encode(tk.NewSingleEncodeInput(tk.NewInputSequence(text)), false)
	if err != nil {
		return nil
	}
	return enc.GetTokens()
}
