package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	internal "featops/internal"
	"featops/kernel"
	"featops/ops"
	"featops/store"
	"featops/tensor"
)

var (
	transformName      string
	transformStateFile string
	transformOp        string
	transformWordpiece string
)

var transformCmd = &cobra.Command{
	Use:   "transform [strings...]",
	Short: "Run input strings through a stored vectorizer kernel",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runTransform,
}

func init() {
	transformCmd.Flags().StringVar(&transformName, "name", "", "stored state name")
	transformCmd.Flags().StringVar(&transformStateFile, "state", "", "state file (alternative to --name)")
	transformCmd.Flags().StringVar(&transformOp, "op", "", "op type when using --state (count or tfidf)")
	transformCmd.Flags().StringVar(&transformWordpiece, "wordpiece-vocab", "", "wordpiece vocab file for states fitted with the wordpiece analyzer")
	rootCmd.AddCommand(transformCmd)
}

func loadState() ([]byte, string, error) {
	if transformStateFile != "" {
		data, err := os.ReadFile(transformStateFile)
		if err != nil {
			return nil, "", fmt.Errorf("read state file: %w", err)
		}
		switch transformOp {
		case "", "count":
			return data, "CountVectorizerTransformer", nil
		case "tfidf":
			return data, "TfidfVectorizerTransformer", nil
		default:
			return nil, "", fmt.Errorf("unknown op %q", transformOp)
		}
	}
	if transformName == "" {
		return nil, "", fmt.Errorf("either --name or --state is required")
	}
	s, err := store.Open(storePath())
	if err != nil {
		return nil, "", err
	}
	defer s.Close()
	state, meta, err := s.Get(transformName)
	if err != nil {
		return nil, "", err
	}
	return state, meta.OpType, nil
}

func runTransform(cmd *cobra.Command, args []string) error {
	state, opType, err := loadState()
	if err != nil {
		return err
	}

	registry := kernel.NewRegistry()
	if err := ops.RegisterAll(registry); err != nil {
		return err
	}
	executor := kernel.NewExecutor(registry,
		kernel.WithLogger(internal.GetLogger()),
		kernel.WithMaxWorkers(cfg.Runtime.MaxWorkers),
	)

	stateTensor, err := tensor.NewUint8(tensor.NewShape(int64(len(state))), state)
	if err != nil {
		return err
	}
	var attrs map[string]string
	if transformWordpiece != "" {
		attrs = map[string]string{ops.WordpieceVocabAttr: transformWordpiece}
	}
	nodes := make([]kernel.Node, len(args))
	for i, input := range args {
		inputTensor, err := tensor.NewString(tensor.NewShape(1), []string{input})
		if err != nil {
			return err
		}
		nodes[i] = kernel.Node{
			OpType:  opType,
			Domain:  ops.FeaturizersDomain,
			Version: cfg.Runtime.OpsetVersion,
			Inputs:  []*tensor.Tensor{stateTensor, inputTensor},
			Attrs:   attrs,
		}
	}

	results, err := executor.RunBatch(cmd.Context(), nodes)
	if err != nil {
		return err
	}
	for i, outs := range results {
		if len(outs) == 0 {
			return fmt.Errorf("node %d produced no output", i)
		}
		out := outs[0]
		switch out.DType() {
		case tensor.Uint32:
			data, err := out.Uint32s()
			if err != nil {
				return err
			}
			fmt.Printf("%q -> %v\n", args[i], data)
		case tensor.Float32:
			data, err := out.Float32s()
			if err != nil {
				return err
			}
			fmt.Printf("%q -> %v\n", args[i], data)
		default:
			return fmt.Errorf("unexpected output type %s", out.DType())
		}
	}
	return nil
}
