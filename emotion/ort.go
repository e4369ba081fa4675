package emotion

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/sugarme/tokenizer"
	"github.com/sugarme/tokenizer/pretrained"
	ort "github.com/yalue/onnxruntime_go"
)

// OrtAdapter runs a sequence classification model exported to ONNX. Inputs are
// input_ids and attention_mask of shape (1, MaxSeqLen); the output holds one
// logit per label in label set order.
type OrtAdapter struct {
	cfg    ModelConfig
	labels LabelSet
	tk     *tokenizer.Tokenizer

	mu      sync.Mutex
	session *ort.AdvancedSession
	ids     *ort.Tensor[int64]
	mask    *ort.Tensor[int64]
	logits  *ort.Tensor[float32]
}

// NewOrtAdapter loads the tokenizer and creates an ONNX Runtime session.
func NewOrtAdapter(cfg ModelConfig, labels LabelSet) (*OrtAdapter, error) {
	if cfg.ModelPath == "" {
		return nil, errors.New("model path is required")
	}
	if cfg.TokenizerPath == "" {
		return nil, errors.New("tokenizer path is required")
	}
	if cfg.MaxSeqLen <= 0 {
		cfg.MaxSeqLen = 512
	}
	tk, err := pretrained.FromFile(cfg.TokenizerPath)
	if err != nil {
		return nil, fmt.Errorf("load tokenizer: %w", err)
	}
	if !ort.IsInitialized() {
		if cfg.OrtLib != "" {
			ort.SetSharedLibraryPath(cfg.OrtLib)
		}
		if err := ort.InitializeEnvironment(); err != nil {
			return nil, fmt.Errorf("init onnxruntime: %w", err)
		}
	}

	seq := int64(cfg.MaxSeqLen)
	a := &OrtAdapter{cfg: cfg, labels: labels, tk: tk}
	if a.ids, err = ort.NewEmptyTensor[int64](ort.NewShape(1, seq)); err != nil {
		return nil, fmt.Errorf("allocate input_ids: %w", err)
	}
	if a.mask, err = ort.NewEmptyTensor[int64](ort.NewShape(1, seq)); err != nil {
		a.Close()
		return nil, fmt.Errorf("allocate attention_mask: %w", err)
	}
	if a.logits, err = ort.NewEmptyTensor[float32](ort.NewShape(1, int64(labels.Len()))); err != nil {
		a.Close()
		return nil, fmt.Errorf("allocate logits: %w", err)
	}
	a.session, err = ort.NewAdvancedSession(cfg.ModelPath,
		[]string{cfg.InputIDs, cfg.AttentionMask},
		[]string{cfg.OutputName},
		[]ort.Value{a.ids, a.mask},
		[]ort.Value{a.logits},
		nil)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("create session: %w", err)
	}
	return a, nil
}

// Infer tokenizes text, runs the model and maps the outputs onto labels.
func (a *OrtAdapter) Infer(ctx context.Context, text string) (ScoreVector, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	enc, err := a.tk.EncodeSingle(text, true)
	if err != nil {
		return nil, fmt.Errorf("tokenize: %w", err)
	}
	ids, mask := fitSequence(enc.Ids, enc.AttentionMask, a.cfg.MaxSeqLen)

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.session == nil {
		return nil, errors.New("onnx session is closed")
	}
	copy(a.ids.GetData(), ids)
	copy(a.mask.GetData(), mask)
	if err := a.session.Run(); err != nil {
		return nil, fmt.Errorf("run session: %w", err)
	}
	out := a.logits.GetData()
	scores := make(ScoreVector, a.labels.Len())
	for i, label := range a.labels.labels {
		v := float64(out[i])
		if a.cfg.Sigmoid() {
			v = 1 / (1 + math.Exp(-v))
		}
		scores[label] = v
	}
	return scores, nil
}

// Close releases the session and tensors.
func (a *OrtAdapter) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	var errs []error
	if a.session != nil {
		errs = append(errs, a.session.Destroy())
		a.session = nil
	}
	if a.ids != nil {
		errs = append(errs, a.ids.Destroy())
		a.ids = nil
	}
	if a.mask != nil {
		errs = append(errs, a.mask.Destroy())
		a.mask = nil
	}
	if a.logits != nil {
		errs = append(errs, a.logits.Destroy())
		a.logits = nil
	}
	return errors.Join(errs...)
}

// fitSequence truncates or pads token ids to n. A truncated sequence keeps its
// final (separator) token.
func fitSequence(ids, mask []int, n int) ([]int64, []int64) {
	outIDs := make([]int64, n)
	outMask := make([]int64, n)
	if len(ids) > n {
		last := ids[len(ids)-1]
		ids = append(append([]int(nil), ids[:n-1]...), last)
		if len(mask) > n {
			mask = mask[:n]
		}
	}
	for i, id := range ids {
		outIDs[i] = int64(id)
		if i < len(mask) {
			outMask[i] = int64(mask[i])
		} else {
			outMask[i] = 1
		}
	}
	return outIDs, outMask
}
