package emotion

import (
	"context"
	"crypto/sha1"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sync"
)

// CachedAdapter memoizes score vectors in memory and, when dir is set, on disk
// as little-endian float32 files keyed by sha1(modelID|text). Vectors are
// stored in label set order.
type CachedAdapter struct {
	next    InferenceAdapter
	labels  LabelSet
	modelID string
	dir     string

	mu       sync.RWMutex
	memCache map[string][]float32
}

// NewCachedAdapter wraps next with a score cache.
func NewCachedAdapter(next InferenceAdapter, labels LabelSet, modelID, dir string) (*CachedAdapter, error) {
	if dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create cache dir: %w", err)
		}
	}
	return &CachedAdapter{
		next:     next,
		labels:   labels,
		modelID:  modelID,
		dir:      dir,
		memCache: make(map[string][]float32),
	}, nil
}

// Infer returns a cached vector when available and otherwise delegates.
// Failures and vectors that miss a label or carry a non-finite score are
// never cached.
func (c *CachedAdapter) Infer(ctx context.Context, text string) (ScoreVector, error) {
	key := c.cacheKey(text)
	if vec := c.getFromCache(key); vec != nil {
		return c.toScores(vec), nil
	}
	if vec, err := c.loadFromDisk(key); err == nil && len(vec) == c.labels.Len() {
		c.storeInMemory(key, vec)
		return c.toScores(vec), nil
	}
	scores, err := c.next.Infer(ctx, text)
	if err != nil {
		return nil, err
	}
	if vec, ok := c.fromScores(scores); ok {
		c.storeInMemory(key, vec)
		_ = c.saveToDisk(key, vec)
	}
	return scores.Clone(), nil
}

// Close releases the wrapped adapter when it holds resources.
func (c *CachedAdapter) Close() error {
	c.mu.Lock()
	c.memCache = make(map[string][]float32)
	c.mu.Unlock()
	if closer, ok := c.next.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

func (c *CachedAdapter) toScores(vec []float32) ScoreVector {
	out := make(ScoreVector, len(vec))
	for i, label := range c.labels.labels {
		out[label] = float64(vec[i])
	}
	return out
}

// fromScores packs scores in label order. It reports false unless every
// label has a finite score.
func (c *CachedAdapter) fromScores(scores ScoreVector) ([]float32, bool) {
	vec := make([]float32, c.labels.Len())
	for i, label := range c.labels.labels {
		score, ok := scores[label]
		if !ok && label == c.labels.Sentinel() {
			score, ok = scores[AlternateSentinel]
		}
		if !ok || math.IsNaN(score) || math.IsInf(score, 0) {
			return nil, false
		}
		vec[i] = float32(score)
	}
	return vec, true
}

func (c *CachedAdapter) cacheKey(text string) string {
	h := sha1.New()
	_, _ = io.WriteString(h, c.modelID)
	_, _ = io.WriteString(h, "|")
	_, _ = io.WriteString(h, text)
	return hex.EncodeToString(h.Sum(nil))
}

func (c *CachedAdapter) getFromCache(key string) []float32 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.memCache[key]
}

func (c *CachedAdapter) storeInMemory(key string, vec []float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.memCache[key] = vec
}

func (c *CachedAdapter) loadFromDisk(key string) ([]float32, error) {
	if c.dir == "" {
		return nil, os.ErrNotExist
	}
	path := filepath.Join(c.dir, key+".bin")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(data) < 4 {
		return nil, fmt.Errorf("cache file too small: %s", path)
	}
	length := int(binary.LittleEndian.Uint32(data[:4]))
	data = data[4:]
	if len(data) != length*4 {
		return nil, fmt.Errorf("cache length mismatch: %s", path)
	}
	vec := make([]float32, length)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return vec, nil
}

func (c *CachedAdapter) saveToDisk(key string, vec []float32) error {
	if c.dir == "" {
		return nil
	}
	path := filepath.Join(c.dir, key+".bin")
	tmp := path + ".tmp"
	buf := make([]byte, 4+len(vec)*4)
	binary.LittleEndian.PutUint32(buf[:4], uint32(len(vec)))
	for i, v := range vec {
		binary.LittleEndian.PutUint32(buf[4+i*4:], math.Float32bits(v))
	}
	if err := os.WriteFile(tmp, buf, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
