package emotion

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	defaultConfigFile = "config.json"
	defaultOutputDir  = "output"
)

// ModelConfig describes the ONNX classifier and its tokenizer.
type ModelConfig struct {
	OrtLib        string `json:"ortLib" yaml:"ortLib"`
	ModelPath     string `json:"modelPath" yaml:"modelPath"`
	TokenizerPath string `json:"tokenizerPath" yaml:"tokenizerPath"`
	MaxSeqLen     int    `json:"maxSeqLen" yaml:"maxSeqLen"`
	InputIDs      string `json:"inputIds" yaml:"inputIds"`
	AttentionMask string `json:"attentionMask" yaml:"attentionMask"`
	OutputName    string `json:"outputName" yaml:"outputName"`
	// ApplySigmoid converts raw logits to probabilities. Disable it for
	// exports that already end in a sigmoid.
	ApplySigmoid *bool  `json:"applySigmoid,omitempty" yaml:"applySigmoid,omitempty"`
	CacheDir     string `json:"cacheDir" yaml:"cacheDir"`
	ModelID      string `json:"modelId" yaml:"modelId"`
}

// Sigmoid reports whether logits are passed through a sigmoid.
func (m ModelConfig) Sigmoid() bool {
	return m.ApplySigmoid == nil || *m.ApplySigmoid
}

// StatisticsConfig holds defaults for statistics runs.
type StatisticsConfig struct {
	GroupColumns []string  `json:"groupColumns" yaml:"groupColumns"`
	TargetColumn string    `json:"targetColumn" yaml:"targetColumn"`
	Bins         []float64 `json:"bins" yaml:"bins"`
	BinLabels    []string  `json:"binLabels" yaml:"binLabels"`
}

// Config aggregates runtime settings persisted to config.json.
type Config struct {
	OutputDir   string           `json:"outputDir" yaml:"outputDir"`
	ReplaceNone bool             `json:"replaceNone" yaml:"replaceNone"`
	Strategy    Strategy         `json:"strategy" yaml:"strategy"`
	TextColumn  string           `json:"textColumn" yaml:"textColumn"`
	WorkLog     *bool            `json:"workLog,omitempty" yaml:"workLog,omitempty"`
	Model       ModelConfig      `json:"model" yaml:"model"`
	Statistics  StatisticsConfig `json:"statistics" yaml:"statistics"`
}

// WorkLogEnabled reports whether operations are appended to the work log.
func (c Config) WorkLogEnabled() bool {
	return c.WorkLog == nil || *c.WorkLog
}

// Clone creates a deep copy of the configuration so callers can mutate safely.
func (c Config) Clone() Config {
	buf, _ := json.Marshal(c)
	var out Config
	_ = json.Unmarshal(buf, &out)
	return out
}

// ApplyDefaults populates zero values with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.OutputDir == "" {
		c.OutputDir = defaultOutputDir
	}
	if c.Strategy == "" {
		c.Strategy = StrategySkipEmpty
	}
	if c.Model.MaxSeqLen == 0 {
		c.Model.MaxSeqLen = 512
	}
	if c.Model.InputIDs == "" {
		c.Model.InputIDs = "input_ids"
	}
	if c.Model.AttentionMask == "" {
		c.Model.AttentionMask = "attention_mask"
	}
	if c.Model.OutputName == "" {
		c.Model.OutputName = "logits"
	}
	if c.Model.ModelID == "" && c.Model.ModelPath != "" {
		c.Model.ModelID = filepath.Base(c.Model.ModelPath)
	}
	if len(c.Statistics.Bins) == 0 {
		c.Statistics.Bins = []float64{0, 0.2, 0.4, 0.6, 0.8, 1.0}
		c.Statistics.BinLabels = []string{"0-0.2", "0.2-0.4", "0.4-0.6", "0.6-0.8", "0.8-1.0"}
	}
	if c.Statistics.TargetColumn == "" {
		c.Statistics.TargetColumn = ColumnIntensity
	}
}

// ApplyEnv overrides fields from EMOTION_* environment variables.
func (c *Config) ApplyEnv() {
	setString := func(key string, dst *string) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*dst = v
		}
	}
	setString("EMOTION_OUTPUT_DIR", &c.OutputDir)
	setString("EMOTION_MODEL_PATH", &c.Model.ModelPath)
	setString("EMOTION_TOKENIZER_PATH", &c.Model.TokenizerPath)
	setString("EMOTION_ORT_LIB", &c.Model.OrtLib)
	setString("EMOTION_CACHE_DIR", &c.Model.CacheDir)
	setString("EMOTION_TEXT_COLUMN", &c.TextColumn)
	if v := strings.TrimSpace(os.Getenv("EMOTION_STRATEGY")); v != "" {
		c.Strategy = Strategy(v)
	}
	if v, err := strconv.ParseBool(os.Getenv("EMOTION_REPLACE_NONE")); err == nil {
		c.ReplaceNone = v
	}
}

// LoadConfig loads configuration from the given path or the default
// config.json. Paths ending in .yaml or .yml are decoded as YAML.
func LoadConfig(path string) (Config, error) {
	if path == "" {
		path = defaultConfigFile
	}
	var cfg Config
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg.ApplyDefaults()
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if isYAML(path) {
		err = yaml.Unmarshal(data, &cfg)
	} else {
		err = json.Unmarshal(data, &cfg)
	}
	if err != nil {
		return cfg, fmt.Errorf("decode config: %w", err)
	}
	cfg.ApplyDefaults()
	if cfg.Model.CacheDir != "" {
		if err := os.MkdirAll(cfg.Model.CacheDir, 0o755); err != nil {
			return cfg, fmt.Errorf("create cache dir: %w", err)
		}
	}
	return cfg, nil
}

// SaveConfig persists configuration to disk.
func SaveConfig(path string, cfg Config) error {
	if path == "" {
		path = defaultConfigFile
	}
	tmp := path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	cfg.ApplyDefaults()
	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(cfg)
	} else {
		data, err = json.MarshalIndent(cfg, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp config: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename config: %w", err)
	}
	return nil
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}
