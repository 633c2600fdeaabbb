package loader

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"strata/internal/market"

	"gopkg.in/yaml.v3"
)

// TimeframeProfile 描述单个分析周期的结构参数。
type TimeframeProfile struct {
	Interval       string `yaml:"interval"`
	Lookback       int    `yaml:"lookback,omitempty"`
	FractalWidth   int    `yaml:"fractal_width,omitempty"`
	SeriesCapacity int    `yaml:"series_capacity,omitempty"`
}

// ProfilesFile 对应 profiles.yaml 的整体结构。
type ProfilesFile struct {
	Timeframes []TimeframeProfile `yaml:"timeframes"`
}

// ProfileLoader 负责读取（并在缺失时生成）profiles.yaml。
type ProfileLoader struct {
	path string
	mu   sync.RWMutex
}

func NewProfileLoader(path string) *ProfileLoader {
	return &ProfileLoader{path: path}
}

// Load 解析 profiles 文件并校验每个周期标签。
func (l *ProfileLoader) Load() ([]TimeframeProfile, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	raw, err := os.ReadFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("read profiles: %w", err)
	}
	var file ProfilesFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse profiles: %w", err)
	}
	if len(file.Timeframes) == 0 {
		return nil, fmt.Errorf("profiles: no timeframes configured")
	}
	seen := make(map[string]bool, len(file.Timeframes))
	for i := range file.Timeframes {
		tf := &file.Timeframes[i]
		tf.Interval = strings.ToLower(strings.TrimSpace(tf.Interval))
		if _, err := market.IntervalSeconds(tf.Interval); err != nil {
			return nil, fmt.Errorf("profiles: %w", err)
		}
		if seen[tf.Interval] {
			return nil, fmt.Errorf("profiles: duplicate timeframe %s", tf.Interval)
		}
		seen[tf.Interval] = true
	}
	return file.Timeframes, nil
}

// Save 覆盖写入整份 profiles，写前做与 Load 相同的周期校验。
func (l *ProfileLoader) Save(profiles []TimeframeProfile) error {
	if len(profiles) == 0 {
		return fmt.Errorf("profiles: no timeframes configured")
	}
	seen := make(map[string]bool, len(profiles))
	for i := range profiles {
		profiles[i].Interval = strings.ToLower(strings.TrimSpace(profiles[i].Interval))
		if _, err := market.IntervalSeconds(profiles[i].Interval); err != nil {
			return fmt.Errorf("profiles: %w", err)
		}
		if seen[profiles[i].Interval] {
			return fmt.Errorf("profiles: duplicate timeframe %s", profiles[i].Interval)
		}
		seen[profiles[i].Interval] = true
	}
	raw, err := yaml.Marshal(&ProfilesFile{Timeframes: profiles})
	if err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return os.WriteFile(l.path, raw, 0o644)
}

// WriteDefault 在文件缺失时生成一份默认 profiles.yaml（存在则不动）。
func (l *ProfileLoader) WriteDefault() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, err := os.Stat(l.path); err == nil {
		return nil
	}
	file := ProfilesFile{Timeframes: []TimeframeProfile{
		{Interval: "1h", Lookback: 100, FractalWidth: 4, SeriesCapacity: 50},
		{Interval: "4h", Lookback: 100, FractalWidth: 4, SeriesCapacity: 50},
		{Interval: "1d", Lookback: 100, FractalWidth: 4, SeriesCapacity: 50},
	}}
	raw, err := yaml.Marshal(&file)
	if err != nil {
		return err
	}
	return os.WriteFile(l.path, raw, 0o644)
}
