package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultTStart   = 0.0
	DefaultTStop    = 5.0
	DefaultPoints   = 500
	DefaultAmp      = 0.2
	DefaultLambdaA  = 5.0
	DefaultRiseTime = 0.3
	DefaultIterStop = 50
	DefaultJTStop   = 1e-3
)

type Config struct {
	Model      string      `yaml:"model"`
	Functional string      `yaml:"functional"`
	PropMethod string      `yaml:"prop_method"`
	Tlist      TlistConfig `yaml:"tlist"`
	Pulse      PulseConfig `yaml:"pulse"`
	IterStop   int         `yaml:"iter_stop"`
	JTStop     float64     `yaml:"jt_stop"`
	UseThreads bool        `yaml:"use_threads"`
	Verbose    bool        `yaml:"verbose"`
	OutputDir  string      `yaml:"output_dir"`
}

type TlistConfig struct {
	Start  float64 `yaml:"start"`
	Stop   float64 `yaml:"stop"`
	Points int     `yaml:"points"`
}

type PulseConfig struct {
	Amplitude float64 `yaml:"amplitude"`
	LambdaA   float64 `yaml:"lambda_a"`
	RiseTime  float64 `yaml:"rise_time"`

	// Bound enables the tanh parametrisation |ε| < Bound when positive.
	Bound float64 `yaml:"bound"`
}

func DefaultConfig() *Config {
	return &Config{
		Model:      "tls",
		Functional: "square_modulus",
		PropMethod: "expm",
		Tlist: TlistConfig{
			Start:  DefaultTStart,
			Stop:   DefaultTStop,
			Points: DefaultPoints,
		},
		Pulse: PulseConfig{
			Amplitude: DefaultAmp,
			LambdaA:   DefaultLambdaA,
			RiseTime:  DefaultRiseTime,
		},
		IterStop: DefaultIterStop,
		JTStop:   DefaultJTStop,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if c.Tlist.Points < 2 {
		return fmt.Errorf("config: tlist needs at least 2 points, got %d", c.Tlist.Points)
	}
	if c.Tlist.Stop <= c.Tlist.Start {
		return fmt.Errorf("config: tlist stop %g must exceed start %g", c.Tlist.Stop, c.Tlist.Start)
	}
	if c.Pulse.LambdaA <= 0 {
		return fmt.Errorf("config: lambda_a must be positive, got %g", c.Pulse.LambdaA)
	}
	if c.IterStop < 1 {
		return fmt.Errorf("config: iter_stop must be at least 1, got %d", c.IterStop)
	}
	return nil
}

// Grid materialises the equally spaced time grid.
func (c *Config) Grid() []float64 {
	n := c.Tlist.Points
	tlist := make([]float64, n)
	dt := (c.Tlist.Stop - c.Tlist.Start) / float64(n-1)
	for i := range tlist {
		tlist[i] = c.Tlist.Start + float64(i)*dt
	}
	tlist[n-1] = c.Tlist.Stop
	return tlist
}
