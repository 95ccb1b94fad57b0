package config

var Presets = map[string]map[string]*Config{
	"tls": {
		"transfer": {
			Model: "tls", Functional: "square_modulus", PropMethod: "expm",
			Tlist: TlistConfig{Start: 0, Stop: 5, Points: 500},
			Pulse: PulseConfig{Amplitude: 0.2, LambdaA: 5, RiseTime: 0.3},
			IterStop: 50, JTStop: 1e-3,
		},
		"bounded": {
			Model: "tls", Functional: "square_modulus", PropMethod: "expm",
			Tlist: TlistConfig{Start: 0, Stop: 5, Points: 500},
			Pulse: PulseConfig{Amplitude: 0.2, LambdaA: 5, RiseTime: 0.3, Bound: 1.0},
			IterStop: 50, JTStop: 1e-3,
		},
		"phase": {
			Model: "tls", Functional: "overlap", PropMethod: "expm",
			Tlist: TlistConfig{Start: 0, Stop: 5, Points: 500},
			Pulse: PulseConfig{Amplitude: 0.2, LambdaA: 5, RiseTime: 0.3},
			IterStop: 100, JTStop: 1e-3,
		},
		"coarse": {
			Model: "tls", Functional: "square_modulus", PropMethod: "rk4",
			Tlist: TlistConfig{Start: 0, Stop: 5, Points: 100},
			Pulse: PulseConfig{Amplitude: 0.2, LambdaA: 5, RiseTime: 0.3},
			IterStop: 50, JTStop: 1e-2,
		},
	},
}

func GetPreset(model, preset string) *Config {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	cfg, ok := modelPresets[preset]
	if !ok {
		return nil
	}
	return cfg
}

func ListPresets(model string) []string {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(modelPresets))
	for name := range modelPresets {
		names = append(names, name)
	}
	return names
}
