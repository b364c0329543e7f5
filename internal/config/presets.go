package config

var Presets = map[string]map[string]*Config{
	KindCR: {
		"weak": {
			Kind: KindCR, TimeUnit: DefaultTimeUnit,
			Times: linspace(0.5, 20, 40), Qubits: []int{0}, Shots: 2048,
			Guess: []float64{0.05, 0.0, 0.0},
			Lower: []float64{-2, -2, -2}, Upper: []float64{2, 2, 2},
		},
		"strong": {
			Kind: KindCR, TimeUnit: DefaultTimeUnit,
			Times: linspace(0.1, 4, 40), Qubits: []int{0}, Shots: 2048,
			Guess: []float64{0.5, 0.0, 0.0},
			Lower: []float64{-10, -10, -10}, Upper: []float64{10, 10, 10},
		},
		"pair": {
			Kind: KindCR, TimeUnit: DefaultTimeUnit,
			Times: linspace(0.5, 10, 20), Qubits: []int{0, 1}, Shots: 1024,
			Guess: []float64{0.1, 0.0, 0.0},
			Lower: []float64{-10, -10, -10}, Upper: []float64{10, 10, 10},
		},
	},
	KindZZ: {
		"slow": {
			Kind: KindZZ, TimeUnit: DefaultTimeUnit,
			Times: linspace(1, 100, 50), Qubits: []int{0}, Spectators: []int{1}, Shots: 2048,
			Guess: []float64{0.5, 0.01, 0.0, 0.5},
			Lower: []float64{0, 0, -4, 0}, Upper: []float64{1, 1, 4, 1},
		},
		"fast": {
			Kind: KindZZ, TimeUnit: DefaultTimeUnit,
			Times: linspace(0.5, 10, 20), Qubits: []int{0}, Spectators: []int{1}, Shots: 1024,
			Guess: []float64{0.5, 0.1, 0.0, 0.5},
			Lower: []float64{0, 0, -4, 0}, Upper: []float64{1, 5, 4, 1},
		},
	},
}

func GetPreset(kind, preset string) *Config {
	kindPresets, ok := Presets[kind]
	if !ok {
		return nil
	}
	cfg, ok := kindPresets[preset]
	if !ok {
		return nil
	}
	return cfg
}

func ListPresets(kind string) []string {
	kindPresets, ok := Presets[kind]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(kindPresets))
	for name := range kindPresets {
		names = append(names, name)
	}
	return names
}
