package store

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/san-kum/krotov"
	"github.com/san-kum/krotov/pulse"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID         string    `json:"id"`
	Model      string    `json:"model"`
	Timestamp  time.Time `json:"timestamp"`
	Functional string    `json:"functional"`
	PropMethod string    `json:"prop_method"`
	IterStart  int       `json:"iter_start"`
	IterStop   int       `json:"iter_stop"`
	Iter       int       `json:"iter"`
	JT         float64   `json:"j_t"`
	Converged  bool      `json:"converged"`
	Message    string    `json:"message"`
}

// Save writes one finished optimisation as a run directory holding
// metadata.json and pulses.csv. The CSV rows are the tlist midpoints
// with guess and optimised pulse values per control.
func (s *Store) Save(model, functional, propMethod string, controls []string, result *krotov.Result) (string, error) {
	runID := fmt.Sprintf("%s_%d", model, time.Now().Unix())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:         runID,
		Model:      model,
		Timestamp:  time.Now(),
		Functional: functional,
		PropMethod: propMethod,
		IterStart:  result.IterStart,
		IterStop:   result.IterStop,
		Iter:       result.Iter,
		JT:         result.JT,
		Converged:  result.Converged,
		Message:    result.Message,
	}

	metaPath := filepath.Join(runDir, "metadata.json")
	metaFile, err := os.Create(metaPath)
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvPath := filepath.Join(runDir, "pulses.csv")
	csvFile, err := os.Create(csvPath)
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	defer w.Flush()

	header := []string{"time"}
	for _, name := range controls {
		header = append(header, "guess_"+name, "opt_"+name)
	}
	if err := w.Write(header); err != nil {
		return "", err
	}

	mids := pulse.Midpoints(result.Tlist)
	for n, t := range mids {
		row := []string{strconv.FormatFloat(t, 'f', 6, 64)}
		for l := range controls {
			row = append(row,
				strconv.FormatFloat(result.GuessControls[l][n], 'g', -1, 64),
				strconv.FormatFloat(result.OptimizedControls[l][n], 'g', -1, 64))
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}

	return runID, nil
}

func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		metaPath := filepath.Join(s.baseDir, entry.Name(), "metadata.json")
		data, err := os.ReadFile(metaPath)
		if err != nil {
			continue
		}

		var meta RunMetadata
		if err := json.Unmarshal(data, &meta); err != nil {
			continue
		}

		runs = append(runs, meta)
	}

	return runs, nil
}

// LoadPulses reads a saved run's pulses.csv back: midpoint times plus
// one column per header entry after "time".
func (s *Store) LoadPulses(runID string) (times []float64, columns map[string][]float64, err error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, "pulses.csv"))
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(records) < 2 {
		return nil, nil, fmt.Errorf("store: run %q has no pulse data", runID)
	}

	header := records[0]
	columns = make(map[string][]float64, len(header)-1)
	for _, rec := range records[1:] {
		t, err := strconv.ParseFloat(rec[0], 64)
		if err != nil {
			return nil, nil, err
		}
		times = append(times, t)
		for i := 1; i < len(header) && i < len(rec); i++ {
			v, err := strconv.ParseFloat(rec[i], 64)
			if err != nil {
				return nil, nil, err
			}
			columns[header[i]] = append(columns[header[i]], v)
		}
	}
	return times, columns, nil
}
