package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/golang/geo/r2"
	"github.com/san-kum/armik/internal/kinematics"
	"github.com/san-kum/armik/internal/session"
	"github.com/san-kum/armik/internal/sim"
)

const (
	metadataFile = "metadata.json"
	framesFile   = "frames.csv"
	fixedColumns = 7 // frame,time,target_x,target_y,iterations,reachable,error
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
	ID            string             `json:"id"`
	Name          string             `json:"name"`
	Timestamp     time.Time          `json:"timestamp"`
	Lengths       []float64          `json:"lengths"`
	MaxIterations int                `json:"max_iterations"`
	Tolerance     float64            `json:"tolerance"`
	Trajectory    string             `json:"trajectory"`
	Frames        int                `json:"frames"`
	FPS           int                `json:"fps"`
	Metrics       map[string]float64 `json:"metrics"`
}

// Save writes meta and the frames of result under a fresh run id. ID,
// Timestamp, Frames and Metrics are filled in from the result.
func (s *Store) Save(meta RunMetadata, result *sim.Result) (string, error) {
	now := time.Now()
	meta.ID = fmt.Sprintf("%s_%d", meta.Name, now.UnixNano())
	meta.Timestamp = now
	meta.Frames = len(result.Frames)
	meta.Metrics = result.Metrics
	if meta.Lengths == nil {
		meta.Lengths = result.Lengths
	}

	runDir := filepath.Join(s.baseDir, meta.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	metaFile, err := os.Create(filepath.Join(runDir, metadataFile))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, framesFile))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	if err := writeFrames(w, result); err != nil {
		return "", err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}

	return meta.ID, nil
}

func writeFrames(w *csv.Writer, result *sim.Result) error {
	joints := len(result.Lengths) + 1
	header := []string{"frame", "time", "target_x", "target_y", "iterations", "reachable", "error"}
	for i := 0; i < joints; i++ {
		header = append(header, fmt.Sprintf("p%d_x", i), fmt.Sprintf("p%d_y", i))
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for i, f := range result.Frames {
		row := []string{
			strconv.Itoa(f.Index),
			formatFloat(result.Times[i]),
			formatFloat(f.Target.X),
			formatFloat(f.Target.Y),
			strconv.Itoa(f.Stats.Iterations),
			strconv.FormatBool(f.Stats.Reachable),
			formatFloat(f.Stats.Error),
		}
		for _, v := range f.Pose.Flatten() {
			row = append(row, formatFloat(v))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

// List returns stored runs, oldest first. Unreadable entries are skipped.
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
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

// LoadFrames reads back the per-frame records of a run. Stats.Converged is
// not stored and is left false.
func (s *Store) LoadFrames(runID string) ([]session.Frame, []float64, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, framesFile))
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, err
	}

	if len(records) < 2 {
		return []session.Frame{}, []float64{}, nil
	}

	frames := make([]session.Frame, 0, len(records)-1)
	times := make([]float64, 0, len(records)-1)

	for line, record := range records[1:] {
		f, t, err := parseFrame(record)
		if err != nil {
			return nil, nil, fmt.Errorf("%s line %d: %w", framesFile, line+2, err)
		}
		frames = append(frames, f)
		times = append(times, t)
	}

	return frames, times, nil
}

func parseFrame(record []string) (session.Frame, float64, error) {
	if len(record) < fixedColumns {
		return session.Frame{}, 0, fmt.Errorf("expected at least %d columns, got %d", fixedColumns, len(record))
	}

	index, err := strconv.Atoi(record[0])
	if err != nil {
		return session.Frame{}, 0, err
	}
	iterations, err := strconv.Atoi(record[4])
	if err != nil {
		return session.Frame{}, 0, err
	}
	reachable, err := strconv.ParseBool(record[5])
	if err != nil {
		return session.Frame{}, 0, err
	}

	floats := make([]float64, 0, len(record)-1)
	for _, col := range append([]string{record[1], record[2], record[3], record[6]}, record[fixedColumns:]...) {
		v, err := strconv.ParseFloat(col, 64)
		if err != nil {
			return session.Frame{}, 0, err
		}
		floats = append(floats, v)
	}

	pose := kinematics.Unflatten(floats[4:])
	f := session.Frame{
		Index:  index,
		Target: r2.Point{X: floats[1], Y: floats[2]},
		Pose:   pose,
		Stats: kinematics.Stats{
			Iterations: iterations,
			Reachable:  reachable,
			Error:      floats[3],
		},
	}
	if len(pose) > 0 {
		f.Base = pose[0]
	}
	return f, floats[0], nil
}
