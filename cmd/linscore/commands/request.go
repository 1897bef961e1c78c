package commands

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/ieee0824/linscore/errdefs"
	"github.com/ieee0824/linscore/gmm"
)

// GMMDoc is a GMM as written in request files.
type GMMDoc struct {
	Weights   []float64   `yaml:"weights" json:"weights"`
	Means     [][]float64 `yaml:"means" json:"means"`
	Variances [][]float64 `yaml:"variances" json:"variances"`
}

// ModelDoc is a speaker model given either as a full GMM (means, with
// optional weights and variances) or as a mean supervector.
type ModelDoc struct {
	Name            string      `yaml:"name" json:"name"`
	Weights         []float64   `yaml:"weights,omitempty" json:"weights,omitempty"`
	Means           [][]float64 `yaml:"means,omitempty" json:"means,omitempty"`
	Variances       [][]float64 `yaml:"variances,omitempty" json:"variances,omitempty"`
	MeanSupervector []float64   `yaml:"mean_supervector,omitempty" json:"mean_supervector,omitempty"`
}

// StatsDoc is the sufficient statistics of one utterance.
type StatsDoc struct {
	Name  string      `yaml:"name" json:"name"`
	N     []float64   `yaml:"n" json:"n"`
	SumPx [][]float64 `yaml:"sum_px" json:"sum_px"`
	T     float64     `yaml:"t" json:"t"`
}

// ScoreRequest is the input of the score command. Offsets is empty or has
// one entry per statistics object; null entries mean no offset.
type ScoreRequest struct {
	UBM     GMMDoc      `yaml:"ubm" json:"ubm"`
	Models  []ModelDoc  `yaml:"models" json:"models"`
	Stats   []StatsDoc  `yaml:"stats" json:"stats"`
	Offsets [][]float64 `yaml:"offsets,omitempty" json:"offsets,omitempty"`
}

// UtteranceDoc is a named sequence of feature frames.
type UtteranceDoc struct {
	Name   string      `yaml:"name" json:"name"`
	Frames [][]float64 `yaml:"frames" json:"frames"`
}

// StatsRequest is the input of the stats command.
type StatsRequest struct {
	UBM        GMMDoc         `yaml:"ubm" json:"ubm"`
	Utterances []UtteranceDoc `yaml:"utterances" json:"utterances"`
}

// loadRequest reads a YAML or JSON file into v. The format follows the file
// extension; anything but .json is parsed as YAML.
func loadRequest(path string, v any) error {
	if path == "" {
		return errors.New("input file is required, use -f flag")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "read request")
	}
	return parseRequest(data, path, v)
}

func parseRequest(data []byte, filename string, v any) error {
	if strings.ToLower(filepath.Ext(filename)) == ".json" {
		if err := json.Unmarshal(data, v); err != nil {
			return errors.Wrap(err, "parse JSON")
		}
		return nil
	}
	if err := yaml.Unmarshal(data, v); err != nil {
		return errors.Wrap(err, "parse YAML")
	}
	return nil
}

// build converts the document into a GMM.
func (d GMMDoc) build() (*gmm.GMM, error) {
	return gmm.New(d.Weights, d.Means, d.Variances)
}

// fullModels reports whether the models are given as GMMs. Mixing GMMs and
// supervectors in one request is rejected.
func (r *ScoreRequest) fullModels() (bool, error) {
	full, sv := 0, 0
	for i, m := range r.Models {
		switch {
		case m.Means != nil && m.MeanSupervector != nil:
			return false, errdefs.Valuef("model %d (%s): both means and mean_supervector given", i, m.Name)
		case m.Means != nil:
			full++
		case m.MeanSupervector != nil:
			sv++
		default:
			return false, errdefs.Valuef("model %d (%s): no means", i, m.Name)
		}
	}
	if full > 0 && sv > 0 {
		return false, errdefs.Valuef("models mix full GMMs and mean supervectors")
	}
	return full > 0, nil
}

// models builds the model GMMs. Missing weights and variances default to
// the UBM's; they do not affect linear scores.
func (r *ScoreRequest) models(ubm *gmm.GMM) ([]*gmm.GMM, error) {
	out := make([]*gmm.GMM, len(r.Models))
	for i, m := range r.Models {
		weights, variances := m.Weights, m.Variances
		if weights == nil {
			weights = ubm.Weights()
		}
		if variances == nil {
			variances = ubm.Variances()
		}
		g, err := gmm.New(weights, m.Means, variances)
		if err != nil {
			return nil, errors.Wrapf(err, "model %d (%s)", i, m.Name)
		}
		out[i] = g
	}
	return out, nil
}

func (r *ScoreRequest) supervectors() [][]float64 {
	out := make([][]float64, len(r.Models))
	for i, m := range r.Models {
		out[i] = m.MeanSupervector
	}
	return out
}

func (r *ScoreRequest) stats() ([]*gmm.Stats, error) {
	out := make([]*gmm.Stats, len(r.Stats))
	for i, s := range r.Stats {
		st, err := gmm.NewStats(s.N, s.SumPx, s.T)
		if err != nil {
			return nil, errors.Wrapf(err, "stats %d (%s)", i, s.Name)
		}
		out[i] = st
	}
	return out, nil
}

func (r *ScoreRequest) modelNames() []string {
	names := make([]string, len(r.Models))
	for i, m := range r.Models {
		names[i] = nameOr(m.Name, "model", i)
	}
	return names
}

func (r *ScoreRequest) statsNames() []string {
	names := make([]string, len(r.Stats))
	for i, s := range r.Stats {
		names[i] = nameOr(s.Name, "stats", i)
	}
	return names
}
