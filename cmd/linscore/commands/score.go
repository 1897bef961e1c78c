package commands

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/mat"

	"github.com/ieee0824/linscore"
	"github.com/ieee0824/linscore/linear"
)

func newScoreCmd(a *app) *cobra.Command {
	var inputFile string
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score models against utterance statistics",
		Long: `Score every model in the request against every statistics object.

The request file holds:
  ubm:     {weights, means, variances}
  models:  [{name, means[, weights, variances]}] or [{name, mean_supervector}]
  stats:   [{name, n, sum_px, t}]
  offsets: optional, one channel offset supervector (or null) per stats entry`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var req ScoreRequest
			if err := loadRequest(inputFile, &req); err != nil {
				return err
			}
			res, err := a.score(&req)
			if err != nil {
				return err
			}
			w, closeFn, err := openOutput(cmd.OutOrStdout(), a.v.GetString("output"))
			if err != nil {
				return err
			}
			if err := writeScores(w, res, a.v.GetString("format")); err != nil {
				closeFn()
				return errors.Wrap(err, "write scores")
			}
			return closeFn()
		},
	}

	f := cmd.Flags()
	f.StringVarP(&inputFile, "file", "f", "", "request file (YAML or JSON)")
	f.Bool("normalize", false, "divide each score by the utterance's total occupancy")
	f.Float64("offset-weight", linear.DefaultOffsetWeight, "weight applied to channel offsets")
	f.Int("workers", 0, "number of scoring goroutines (0: GOMAXPROCS)")
	f.Float64("strict-total", -1, "reject stats whose T differs from sum(n) by more than this (negative: off)")
	mustBind(a.v.BindPFlag("normalize", f.Lookup("normalize")))
	mustBind(a.v.BindPFlag("offset_weight", f.Lookup("offset-weight")))
	mustBind(a.v.BindPFlag("workers", f.Lookup("workers")))
	mustBind(a.v.BindPFlag("strict_total", f.Lookup("strict-total")))
	return cmd
}

func (a *app) score(req *ScoreRequest) (*ScoreResult, error) {
	ubm, err := req.UBM.build()
	if err != nil {
		return nil, errors.Wrap(err, "ubm")
	}
	stats, err := req.stats()
	if err != nil {
		return nil, err
	}
	full, err := req.fullModels()
	if err != nil {
		return nil, err
	}

	normalize := a.v.GetBool("normalize")
	opts := []linscore.Option{
		linear.WithWorkers(a.v.GetInt("workers")),
		linear.WithOffsetWeight(a.v.GetFloat64("offset_weight")),
		linear.WithLogger(a.log),
	}
	if tol := a.v.GetFloat64("strict_total"); tol >= 0 {
		opts = append(opts, linear.WithStrictTotal(tol))
	}

	var scores *mat.Dense
	if full {
		models, err := req.models(ubm)
		if err != nil {
			return nil, err
		}
		scores, err = linscore.ScoreModels(models, ubm, stats, req.Offsets, normalize, opts...)
		if err != nil {
			return nil, errors.Wrap(err, "score")
		}
	} else {
		opts = append(opts, linear.WithShape(ubm.Shape()))
		scores, err = linscore.ScoreSupervectors(req.supervectors(), ubm.MeanSupervector(), ubm.VarianceSupervector(),
			stats, req.Offsets, normalize, opts...)
		if err != nil {
			return nil, errors.Wrap(err, "score")
		}
	}

	res := &ScoreResult{
		Models:     req.modelNames(),
		Stats:      req.statsNames(),
		Normalized: normalize,
		Scores:     make([][]float64, len(req.Models)),
	}
	for i := range res.Scores {
		res.Scores[i] = make([]float64, len(req.Stats))
		if !scores.IsEmpty() {
			mat.Row(res.Scores[i], i, scores)
		}
	}
	a.log.WithFields(logrus.Fields{
		"models": len(res.Models),
		"stats":  len(res.Stats),
		"full":   full,
	}).Info("scored")
	return res, nil
}
