package commands

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ieee0824/linscore/gmm"
	"github.com/ieee0824/linscore/supervector"
)

func newStatsCmd(a *app) *cobra.Command {
	var inputFile string
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Accumulate sufficient statistics of feature frames against a UBM",
		Long: `Accumulate zero- and first-order statistics for each utterance.

The input file holds:
  ubm:        {weights, means, variances}
  utterances: [{name, frames: [[x_1 .. x_D], ...]}]

The output is a stats list that can be used in a score request.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var req StatsRequest
			if err := loadRequest(inputFile, &req); err != nil {
				return err
			}
			res, err := a.accumulate(&req)
			if err != nil {
				return err
			}
			format := a.v.GetString("format")
			if format == "table" {
				format = "yaml"
			}
			w, closeFn, err := openOutput(cmd.OutOrStdout(), a.v.GetString("output"))
			if err != nil {
				return err
			}
			if err := writeEncoded(w, res, format); err != nil {
				closeFn()
				return errors.Wrap(err, "write stats")
			}
			return closeFn()
		},
	}
	cmd.Flags().StringVarP(&inputFile, "file", "f", "", "frames file (YAML or JSON)")
	return cmd
}

func (a *app) accumulate(req *StatsRequest) (*StatsResult, error) {
	ubm, err := req.UBM.build()
	if err != nil {
		return nil, errors.Wrap(err, "ubm")
	}
	acc := gmm.NewAccumulator(ubm)
	res := &StatsResult{Stats: make([]StatsDoc, 0, len(req.Utterances))}
	for i, u := range req.Utterances {
		acc.Reset()
		if err := acc.AddBatch(u.Frames); err != nil {
			return nil, errors.Wrapf(err, "utterance %d (%s)", i, u.Name)
		}
		st, err := acc.Stats()
		if err != nil {
			return nil, errors.Wrapf(err, "utterance %d (%s)", i, u.Name)
		}
		sumPx, err := supervector.Unflatten(st.FirstOrderSupervector(), st.NumComponents(), st.Dim())
		if err != nil {
			return nil, err
		}
		res.Stats = append(res.Stats, StatsDoc{
			Name:  nameOr(u.Name, "stats", i),
			N:     st.OccupancyVector(),
			SumPx: sumPx,
			T:     st.Total(),
		})
		a.log.WithFields(logrus.Fields{"utterance": u.Name, "frames": acc.Frames()}).Debug("accumulated")
	}
	return res, nil
}
