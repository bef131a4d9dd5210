package main

import (
	"github.com/spf13/cobra"

	"github.com/tdarei/starisdons-sub013/pkg/stats"
)

type describeReport struct {
	DatasetID string          `json:"datasetId" yaml:"datasetId"`
	Records   int             `json:"records" yaml:"records"`
	Fields    []stats.Summary `json:"fields" yaml:"fields"`
}

func newDescribeCmd(a *app) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "describe",
		Short: "Infer the schema of a dataset and summarize its fields",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ds, err := a.load(file)
			if err != nil {
				return err
			}
			return a.print(describeReport{
				DatasetID: ds.ID,
				Records:   ds.Len(),
				Fields:    stats.Describe(ds),
			})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "Dataset file (.csv, .json, .yaml)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
