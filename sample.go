package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/orayew2002/rollbook/domain"
	"github.com/orayew2002/rollbook/sample"
)

const defaultSampleStudents = 25

var (
	sampleDir      string
	sampleStudents int
)

func newSampleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Generate example roster, attendance and day workbooks",
		Args:  cobra.NoArgs,
		RunE:  runSampleCmd,
	}

	cmd.Flags().StringVar(&sampleDir, "dir", "sample", "output directory")
	cmd.Flags().IntVar(&sampleStudents, "students", defaultSampleStudents, "number of students")

	return cmd
}

func runSampleCmd(cmd *cobra.Command, _ []string) error {
	if sampleStudents < 1 {
		return fmt.Errorf("--students must be at least 1")
	}
	if err := os.MkdirAll(sampleDir, 0o755); err != nil {
		return fmt.Errorf("%w: create %s: %v", domain.ErrIO, sampleDir, err)
	}

	files, err := sample.Generate(sampleDir, sampleStudents)
	if err != nil {
		return err
	}

	rows := sample.Rows(sampleStudents)
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "roster:    ", files.Roster)
	fmt.Fprintln(out, "attendance:", files.Attendance)
	for _, d := range domain.Days {
		fmt.Fprintf(out, "%-11s %s\n", string(d)+":", files.Days[d])
	}
	fmt.Fprintf(out, "\ntry: rollbook reconcile --attendance %s --attendance-rows %s --roster %s --roster-rows %s\n",
		files.Attendance, rows, files.Roster, rows)

	return nil
}
