package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/orayew2002/rollbook/config"
	"github.com/orayew2002/rollbook/processor"
	"github.com/orayew2002/rollbook/roster"
)

var (
	reconcileAttendance     string
	reconcileAttendanceRows string
	reconcileAttendanceCol  string
	reconcileRoster         string
	reconcileRosterRows     string
	reconcileRosterCol      string
	reconcileOutput         string
)

func newReconcileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Mark each roster row present or absent from an attendance sheet",
		Args:  cobra.NoArgs,
		RunE:  runReconcileCmd,
	}

	cmd.Flags().StringVar(&reconcileAttendance, "attendance", "", "attendance workbook (xlsx or xls)")
	cmd.Flags().StringVar(&reconcileAttendanceRows, "attendance-rows", "", "attendance rows, e.g. 3-38")
	cmd.Flags().StringVar(&reconcileAttendanceCol, "attendance-col", config.DefaultAttendanceCol, "attendance identifier column")
	cmd.Flags().StringVar(&reconcileRoster, "roster", "", "main roster workbook (xlsx)")
	cmd.Flags().StringVar(&reconcileRosterRows, "roster-rows", "", "roster rows, e.g. 3-38")
	cmd.Flags().StringVar(&reconcileRosterCol, "roster-col", config.DefaultRosterCol, "roster identifier column")
	cmd.Flags().StringVar(&reconcileOutput, "output", "reconciled.xlsx", "where to save the annotated roster")

	for _, name := range []string{"attendance", "attendance-rows", "roster", "roster-rows"} {
		_ = cmd.MarkFlagRequired(name)
	}

	return cmd
}

func runReconcileCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := loadFileConfig()
	if err != nil {
		return err
	}
	applyStringConfig(cmd, "attendance-col", &reconcileAttendanceCol, fileCfg.Reconcile.AttendanceCol)
	applyStringConfig(cmd, "roster-col", &reconcileRosterCol, fileCfg.Reconcile.RosterCol)

	att, err := roster.ParseSelection(reconcileAttendanceRows, strings.ToUpper(strings.TrimSpace(reconcileAttendanceCol)))
	if err != nil {
		return fmt.Errorf("attendance: %w", err)
	}
	ros, err := roster.ParseSelection(reconcileRosterRows, strings.ToUpper(strings.TrimSpace(reconcileRosterCol)))
	if err != nil {
		return fmt.Errorf("roster: %w", err)
	}

	rec, err := processor.Process(processor.Options{
		AttendancePath: reconcileAttendance,
		Attendance:     att,
		RosterPath:     reconcileRoster,
		Roster:         ros,
	}, logger)
	if err != nil {
		return err
	}

	if err := rec.Export(reconcileOutput); err != nil {
		if derr := rec.Discard(); derr != nil {
			logger.Printf("warning: %v", derr)
		}
		return err
	}

	res := rec.Result
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Total students in the attendance file: %d\n", res.TotalInAttendance)
	fmt.Fprintf(out, "Present: %d\n", res.Present)
	fmt.Fprintf(out, "Absent: %d\n", res.Absent)
	if d := res.Discrepancy(); d != 0 {
		fmt.Fprintf(out, "Discrepancy (attendance minus present): %d\n", d)
	}
	fmt.Fprintln(out, "saved:", reconcileOutput)

	return nil
}
