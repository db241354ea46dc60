package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/wordsync/api/internal/config"
	"github.com/wordsync/api/internal/conflict"
	"github.com/wordsync/api/internal/model"
	"gopkg.in/yaml.v3"
)

// Issue types reported by Audit.
const (
	IssueEmptyMeaning         = "empty_meaning"
	IssueUnsortableTime       = "unsortable_time"
	IssueSyncedBehind         = "synced_behind"
	IssueCreatedAfterModified = "created_after_modified"
	IssueUntrimmedName        = "untrimmed_name"
)

// ErrIssuesFound is returned by audit --strict when the report is not clean.
var ErrIssuesFound = errors.New("audit found issues")

var auditFormats = []string{"text", "json", "yaml"}

type Issue struct {
	Word    string `json:"word" yaml:"word"`
	Type    string `json:"type" yaml:"type"`
	Details string `json:"details" yaml:"details"`
}

type AuditReport struct {
	Total  int            `json:"total" yaml:"total"`
	Counts map[string]int `json:"counts" yaml:"counts"`
	Issues []Issue        `json:"issues" yaml:"issues"`
}

// NewAuditCommand creates the audit command.
func NewAuditCommand(rootOpts *RootOptions, open Opener) *cobra.Command {
	var (
		format string
		layout string
		strict bool
	)

	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Report records that break sync assumptions",
		Long: `Scan every record and report:

  empty_meaning           live record without a Korean meaning
  unsortable_time         modifiedTime not in the timestamp layout, so it
                          does not order correctly against other records
  synced_behind           syncedTime missing or older than modifiedTime
  created_after_modified  createdTime newer than modifiedTime
  untrimmed_name          name with leading or trailing whitespace`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			for _, f := range auditFormats {
				if f == format {
					return nil
				}
			}
			return fmt.Errorf("invalid format %q: must be one of %v", format, auditFormats)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd, open, func(env *Env) error {
				words, err := env.Engine.PullAll(cmd.Context())
				if err != nil {
					return err
				}
				report := Audit(words, layout)
				verbosef(rootOpts, cmd.ErrOrStderr(), "audited %d records", report.Total)
				if err := writeReport(cmd.OutOrStdout(), format, report); err != nil {
					return err
				}
				if strict && len(report.Issues) > 0 {
					return fmt.Errorf("%w: %d", ErrIssuesFound, len(report.Issues))
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&format, "format", "text", "output format (text|json|yaml)")
	cmd.Flags().StringVar(&layout, "layout", config.DefaultServerTimeLayout, "expected timestamp layout")
	cmd.Flags().BoolVar(&strict, "strict", false, "exit non-zero when issues are found")

	return cmd
}

// Audit checks every record. Issues are ordered by word, then type.
func Audit(words []model.Word, layout string) AuditReport {
	report := AuditReport{
		Total:  len(words),
		Counts: map[string]int{},
		Issues: []Issue{},
	}
	add := func(word, kind, details string) {
		report.Issues = append(report.Issues, Issue{Word: word, Type: kind, Details: details})
		report.Counts[kind]++
	}

	for _, w := range words {
		if !w.IsDeleted && strings.TrimSpace(w.MeaningKr) == "" {
			add(w.Name, IssueEmptyMeaning, "meaningKr is empty")
		}
		if _, err := time.Parse(layout, w.ModifiedTime); err != nil {
			add(w.Name, IssueUnsortableTime, fmt.Sprintf("modifiedTime %q does not match %q", w.ModifiedTime, layout))
		}
		switch {
		case w.SyncedTime == nil:
			add(w.Name, IssueSyncedBehind, "syncedTime is null")
		case conflict.Later(w.ModifiedTime, *w.SyncedTime):
			add(w.Name, IssueSyncedBehind, fmt.Sprintf("syncedTime %s < modifiedTime %s", *w.SyncedTime, w.ModifiedTime))
		}
		if w.CreatedTime != nil && conflict.Later(*w.CreatedTime, w.ModifiedTime) {
			add(w.Name, IssueCreatedAfterModified, fmt.Sprintf("createdTime %s > modifiedTime %s", *w.CreatedTime, w.ModifiedTime))
		}
		if w.Name != strings.TrimSpace(w.Name) {
			add(w.Name, IssueUntrimmedName, fmt.Sprintf("name %q", w.Name))
		}
	}

	sort.SliceStable(report.Issues, func(i, j int) bool {
		if report.Issues[i].Word != report.Issues[j].Word {
			return report.Issues[i].Word < report.Issues[j].Word
		}
		return report.Issues[i].Type < report.Issues[j].Type
	})
	return report
}

func writeReport(w io.Writer, format string, report AuditReport) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(report); err != nil {
			return err
		}
		return enc.Close()
	default:
		return writeReportText(w, report)
	}
}

func writeReportText(w io.Writer, report AuditReport) error {
	fmt.Fprintf(w, "Audited %d records, %d issues\n", report.Total, len(report.Issues))
	if len(report.Issues) == 0 {
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "WORD\tTYPE\tDETAILS")
	for _, issue := range report.Issues {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", issue.Word, issue.Type, issue.Details)
	}
	return tw.Flush()
}
