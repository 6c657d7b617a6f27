package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/JonMunkholm/bulkimport/internal/core"
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printFileResult writes a human-readable summary of one file's import.
// Row numbers are 1-based over the non-blank data rows.
func printFileResult(w io.Writer, r fileResult) {
	if r.err != nil {
		fmt.Fprintf(w, "%s: %s\n\n", r.File, core.FormatUserError(r.err))
		return
	}

	rep := r.Report
	fmt.Fprintf(w, "%s (%s, run %s)\n", r.File, rep.Kind, rep.RunID)
	if r.Profile != "" {
		fmt.Fprintf(w, "  profile: %s\n", r.Profile)
	}
	fmt.Fprintf(w, "  total %d  added %d  updated %d  failed %d  in %s\n",
		rep.TotalRows, rep.Added, rep.Updated, rep.Failed, rep.Elapsed.Round(time.Millisecond))

	if len(rep.CreatedParents) > 0 {
		fmt.Fprintf(w, "  created %d parent record(s):\n", len(rep.CreatedParents))
		for _, p := range rep.CreatedParents {
			fmt.Fprintf(w, "    %s %q (row %d)\n", p.Kind, p.Name, p.RowIndex+1)
		}
	}

	if len(rep.ExistingKeys) > 0 {
		fmt.Fprintf(w, "  %d row(s) match existing records:\n", len(rep.ExistingKeys))
		for _, m := range rep.ExistingKeys {
			fmt.Fprintf(w, "    row %d %q -> %s\n", m.RowIndex+1, m.NaturalKey, m.ExistingID)
		}
	}

	if len(rep.Ambiguities) > 0 {
		fmt.Fprintf(w, "  unmapped or ambiguous columns:\n")
		for _, a := range rep.Ambiguities {
			fmt.Fprintf(w, "    %s\n", describeAmbiguity(a))
		}
	}

	if len(rep.FailedRows) > 0 {
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "  ROW\tFIELD\tCODE\tMESSAGE")
		for _, e := range rep.Errors {
			field := e.Field
			if field == "" {
				field = "-"
			}
			fmt.Fprintf(tw, "  %d\t%s\t%s\t%s\n", e.RowIndex+1, field, core.RowErrorCode(e), e.Message)
		}
		tw.Flush()
	}
	fmt.Fprintln(w)
}

// printPreview writes the inferred mapping and anything needing attention.
func printPreview(w io.Writer, p previewResult) {
	fmt.Fprintf(w, "%s preview: %d data row(s)\n\n", p.Kind, p.DataRows)

	byColumn := make(map[int]string, len(p.Mapping))
	for field, col := range p.Mapping {
		byColumn[col] = field
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "COL\tHEADER\tFIELD")
	for i, h := range p.Header {
		field := byColumn[i]
		if field == "" {
			field = "-"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\n", i, h, field)
	}
	tw.Flush()

	if len(p.Ambiguities) > 0 {
		fmt.Fprintln(w, "\nambiguities:")
		for _, a := range p.Ambiguities {
			fmt.Fprintf(w, "  %s\n", describeAmbiguity(a))
		}
	}
	if len(p.MissingRequired) > 0 {
		fmt.Fprintf(w, "\nrequired fields not mapped: %s\n", strings.Join(p.MissingRequired, ", "))
	}
	if len(p.UnmappedFields) > 0 {
		fmt.Fprintf(w, "unmapped fields: %s\n", strings.Join(p.UnmappedFields, ", "))
	}
	if len(p.Profiles) > 0 {
		fmt.Fprintln(w, "\nmatching profiles:")
		for _, s := range p.Profiles {
			fmt.Fprintf(w, "  %s (%.0f%%)\n", s.Name, s.Score*100)
		}
	}
}

func describeAmbiguity(a core.MappingAmbiguity) string {
	s := fmt.Sprintf("column %d %q: %s", a.Column, a.Header, a.Reason)
	if len(a.Candidates) > 0 {
		s += " [" + strings.Join(a.Candidates, ", ") + "]"
	}
	if a.Chosen != "" {
		s += " -> " + a.Chosen
	}
	return s
}
