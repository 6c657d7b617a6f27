package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/JonMunkholm/bulkimport/internal/config"
	"github.com/JonMunkholm/bulkimport/internal/core"
)

type submitOptions struct {
	kind         string
	files        []string
	mappingFile  string
	maps         []string
	visibility   []string
	flagExisting bool
	dryRun       bool
	strict       bool
	json         bool
}

// fileResult is the outcome of one file in a submit.
type fileResult struct {
	File    string             `json:"file"`
	Profile string             `json:"profile,omitempty"`
	Report  *core.ImportReport `json:"report,omitempty"`
	Error   string             `json:"error,omitempty"`
	Code    string             `json:"code,omitempty"`

	err error
}

func submitCmd() *cobra.Command {
	var opts submitOptions

	cmd := &cobra.Command{
		Use:   "submit --kind <kind> --file <path> [--file <path>...]",
		Short: "Import one or more files and print the report",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.files = append(opts.files, args...)
			return runSubmit(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.kind, "kind", "k", "", "entity kind: company or contact (required)")
	cmd.Flags().StringArrayVarP(&opts.files, "file", "f", nil, "input file (repeatable)")
	cmd.Flags().StringVar(&opts.mappingFile, "mapping-file", "", "YAML mapping profiles; the best matching profile is applied")
	cmd.Flags().StringArrayVar(&opts.maps, "map", nil, "explicit mapping field=column (0-based); field=- unmaps (repeatable)")
	cmd.Flags().StringSliceVar(&opts.visibility, "visibility", nil, "tier override for every record, e.g. pro,enterprise")
	cmd.Flags().BoolVar(&opts.flagExisting, "flag-existing", false, "list rows whose name already exists in the store")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "import into a throwaway in-memory store")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "exit non-zero when any row fails")
	cmd.Flags().BoolVar(&opts.json, "json", false, "print reports as JSON")

	_ = cmd.MarkFlagRequired("kind")

	return cmd
}

func runSubmit(cmd *cobra.Command, opts submitOptions) error {
	ctx := cmd.Context()

	kind, err := parseKind(opts.kind)
	if err != nil {
		return err
	}
	if len(opts.files) == 0 {
		return withCode(exitUsage, errors.New("at least one --file is required"))
	}

	override, err := parseMapFlags(opts.maps)
	if err != nil {
		return withCode(exitUsage, err)
	}

	tiers, err := resolveVisibility(opts.visibility, cfg.Import)
	if err != nil {
		return withCode(exitUsage, err)
	}

	var profiles []core.MappingProfile
	if opts.mappingFile != "" {
		if profiles, err = core.LoadProfilesFile(opts.mappingFile); err != nil {
			return withCode(exitUsage, err)
		}
	}

	storeCfg := cfg.Store
	if opts.dryRun {
		storeCfg.Driver = config.DriverMemory
	}
	store, closeStore, err := openStore(ctx, storeCfg)
	if err != nil {
		return withCode(exitStore, err)
	}
	defer closeStore()

	svc := core.NewService(store, core.OptionsFromConfig(cfg.Import))

	results := make([]fileResult, len(opts.files))
	g, gctx := errgroup.WithContext(ctx)
	if n := cfg.Import.MaxConcurrent; n > 0 {
		g.SetLimit(n)
	}
	for i, path := range opts.files {
		i, path := i, path
		g.Go(func() error {
			results[i] = submitFile(gctx, svc, path, submitRequest{
				kind:         kind,
				override:     override,
				visibility:   tiers,
				profiles:     profiles,
				flagExisting: opts.flagExisting,
			})
			return nil
		})
	}
	_ = g.Wait()

	out := cmd.OutOrStdout()
	if opts.json {
		if err := writeJSON(out, results); err != nil {
			return err
		}
	} else {
		for _, r := range results {
			printFileResult(out, r)
		}
	}

	return submitExit(results, opts.strict)
}

type submitRequest struct {
	kind         core.EntityKind
	override     core.FieldMapping
	visibility   core.VisibilityTierSet
	profiles     []core.MappingProfile
	flagExisting bool
}

// submitFile reads and imports one file. Errors are recorded on the result.
func submitFile(ctx context.Context, svc *core.Service, path string, req submitRequest) fileResult {
	result := fileResult{File: path}

	content, err := os.ReadFile(path)
	if err != nil {
		result.setErr(err)
		return result
	}

	mapping := req.override
	if len(req.profiles) > 0 {
		if preview, err := svc.Preview(ctx, content, req.kind); err == nil {
			if matches := core.MatchProfiles(req.kind, preview.Header, req.profiles); len(matches) > 0 {
				best := matches[0]
				mapping = best.Profile.Resolve(preview.Header).Apply(req.override)
				result.Profile = best.Profile.Name
				slog.Info("mapping profile applied", "file", path, "profile", best.Profile.Name, "score", best.Score)
			}
		}
	}

	report, err := svc.Submit(ctx, core.SubmitRequest{
		Content:      content,
		Kind:         req.kind,
		Mapping:      mapping,
		Visibility:   req.visibility,
		FileName:     filepath.Base(path),
		FlagExisting: req.flagExisting,
	})
	if err != nil {
		result.setErr(err)
		return result
	}

	result.Report = report
	return result
}

func (r *fileResult) setErr(err error) {
	r.err = err
	r.Error = err.Error()
	r.Code = core.MapError(err).Code
}

// submitExit picks the exit code for a finished submit: the first file-level
// error wins, then failed rows when strict.
func submitExit(results []fileResult, strict bool) error {
	var failedRows int
	for _, r := range results {
		if r.err != nil {
			code := exitFailure
			switch {
			case core.IsParseError(r.err):
				code = exitParse
			case errors.Is(r.err, core.ErrInvalidMapping), errors.Is(r.err, core.ErrUnknownKind):
				code = exitUsage
			}
			return withCode(code, fmt.Errorf("%s: %w", r.File, r.err))
		}
		failedRows += r.Report.Failed
	}

	if strict && failedRows > 0 {
		return withCode(exitRowsFailed, fmt.Errorf("%d rows failed", failedRows))
	}
	return nil
}

// parseMapFlags turns field=column pairs into a mapping override. A column
// of "-" unmaps the field.
func parseMapFlags(pairs []string) (core.FieldMapping, error) {
	if len(pairs) == 0 {
		return nil, nil
	}

	m := make(core.FieldMapping, len(pairs))
	for _, p := range pairs {
		field, col, ok := strings.Cut(p, "=")
		field = strings.TrimSpace(field)
		col = strings.TrimSpace(col)
		if !ok || field == "" || col == "" {
			return nil, fmt.Errorf("%w: --map %q: want field=column", core.ErrInvalidMapping, p)
		}

		if col == "-" {
			m[field] = -1
			continue
		}
		n, err := strconv.Atoi(col)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("%w: --map %q: column must be a non-negative integer or -", core.ErrInvalidMapping, p)
		}
		m[field] = n
	}
	return m, nil
}

// resolveVisibility returns the tier override for a run. The flag wins;
// otherwise the configured default applies.
func resolveVisibility(flag []string, cfg config.ImportConfig) (core.VisibilityTierSet, error) {
	names := flag
	if len(names) == 0 {
		names = cfg.DefaultVisibility
	}
	tiers, err := core.ParseTiers(names...)
	if err != nil {
		return nil, fmt.Errorf("visibility: %w", err)
	}
	return tiers, nil
}
