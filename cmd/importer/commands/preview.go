package commands

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/bulkimport/internal/core"
	"github.com/JonMunkholm/bulkimport/internal/store/memory"
)

type previewOptions struct {
	kind        string
	file        string
	mappingFile string
	json        bool
}

// previewResult is a preview plus any matching mapping profiles.
type previewResult struct {
	*core.MappingPreview
	Profiles []profileScore `json:"profiles,omitempty"`
}

type profileScore struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

func previewCmd() *cobra.Command {
	var opts previewOptions

	cmd := &cobra.Command{
		Use:   "preview --kind <kind> --file <path>",
		Short: "Show how a file's columns would be mapped without importing it",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPreview(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.kind, "kind", "k", "", "entity kind: company or contact (required)")
	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "input file (required)")
	cmd.Flags().StringVar(&opts.mappingFile, "mapping-file", "", "YAML mapping profiles to score against the header")
	cmd.Flags().BoolVar(&opts.json, "json", false, "print the preview as JSON")

	_ = cmd.MarkFlagRequired("kind")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func runPreview(cmd *cobra.Command, opts previewOptions) error {
	kind, err := parseKind(opts.kind)
	if err != nil {
		return err
	}

	content, err := os.ReadFile(opts.file)
	if err != nil {
		return err
	}

	svc := core.NewService(memory.New(), core.OptionsFromConfig(cfg.Import))
	preview, err := svc.Preview(cmd.Context(), content, kind)
	if err != nil {
		if core.IsParseError(err) {
			return withCode(exitParse, err)
		}
		return err
	}

	result := previewResult{MappingPreview: preview}
	if opts.mappingFile != "" {
		profiles, err := core.LoadProfilesFile(opts.mappingFile)
		if err != nil {
			return withCode(exitUsage, err)
		}
		for _, m := range core.MatchProfiles(kind, preview.Header, profiles) {
			result.Profiles = append(result.Profiles, profileScore{Name: m.Profile.Name, Score: m.Score})
		}
	}

	if opts.json {
		return writeJSON(cmd.OutOrStdout(), result)
	}
	printPreview(cmd.OutOrStdout(), result)
	return nil
}
