package cmd

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/spigell/resume-screener/internal/scoring"
	"github.com/spigell/resume-screener/internal/textextract"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Print the fields, sections, entities and skills found in a résumé",
	Run: func(cmd *cobra.Command, _ []string) {
		extract(cmd)
	},
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().StringP("resume", "r", "", "résumé file (.pdf, .txt, .md, .html); - reads stdin as text")
	extractCmd.MarkFlagRequired("resume")
}

func extract(cmd *cobra.Command) {
	ctx := context.Background()
	logger, config := setup()

	path, _ := cmd.Flags().GetString("resume")
	data, err := readResume(path)
	if err != nil {
		logger.Fatal("reading resume", zap.String("file", path), zap.Error(err))
	}

	filename := filepath.Base(path)
	if path == "-" {
		filename = "stdin.txt"
	}

	text := textextract.New(logger).Extract(data, filename)
	if strings.TrimSpace(text) == "" {
		logger.Fatal("cannot parse the resume", zap.Error(scoring.ErrNoText))
	}

	parser, err := newBackends(config, logger).parser()
	if err != nil {
		logger.Fatal("preparing backends", zap.Error(err))
	}

	parsed := parser.Parse(ctx, text)
	logger.Info("resume parsed",
		zap.Int("names", len(parsed.BasicFields.Names)),
		zap.Int("orgs", len(parsed.BasicFields.Orgs)),
		zap.Int("sections", len(parsed.Sections)),
		zap.Int("entities", len(parsed.ExtractedEntities)),
		zap.Int("skills", len(parsed.Skills)),
	)

	if err := printJSON(parsed); err != nil {
		logger.Fatal("printing result", zap.Error(err))
	}
}
